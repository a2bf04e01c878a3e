package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
	"shopmesh/internal/services"
)

// MockMirrorRepository is a mock implementation of repositories.MirrorRepository
type MockMirrorRepository struct {
	mock.Mock
}

func (m *MockMirrorRepository) Create(user *models.MirrorUser) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockMirrorRepository) Update(user *models.MirrorUser) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockMirrorRepository) GetByID(id uint) (*models.MirrorUser, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MirrorUser), args.Error(1)
}

func (m *MockMirrorRepository) GetAll() ([]models.MirrorUser, error) {
	args := m.Called()
	return args.Get(0).([]models.MirrorUser), args.Error(1)
}

func TestUserService_SyncUser_InsertsWhenAbsent(t *testing.T) {
	mockRepo := new(MockMirrorRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("GetByID", uint(1)).Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.MirrorUser")).Return(nil).Once()

	user, err := userService.SyncUser(1, "alice@example.com", "Alice", "Smith")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	mockRepo.AssertExpectations(t)
}

func TestUserService_SyncUser_UpdatesWhenPresent(t *testing.T) {
	mockRepo := new(MockMirrorRepository)
	userService := services.NewUserService(mockRepo)

	existing := &models.MirrorUser{ID: 1, Email: "alice@example.com", FirstName: "Alice"}
	mockRepo.On("GetByID", uint(1)).Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.MirrorUser")).Return(nil).Once()

	// Replaying the sync with changed fields converges on the new row.
	user, err := userService.SyncUser(1, "alice@example.com", "Alicia", "Smith")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "Smith", user.LastName)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	mockRepo := new(MockMirrorRepository)
	userService := services.NewUserService(mockRepo)

	mockRepo.On("GetByID", uint(5)).Return(nil, repositories.ErrNotFound).Once()

	_, err := userService.GetUserByID(5)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_PartialFields(t *testing.T) {
	mockRepo := new(MockMirrorRepository)
	userService := services.NewUserService(mockRepo)

	existing := &models.MirrorUser{ID: 1, Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}
	mockRepo.On("GetByID", uint(1)).Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.MirrorUser")).Return(nil).Once()

	newFirst := "Alicia"
	user, err := userService.UpdateUser(1, &newFirst, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.FirstName)
	// The omitted field keeps its stored value.
	assert.Equal(t, "Smith", user.LastName)
	mockRepo.AssertExpectations(t)
}
