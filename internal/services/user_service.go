package services

import (
	"errors"
	"fmt"

	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
)

// UserService owns the identity mirror store. Rows enter it only
// through SyncUser; reads and partial updates are served to
// authenticated callers.
type UserService struct {
	mirrorRepo repositories.MirrorRepository
}

// NewUserService creates a new UserService.
func NewUserService(mirrorRepo repositories.MirrorRepository) *UserService {
	return &UserService{
		mirrorRepo: mirrorRepo,
	}
}

// SyncUser upserts a mirror row keyed by the authoritative id. The
// operation is idempotent: replaying a replication call converges on
// the same row.
func (s *UserService) SyncUser(id uint, email, firstName, lastName string) (*models.MirrorUser, error) {
	existing, err := s.mirrorRepo.GetByID(id)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up mirror user %d: %w", id, err)
		}
		user := &models.MirrorUser{
			ID:        id,
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
		}
		if err := s.mirrorRepo.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create mirror user %d: %w", id, err)
		}
		return user, nil
	}

	existing.Email = email
	existing.FirstName = firstName
	existing.LastName = lastName
	if err := s.mirrorRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update mirror user %d: %w", id, err)
	}
	return existing, nil
}

// GetUserByID retrieves a mirror row. A row can legitimately be
// absent when replication for that identity failed.
func (s *UserService) GetUserByID(id uint) (*models.MirrorUser, error) {
	user, err := s.mirrorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves every mirror row.
func (s *UserService) ListUsers() ([]models.MirrorUser, error) {
	return s.mirrorRepo.GetAll()
}

// UpdateUser changes only the provided name fields of a mirror row;
// nil fields keep their stored values.
func (s *UserService) UpdateUser(id uint, firstName, lastName *string) (*models.MirrorUser, error) {
	user, err := s.mirrorRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if err := s.mirrorRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update mirror user %d: %w", id, err)
	}
	return user, nil
}
