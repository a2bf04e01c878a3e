package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shopmesh/internal/models"
)

// GORMMirrorRepository is a GORM implementation of MirrorRepository.
type GORMMirrorRepository struct {
	db *gorm.DB
}

// NewGORMMirrorRepository creates a new instance of GORMMirrorRepository.
func NewGORMMirrorRepository(db *gorm.DB) *GORMMirrorRepository {
	return &GORMMirrorRepository{
		db: db,
	}
}

// Create inserts a mirror row with its replicated primary key.
func (r *GORMMirrorRepository) Create(user *models.MirrorUser) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create mirror user: %w", err)
	}
	return nil
}

// Update saves the mutable fields of an existing mirror row.
func (r *GORMMirrorRepository) Update(user *models.MirrorUser) error {
	res := r.db.Save(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update mirror user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a mirror row by its id.
func (r *GORMMirrorRepository) GetByID(id uint) (*models.MirrorUser, error) {
	var user models.MirrorUser
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mirror user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetAll retrieves every mirror row.
func (r *GORMMirrorRepository) GetAll() ([]models.MirrorUser, error) {
	var users []models.MirrorUser
	if err := r.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all mirror users: %w", err)
	}
	return users, nil
}
