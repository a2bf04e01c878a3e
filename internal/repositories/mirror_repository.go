package repositories

import "shopmesh/internal/models"

// MirrorRepository defines data access for the identity mirror store.
type MirrorRepository interface {
	Create(user *models.MirrorUser) error
	Update(user *models.MirrorUser) error
	GetByID(id uint) (*models.MirrorUser, error)
	GetAll() ([]models.MirrorUser, error)
}
