package repositories

import "shopmesh/internal/models"

// UserRepository defines data access for the credential store.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
}
