package repositories

import "shopmesh/internal/models"

// OrderRepository defines the interface for order data access.
// Update methods return the resulting row, mirroring the store's
// RETURNING semantics.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByUserID(userID uint) ([]models.Order, error)
	UpdateStatus(id uint, status string) (*models.Order, error)
	UpdateItems(id uint, items models.OrderItems, totalAmount float64) (*models.Order, error)
}
