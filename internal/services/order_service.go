package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"shopmesh/internal/models"
	"shopmesh/internal/repositories"
	"shopmesh/pkg/events"
)

// OrderService handles ownership-gated order persistence. Every read
// and mutation takes the authenticated caller's id and compares it
// against the order's owner; a mismatch is a hard denial, issued only
// after existence is established so absent orders stay a plain 404.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher *events.Publisher
}

// NewOrderService creates a new OrderService. publisher may be nil;
// event publishing is best-effort and entirely optional.
func NewOrderService(orderRepo repositories.OrderRepository, publisher *events.Publisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// CreateOrder persists a new pending order for the caller and
// publishes a best-effort creation event.
func (s *OrderService) CreateOrder(userID uint, items models.OrderItems, totalAmount float64) (*models.Order, error) {
	order := &models.Order{
		UserID:      userID,
		Items:       items,
		TotalAmount: totalAmount,
		Status:      models.StatusPending,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.publisher != nil {
		event := map[string]interface{}{
			"orderId": order.ID,
			"userId":  order.UserID,
			"status":  order.Status,
			"total":   order.TotalAmount,
		}
		body, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal order event: %v", err)
		} else if err := s.publisher.Publish("order.created", body); err != nil {
			log.Printf("Warning: failed to publish order created event for order %d: %v", order.ID, err)
		}
	}

	return order, nil
}

// GetOrder retrieves an order on behalf of callerID.
func (s *OrderService) GetOrder(id, callerID uint) (*models.Order, error) {
	order, err := s.fetchOwned(id, callerID)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders retrieves all orders owned by a user, newest first.
func (s *OrderService) ListOrders(userID uint) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// UpdateStatus changes an order's status on behalf of callerID. The
// status value is checked before the order is even fetched.
func (s *OrderService) UpdateStatus(id, callerID uint, status string) (*models.Order, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if _, err := s.fetchOwned(id, callerID); err != nil {
		return nil, err
	}
	updated, err := s.orderRepo.UpdateStatus(id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update status for order %d: %w", id, err)
	}
	return updated, nil
}

// UpdateItems replaces an order's items and total on behalf of
// callerID. Cancelled and delivered orders are locked against edits.
func (s *OrderService) UpdateItems(id, callerID uint, items models.OrderItems, totalAmount float64) (*models.Order, error) {
	order, err := s.fetchOwned(id, callerID)
	if err != nil {
		return nil, err
	}
	if !order.Editable() {
		return nil, ErrOrderLocked
	}
	updated, err := s.orderRepo.UpdateItems(id, items, totalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to update items for order %d: %w", id, err)
	}
	return updated, nil
}

// fetchOwned loads an order and enforces ownership: not-found first,
// then the ownership comparison.
func (s *OrderService) fetchOwned(id, callerID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != callerID {
		return nil, ErrAccessDenied
	}
	return order, nil
}
