package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Order statuses. Status changes are free-form between these five
// values; edits to items are blocked once an order is cancelled or
// delivered.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// IsValidStatus reports whether s is one of the five order statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is a single line entry within an order. Items are opaque
// to the order service: there is no catalog to validate them against.
type OrderItem struct {
	SKU      string  `json:"sku"`
	Quantity int     `json:"qty"`
	Price    float64 `json:"price,omitempty"`
}

// OrderItems is stored as a single JSON column.
type OrderItems []OrderItem

// Value implements driver.Valuer.
func (i OrderItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

// Scan implements sql.Scanner.
func (i *OrderItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	case nil:
		*i = nil
		return nil
	default:
		return fmt.Errorf("unsupported type %T for order items", src)
	}
}

// Order is an order record. UserID references an identity by id only;
// there is no referential integrity across the two stores.
type Order struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"index"`
	Items       OrderItems `json:"items" gorm:"type:jsonb"`
	TotalAmount float64    `json:"total_amount"`
	Status      string     `json:"status" gorm:"type:varchar(20)"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Editable reports whether the order's items may still be changed.
func (o *Order) Editable() bool {
	return o.Status != StatusCancelled && o.Status != StatusDelivered
}
