// Package order tracks production orders started and completed from the
// shop-floor terminals.
package order

import (
	"errors"
	"time"
)

// Store errors.
var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderExists      = errors.New("order already exists")
	ErrStoreUnavailable = errors.New("order store unavailable")
)

// Order status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Item is one product line within an order. The slice is stored as a JSON
// blob alongside the order row.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// Order is a production order.
type Order struct {
	ID          int64
	OrderCode   string
	Items       []Item
	Status      string
	DeviceID    string
	Operator    string
	Notes       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Completed reports whether the order has been finished.
func (o *Order) Completed() bool {
	return o.Status == StatusCompleted
}
