package models

import "github.com/prodtrack/prodtrack/internal/order"

// OrderItem is one product line within an order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
}

// Order is the wire representation of a production order.
type Order struct {
	ID          int64       `json:"id"`
	OrderCode   string      `json:"order_code"`
	Items       []OrderItem `json:"products"`
	Status      string      `json:"status"`
	DeviceID    string      `json:"device_id,omitempty"`
	Operator    string      `json:"operator,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	StartedAt   *Timestamp  `json:"started_at,omitempty"`
	CompletedAt *Timestamp  `json:"completed_at,omitempty"`
	CreatedAt   Timestamp   `json:"created_at"`
	UpdatedAt   Timestamp   `json:"updated_at"`
}

// NewOrder converts a domain order to its wire form.
func NewOrder(o *order.Order) *Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItem(it))
	}
	return &Order{
		ID:          o.ID,
		OrderCode:   o.OrderCode,
		Items:       items,
		Status:      o.Status,
		DeviceID:    o.DeviceID,
		Operator:    o.Operator,
		Notes:       o.Notes,
		StartedAt:   OptionalTimestamp(o.StartedAt),
		CompletedAt: OptionalTimestamp(o.CompletedAt),
		CreatedAt:   Timestamp(o.CreatedAt),
		UpdatedAt:   Timestamp(o.UpdatedAt),
	}
}

// StartOrderRequest is the request body for starting an order.
type StartOrderRequest struct {
	OrderCode string      `json:"order_code"`
	Items     []OrderItem `json:"products"`
	Operator  string      `json:"operator,omitempty"`
	Notes     string      `json:"notes,omitempty"`
}

// OrderListResponse is the response for the order list endpoint.
type OrderListResponse struct {
	Success bool     `json:"success"`
	Orders  []*Order `json:"orders"`
	Count   int      `json:"count"`
}
