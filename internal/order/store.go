package order

import "context"

// Store defines the interface for order persistence.
type Store interface {
	// Find retrieves an order by its order code.
	Find(ctx context.Context, orderCode string) (*Order, error)

	// List retrieves orders newest-first, optionally filtered by status.
	// An empty status returns everything.
	List(ctx context.Context, status string) ([]*Order, error)

	// Create inserts a new order; ErrOrderExists on duplicate order code.
	Create(ctx context.Context, o *Order) error

	// Complete marks a pending order as completed and records the
	// completion time.
	Complete(ctx context.Context, orderCode string) (*Order, error)

	// Delete removes an order by its order code.
	Delete(ctx context.Context, orderCode string) error
}
