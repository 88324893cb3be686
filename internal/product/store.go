package product

import "context"

// Store defines the interface for catalog persistence.
type Store interface {
	// ListAll retrieves the whole catalog grouped by category code.
	ListAll(ctx context.Context) (map[string][]*Product, error)

	// ListCategory retrieves one category's products.
	ListCategory(ctx context.Context, category string) ([]*Product, error)

	// Create inserts a product; ErrProductExists on duplicate product ID.
	Create(ctx context.Context, p *Product) error

	// Delete removes a product by its string product ID.
	Delete(ctx context.Context, category, productID string) error

	// Count returns the total number of products.
	Count(ctx context.Context) (int64, error)
}
