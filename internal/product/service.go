package product

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Service implements catalog business logic on top of a Store.
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates a product service.
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "product_service").Logger(),
	}
}

// Catalog returns the full catalog grouped by category code.
func (s *Service) Catalog(ctx context.Context) (map[string][]*Product, error) {
	return s.store.ListAll(ctx)
}

// Category returns one category's products.
func (s *Service) Category(ctx context.Context, category string) ([]*Product, error) {
	return s.store.ListCategory(ctx, strings.ToLower(category))
}

// Add creates a product in a category, minting the next product ID from the
// category's existing entries.
func (s *Service) Add(ctx context.Context, category, name string) (*Product, error) {
	category = strings.ToLower(category)
	existing, err := s.store.ListCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ProductID: NewProductID(category, existing),
		Name:      strings.TrimSpace(name),
		Category:  category,
		Unit:      "un",
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", p.ProductID).
		Str("category", category).
		Str("name", p.Name).
		Msg("product added")
	return p, nil
}

// Remove deletes a product by its string product ID.
func (s *Service) Remove(ctx context.Context, category, productID string) error {
	category = strings.ToLower(category)
	if err := s.store.Delete(ctx, category, productID); err != nil {
		return err
	}

	s.logger.Info().
		Str("product_id", productID).
		Str("category", category).
		Msg("product removed")
	return nil
}
