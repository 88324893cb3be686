package product

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used for tests and for degraded mode
// when the database cannot be opened.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*Product // keyed by product_id
	nextID   int64
}

// NewMemoryStore creates an empty in-memory product store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*Product),
		nextID:   1,
	}
}

func (s *MemoryStore) ListAll(ctx context.Context) (map[string][]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]*Product, len(Categories))
	for _, c := range Categories {
		result[c] = []*Product{}
	}
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		result[p.Category] = append(result[p.Category], copyProduct(p))
	}
	for _, c := range Categories {
		sortProducts(result[c])
	}
	return result, nil
}

func (s *MemoryStore) ListCategory(ctx context.Context, category string) ([]*Product, error) {
	if !ValidCategory(category) {
		return nil, ErrUnknownCategory
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	products := []*Product{}
	for _, p := range s.products {
		if p.Active && p.Category == category {
			products = append(products, copyProduct(p))
		}
	}
	sortProducts(products)
	return products, nil
}

func (s *MemoryStore) Create(ctx context.Context, p *Product) error {
	if !ValidCategory(p.Category) {
		return ErrUnknownCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ProductID]; exists {
		return ErrProductExists
	}

	if p.Unit == "" {
		p.Unit = "un"
	}
	now := time.Now()
	p.ID = s.nextID
	s.nextID++
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now

	s.products[p.ProductID] = copyProduct(p)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, category, productID string) error {
	if !ValidCategory(category) {
		return ErrUnknownCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok || p.Category != category {
		return ErrProductNotFound
	}
	delete(s.products, productID)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func copyProduct(p *Product) *Product {
	cp := *p
	return &cp
}

func sortProducts(products []*Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID < products[j].ID
	})
}

var _ Store = (*MemoryStore)(nil)
