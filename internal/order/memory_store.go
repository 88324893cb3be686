package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used for tests and for degraded mode
// when the database cannot be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]*Order // keyed by order_code
	nextID int64
}

// NewMemoryStore creates an empty in-memory order store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]*Order),
		nextID: 1,
	}
}

func (s *MemoryStore) Find(ctx context.Context, orderCode string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderCode]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) List(ctx context.Context, status string) ([]*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []*Order{}
	for _, o := range s.orders {
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (s *MemoryStore) Create(ctx context.Context, o *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.OrderCode]; exists {
		return ErrOrderExists
	}

	if o.Status == "" {
		o.Status = StatusPending
	}
	now := time.Now()
	o.ID = s.nextID
	s.nextID++
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.StartedAt == nil {
		o.StartedAt = &now
	}

	s.orders[o.OrderCode] = copyOrder(o)
	return nil
}

func (s *MemoryStore) Complete(ctx context.Context, orderCode string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderCode]
	if !ok {
		return nil, ErrOrderNotFound
	}

	now := time.Now()
	o.Status = StatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	return copyOrder(o), nil
}

func (s *MemoryStore) Delete(ctx context.Context, orderCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderCode]; !ok {
		return ErrOrderNotFound
	}
	delete(s.orders, orderCode)
	return nil
}

func copyOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]Item(nil), o.Items...)
	if o.StartedAt != nil {
		t := *o.StartedAt
		cp.StartedAt = &t
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

var _ Store = (*MemoryStore)(nil)
