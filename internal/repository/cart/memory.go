package cart

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryRepo struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

// NewMemory returns an in-process cart repository. Stored carts are copied on the way in and out.
func NewMemory() Repository {
	return &memoryRepo{carts: make(map[string]*domain.Cart)}
}

func (r *memoryRepo) Load(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.RLock()
	c, ok := r.carts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *memoryRepo) Save(_ context.Context, cart *domain.Cart) error {
	cp := cart.Clone()
	r.mu.Lock()
	r.carts[cp.ID] = cp
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.carts, id)
	r.mu.Unlock()
	return nil
}
