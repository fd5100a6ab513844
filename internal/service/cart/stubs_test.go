package cart

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type stubResolver struct {
	mu        sync.Mutex
	snapshots map[string]domain.ProductSnapshot
	errs      map[string]error
	delays    map[string]time.Duration
	calls     atomic.Int32
	inFlight  atomic.Int32
	peak      atomic.Int32
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		snapshots: map[string]domain.ProductSnapshot{},
		errs:      map[string]error{},
		delays:    map[string]time.Duration{},
	}
}

func (s *stubResolver) with(productID, name string, price int64) *stubResolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[domain.VariantID(productID)] = domain.ProductSnapshot{
		ProductID:       productID,
		Name:            name,
		Slug:            productID,
		PriceMinorUnits: price,
		Images:          []string{productID + ".jpg"},
	}
	return s
}

func (s *stubResolver) failing(variantID string, err error) *stubResolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[variantID] = err
	return s
}

func (s *stubResolver) slow(variantID string, d time.Duration) *stubResolver {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[variantID] = d
	return s
}

func (s *stubResolver) Resolve(ctx context.Context, variantID string) (domain.ProductSnapshot, error) {
	s.calls.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	s.mu.Lock()
	delay := s.delays[variantID]
	err := s.errs[variantID]
	snap, ok := s.snapshots[variantID]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.ProductSnapshot{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	if !ok {
		return domain.ProductSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

type failingDeleteRepo struct {
	cartrepo.Repository
}

func (failingDeleteRepo) Delete(context.Context, string) error {
	return errors.New("disk full")
}
