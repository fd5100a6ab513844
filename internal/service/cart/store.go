// Package cart implements the server-side cart store, its enrichment pipeline
// and the request-facing cart operations.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/keylock"
	cartrepo "storefront/internal/repository/cart"
)

// ErrNotCleared is returned by Consume when the callback succeeded but the cart could not be deleted.
var ErrNotCleared = errors.New("cart not cleared")

// Resolver turns a variant id into a product snapshot.
type Resolver interface {
	Resolve(ctx context.Context, variantID string) (domain.ProductSnapshot, error)
}

// Store is the authoritative cart state. Mutations are serialized per cart id;
// different carts never wait on each other.
type Store struct {
	repo     cartrepo.Repository
	resolver Resolver
	locks    *keylock.Locker
	newID    func() string
	logger   *log.Logger
}

func NewStore(repo cartrepo.Repository, resolver Resolver, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		repo:     repo,
		resolver: resolver,
		locks:    keylock.New(0),
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Get returns the current cart or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.Load(ctx, cartID)
}

// UpsertDelta adds delta to the variant's quantity, creating the cart when cartID is empty.
// Lines that drop to zero or below are removed. A resulting quantity above
// domain.MaxQuantity is rejected with domain.ErrInvalidQuantity.
func (s *Store) UpsertDelta(ctx context.Context, cartID, variantID string, delta int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, variantID, delta > 0, func(current int) int {
		return delta
	})
}

// SetAbsolute sets the variant's quantity. The delta is computed under the cart lock.
func (s *Store) SetAbsolute(ctx context.Context, cartID, variantID string, quantity int) (*domain.Cart, error) {
	quantity = max(quantity, 0)
	return s.mutate(ctx, cartID, variantID, quantity > 0, func(current int) int {
		return quantity - current
	})
}

// Clear deletes the cart. Clearing an absent cart is not an error.
func (s *Store) Clear(ctx context.Context, cartID string) error {
	if strings.TrimSpace(cartID) == "" {
		return nil
	}
	unlock := s.locks.Lock(cartID)
	defer unlock()
	if err := s.repo.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("clear cart %s: %w", cartID, err)
	}
	s.logger.Printf("cart store: cleared cart=%s", cartID)
	return nil
}

// Consume runs fn with the cart locked and deletes the cart only after fn succeeds.
// An absent cart yields domain.ErrNotFound without calling fn.
func (s *Store) Consume(ctx context.Context, cartID string, fn func(*domain.Cart) error) error {
	if strings.TrimSpace(cartID) == "" {
		return domain.ErrNotFound
	}
	unlock := s.locks.Lock(cartID)
	defer unlock()

	cart, err := s.repo.Load(ctx, cartID)
	if err != nil {
		return err
	}
	if err := fn(cart); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, cartID); err != nil {
		s.logger.Printf("cart store: consume cart=%s delete error=%v", cartID, err)
		return fmt.Errorf("%w: %w", ErrNotCleared, err)
	}
	return nil
}

func (s *Store) mutate(ctx context.Context, cartID, variantID string, resolve bool, deltaFor func(current int) int) (*domain.Cart, error) {
	variantID = strings.TrimSpace(variantID)
	if variantID == "" {
		return nil, fmt.Errorf("variant id required: %w", domain.ErrProductUnavailable)
	}

	// Resolve outside the lock so slow sources do not hold the cart.
	var (
		snap       domain.ProductSnapshot
		resolveErr error
	)
	if resolve {
		snap, resolveErr = s.resolver.Resolve(ctx, variantID)
	}

	if cartID == "" {
		cartID = s.newID()
	}
	unlock := s.locks.Lock(cartID)
	defer unlock()

	cart, err := s.repo.Load(ctx, cartID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cart = &domain.Cart{ID: cartID, LineItems: []domain.LineItem{}}
	case err != nil:
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}

	idx := cart.Find(variantID)
	current := 0
	if idx >= 0 {
		current = cart.LineItems[idx].Quantity
	}
	delta := deltaFor(current)
	if delta > domain.MaxQuantity-current {
		return nil, fmt.Errorf("variant %s: quantity %d%+d exceeds %d: %w", variantID, current, delta, domain.MaxQuantity, domain.ErrInvalidQuantity)
	}
	next := current + delta

	switch {
	case idx < 0 && next <= 0:
		return cart, nil
	case idx < 0:
		if resolveErr != nil {
			s.logger.Printf("cart store: add cart=%s variant=%s unresolved error=%v", cartID, variantID, resolveErr)
			return nil, fmt.Errorf("add %s: %w: %w", variantID, domain.ErrProductUnavailable, resolveErr)
		}
		cart.LineItems = append(cart.LineItems, domain.LineItem{VariantID: variantID, Quantity: next, Product: snap})
	case next <= 0:
		cart.LineItems = append(cart.LineItems[:idx], cart.LineItems[idx+1:]...)
	default:
		cart.LineItems[idx].Quantity = next
		switch {
		case resolveErr != nil:
			s.logger.Printf("cart store: refresh cart=%s variant=%s kept cached snapshot error=%v", cartID, variantID, resolveErr)
		case resolve:
			cart.LineItems[idx].Product = snap
		}
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart %s: %w", cartID, err)
	}
	s.logger.Printf("cart store: cart=%s variant=%s delta=%d quantity=%d", cartID, variantID, delta, max(next, 0))
	return cart, nil
}
