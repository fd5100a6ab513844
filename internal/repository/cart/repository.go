package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores whole carts. Callers serialize access per cart id.
type Repository interface {
	// Load returns domain.ErrNotFound when no cart exists for id.
	Load(ctx context.Context, id string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}
