package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
)

type feePolicy interface {
	Fee(subtotal int64, city string) int64
}

// View is an enriched cart with display totals. DeliveryFee is an estimate for City;
// checkout recomputes it from the customer's final destination.
type View struct {
	Cart        *domain.Cart `json:"cart"`
	ItemCount   int          `json:"itemCount"`
	Subtotal    int64        `json:"subtotal"`
	DeliveryFee int64        `json:"deliveryFee"`
	Total       int64        `json:"total"`
	City        string       `json:"city,omitempty"`
}

type Service struct {
	store    *Store
	enricher *Enricher
	fees     feePolicy
}

func NewService(store *Store, enricher *Enricher, fees feePolicy) *Service {
	return &Service{store: store, enricher: enricher, fees: fees}
}

// GetCart returns the enriched cart, or an empty view when there is none.
func (s *Service) GetCart(ctx context.Context, cartID, city string) (View, error) {
	c, err := s.store.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.view(nil, city), nil
		}
		return View{}, err
	}
	return s.view(s.enricher.Enrich(ctx, c), city), nil
}

// AddItem adds qty of a variant, creating the cart when cartID is empty.
func (s *Service) AddItem(ctx context.Context, cartID, variantID string, qty int, city string) (View, error) {
	if qty <= 0 {
		return View{}, domain.ErrInvalidQuantity
	}
	c, err := s.store.UpsertDelta(ctx, cartID, variantID, qty)
	if err != nil {
		return View{}, err
	}
	return s.view(s.enricher.Enrich(ctx, c), city), nil
}

// RemoveItem drops a variant from the cart. Removing a missing item is a no-op.
func (s *Service) RemoveItem(ctx context.Context, cartID, variantID, city string) (View, error) {
	return s.SetQuantity(ctx, cartID, variantID, 0, city)
}

// SetQuantity sets the absolute quantity; qty <= 0 removes the item.
func (s *Service) SetQuantity(ctx context.Context, cartID, variantID string, qty int, city string) (View, error) {
	if strings.TrimSpace(cartID) == "" && qty <= 0 {
		return s.view(nil, city), nil
	}
	c, err := s.store.SetAbsolute(ctx, cartID, variantID, qty)
	if err != nil {
		return View{}, err
	}
	return s.view(s.enricher.Enrich(ctx, c), city), nil
}

// ClearCart empties the cart. It is idempotent.
func (s *Service) ClearCart(ctx context.Context, cartID string) error {
	return s.store.Clear(ctx, cartID)
}

func (s *Service) view(c *domain.Cart, city string) View {
	if c == nil {
		c = &domain.Cart{LineItems: []domain.LineItem{}}
	}
	subtotal := c.Subtotal()
	var fee int64
	if len(c.LineItems) > 0 {
		fee = s.fees.Fee(subtotal, city)
	}
	return View{
		Cart:        c,
		ItemCount:   c.ItemCount(),
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
		City:        strings.TrimSpace(city),
	}
}
