// Package checkout turns a cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/money"
	cartsvc "storefront/internal/service/cart"
)

const maxTrackingAttempts = 5

// State is a step of the checkout state machine.
type State int

const (
	Draft State = iota
	Validated
	Persisted
	CartCleared
)

func (s State) String() string {
	switch s {
	case Validated:
		return "validated"
	case Persisted:
		return "persisted"
	case CartCleared:
		return "cart_cleared"
	default:
		return "draft"
	}
}

type cartStore interface {
	Consume(ctx context.Context, cartID string, fn func(*domain.Cart) error) error
}

type enricher interface {
	Enrich(ctx context.Context, cart *domain.Cart) *domain.Cart
}

type feePolicy interface {
	Fee(subtotal int64, city string) int64
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) error
}

type Processor struct {
	carts    cartStore
	enricher enricher
	fees     feePolicy
	orders   orderRepo
	validate *validator.Validate
	logger   *log.Logger

	now         func() time.Time
	newID       func() string
	newTracking func() (string, error)
}

func New(carts cartStore, enricher enricher, fees feePolicy, orders orderRepo, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Processor{
		carts:       carts,
		enricher:    enricher,
		fees:        fees,
		orders:      orders,
		validate:    newValidator(),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		newTracking: NewTrackingNumber,
	}
}

// Checkout validates the customer, snapshots the cart into a pending order, persists it
// and clears the cart, all while holding the cart. On a clear failure the placed order is
// returned together with a *domain.CartClearError.
func (p *Processor) Checkout(ctx context.Context, cartID string, in domain.Customer) (*domain.Order, error) {
	customer := in.Normalized()
	if err := p.validateCustomer(customer); err != nil {
		metrics.CheckoutTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	var order *domain.Order
	err := p.carts.Consume(ctx, cartID, func(cart *domain.Cart) error {
		o, err := p.place(ctx, cart, customer)
		if err != nil {
			return err
		}
		order = o
		return nil
	})

	switch {
	case err == nil:
		metrics.CheckoutTotal.WithLabelValues("placed").Inc()
		p.logger.Printf("checkout: cart=%s state=%s tracking=%s total=%d", cartID, CartCleared, order.TrackingNumber, order.Total)
		return order, nil
	case order != nil && errors.Is(err, cartsvc.ErrNotCleared):
		metrics.CheckoutTotal.WithLabelValues("clear_failed").Inc()
		p.logger.Printf("checkout: cart=%s state=%s tracking=%s clear error=%v", cartID, Persisted, order.TrackingNumber, err)
		return order, &domain.CartClearError{Order: order, Err: err}
	case order == nil && errors.Is(err, domain.ErrNotFound):
		metrics.CheckoutTotal.WithLabelValues("empty").Inc()
		return nil, domain.ErrEmptyCart
	}

	var (
		verr *domain.ValidationError
		perr *domain.PersistenceError
	)
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		metrics.CheckoutTotal.WithLabelValues("empty").Inc()
	case errors.As(err, &verr):
		metrics.CheckoutTotal.WithLabelValues("validation").Inc()
	case errors.As(err, &perr):
		metrics.CheckoutTotal.WithLabelValues("persist_failed").Inc()
	default:
		metrics.CheckoutTotal.WithLabelValues("error").Inc()
	}
	p.logger.Printf("checkout: cart=%s state=%s error=%v", cartID, Draft, err)
	return nil, err
}

func (p *Processor) place(ctx context.Context, cart *domain.Cart, customer domain.Customer) (*domain.Order, error) {
	if cart == nil || len(cart.LineItems) == 0 {
		return nil, domain.ErrEmptyCart
	}
	enriched := p.enricher.Enrich(ctx, cart)

	items := make([]domain.OrderItem, 0, len(enriched.LineItems))
	var subtotal int64
	for _, line := range enriched.LineItems {
		if line.Quantity < 1 {
			return nil, &domain.ValidationError{Fields: []string{"items"}}
		}
		if line.Quantity > domain.MaxQuantity || line.Product.PriceMinorUnits < 0 {
			return nil, &domain.ValidationError{Fields: []string{"items"}}
		}
		lineSubtotal, ok := line.CheckedSubtotal()
		if ok {
			subtotal, ok = money.Add(subtotal, lineSubtotal)
		}
		if !ok {
			return nil, fmt.Errorf("cart %s: order amount overflows: %w", cart.ID, domain.ErrInvalidQuantity)
		}
		items = append(items, domain.OrderItem{
			ProductID:    line.Product.ProductID,
			VariantID:    line.VariantID,
			Name:         line.Product.Name,
			UnitPrice:    line.Product.PriceMinorUnits,
			Quantity:     line.Quantity,
			LineSubtotal: lineSubtotal,
		})
	}
	p.logger.Printf("checkout: cart=%s state=%s items=%d subtotal=%d", cart.ID, Validated, len(items), subtotal)

	fee := p.fees.Fee(subtotal, customer.City)
	total, ok := money.Add(subtotal, fee)
	if !ok {
		return nil, fmt.Errorf("cart %s: order amount overflows: %w", cart.ID, domain.ErrInvalidQuantity)
	}
	now := p.now()
	order := domain.Order{
		ID:          p.newID(),
		Customer:    customer,
		Items:       items,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       total,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		tracking, err := p.newTracking()
		if err != nil {
			return nil, fmt.Errorf("generate tracking number: %w", err)
		}
		order.TrackingNumber = tracking
		err = p.orders.Create(ctx, order)
		if err == nil {
			return &order, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) || attempt == maxTrackingAttempts {
			return nil, &domain.PersistenceError{Op: "order", Err: err}
		}
		p.logger.Printf("checkout: cart=%s tracking=%s collision attempt=%d", cart.ID, tracking, attempt)
	}
}

func (p *Processor) validateCustomer(c domain.Customer) error {
	err := p.validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &domain.ValidationError{Fields: fields}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
