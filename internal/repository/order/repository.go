package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create returns domain.ErrAlreadyExists when the tracking number is taken.
	Create(ctx context.Context, order domain.Order) error
	GetByTracking(ctx context.Context, trackingNumber string) (*domain.Order, error)
}
