package product

import (
	"context"

	"storefront/internal/domain"
)

// DefaultListLimit caps category listings when the caller passes no limit.
const DefaultListLimit = 50

// Catalog is the narrow read interface every product source implements.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error)
}

// Writer persists catalog records. Used by seeding and CSV import.
type Writer interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Repository is a catalog that can also be written to.
type Repository interface {
	Catalog
	Writer
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
