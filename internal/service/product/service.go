// Package product serves catalog reads for the storefront.
package product

import (
	"context"
	"io"
	"log"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type finder interface {
	Product(ctx context.Context, idOrSlug string) (*domain.Product, error)
}

type Service struct {
	finder   finder
	catalogs []productrepo.Catalog
	logger   *log.Logger
}

// New builds the read service. Listings try catalogs in order and fall through on errors.
func New(finder finder, logger *log.Logger, catalogs ...productrepo.Catalog) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{finder: finder, catalogs: catalogs, logger: logger}
}

// Get looks a product up by id, then by slug.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	return s.finder.Product(ctx, idOrSlug)
}

// List returns up to limit products of a category (all categories when empty).
func (s *Service) List(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	categoryID = strings.TrimSpace(categoryID)
	var lastErr error
	for i, c := range s.catalogs {
		products, err := c.ListProductsByCategory(ctx, categoryID, limit)
		if err == nil {
			return products, nil
		}
		s.logger.Printf("product service: list category=%s catalog=%d error=%v", categoryID, i, err)
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return []domain.Product{}, nil
}
