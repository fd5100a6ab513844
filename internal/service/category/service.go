package category

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
)

// Listing is a category together with its products, as shown on the home page.
type Listing struct {
	Category domain.Category
	Products []domain.Product
}

type Service struct {
	repo     category.Repository
	products productrepo.Catalog
}

func New(repo category.Repository, products productrepo.Catalog) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		cats[i] = cats[i].Display()
	}
	return cats, nil
}

// ListWithProducts returns every category with up to limit of its products.
// Inactive products are included.
func (s *Service) ListWithProducts(ctx context.Context, limit int) ([]Listing, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(cats))
	for _, c := range cats {
		products, err := s.products.ListProductsByCategory(ctx, c.ID, limit)
		if err != nil {
			return nil, fmt.Errorf("list products of %s: %w", c.ID, err)
		}
		out = append(out, Listing{Category: c, Products: products})
	}
	return out, nil
}

func (s *Service) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	return s.repo.Upsert(ctx, c)
}
