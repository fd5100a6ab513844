// Package seed loads the demo catalog into the product stores.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"strings"

	"gopkg.in/yaml.v3"

	"storefront/internal/domain"
	"storefront/internal/money"
	productrepo "storefront/internal/repository/product"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type categorySeed struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

type productSeed struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	PromoPrice  string   `yaml:"promoPrice"`
	Stock       int      `yaml:"stock"`
	CategoryID  string   `yaml:"categoryId"`
	Images      []string `yaml:"images"`
	Inactive    bool     `yaml:"inactive"`
}

// Catalog is a parsed seed document.
type Catalog struct {
	Categories []domain.Category
	Products   []domain.Product
}

type categoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type catalogFile struct {
	Categories []categorySeed `yaml:"categories"`
	Products   []productSeed  `yaml:"products"`
}

// Default returns the embedded demo catalog.
func Default() (Catalog, error) {
	return Parse(strings.NewReader(string(defaultCatalog)))
}

// Parse reads a catalog document. Every product must reference a declared category.
func Parse(r io.Reader) (Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	var out Catalog
	categories := make(map[string]struct{}, len(file.Categories))
	for i, c := range file.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return Catalog{}, fmt.Errorf("category %q: id required", c.Name)
		}
		categories[c.ID] = struct{}{}
		out.Categories = append(out.Categories, domain.Category{ID: c.ID, Name: c.Name, Slug: c.Slug, Position: i})
	}

	for _, ps := range file.Products {
		if strings.TrimSpace(ps.ID) == "" {
			return Catalog{}, fmt.Errorf("product %q: id required", ps.Name)
		}
		if _, ok := categories[ps.CategoryID]; ps.CategoryID != "" && !ok {
			return Catalog{}, fmt.Errorf("product %s: unknown category %q", ps.ID, ps.CategoryID)
		}
		price, err := money.ParseMajor(ps.Price)
		if err != nil {
			return Catalog{}, fmt.Errorf("product %s: %w", ps.ID, err)
		}
		p := domain.Product{
			ID:          ps.ID,
			Name:        ps.Name,
			Slug:        ps.Slug,
			Description: ps.Description,
			Images:      ps.Images,
			CategoryID:  ps.CategoryID,
			Price:       price,
			Stock:       ps.Stock,
			IsActive:    !ps.Inactive,
		}
		if ps.PromoPrice != "" {
			promo, err := money.ParseMajor(ps.PromoPrice)
			if err != nil {
				return Catalog{}, fmt.Errorf("product %s promo: %w", ps.ID, err)
			}
			p.PromoPrice.Decimal = promo
			p.PromoPrice.Valid = true
		}
		out.Products = append(out.Products, p)
	}
	return out, nil
}

// Apply upserts categories first, then products into every writer in order,
// typically Postgres then the Redis mirror. It is idempotent.
func Apply(ctx context.Context, logger *log.Logger, catalog Catalog, categories categoryWriter, products ...productrepo.Writer) error {
	if categories != nil {
		for _, c := range catalog.Categories {
			if _, err := categories.Upsert(ctx, c); err != nil {
				return fmt.Errorf("upsert category %s: %w", c.ID, err)
			}
		}
	}
	for _, p := range catalog.Products {
		for _, w := range products {
			if _, err := w.Upsert(ctx, p); err != nil {
				return fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
		}
	}
	logger.Printf("seeded %d categories and %d products into %d stores", len(catalog.Categories), len(catalog.Products), len(products))
	return nil
}
