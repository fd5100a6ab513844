package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/money"
)

// VariantSuffix is appended to a product id to form its single implicit variant id.
const VariantSuffix = "-v1"

// Product is the catalog record as stored by a product source. Price is in major units.
type Product struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description,omitempty"`
	Images      []string            `json:"images"`
	CategoryID  string              `json:"categoryId,omitempty"`
	Price       decimal.Decimal     `json:"price"`
	PromoPrice  decimal.NullDecimal `json:"promoPrice"`
	Stock       int                 `json:"stock"`
	IsActive    bool                `json:"isActive"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ProductSnapshot is the cached product view carried by a cart line item.
type ProductSnapshot struct {
	ProductID       string   `json:"productId"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	PriceMinorUnits int64    `json:"priceMinorUnits"`
	Images          []string `json:"images"`
}

// Snapshot derives the line-item snapshot, converting the price to minor units.
func (p Product) Snapshot() ProductSnapshot {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Unnamed Product"
	}
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = p.ID
	}
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return ProductSnapshot{
		ProductID:       p.ID,
		Name:            name,
		Slug:            slug,
		PriceMinorUnits: money.ToMinor(p.Price),
		Images:          images,
	}
}

// VariantID returns the variant identifier of a product.
func VariantID(productID string) string {
	return productID + VariantSuffix
}

// ProductIDFromVariant strips the variant suffix. Identifiers without it are returned unchanged.
func ProductIDFromVariant(variantID string) string {
	return strings.TrimSuffix(variantID, VariantSuffix)
}
