package httpserver

import (
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/money"
	cartsvc "storefront/internal/service/cart"
)

type priceValue struct {
	Type           string `json:"type"`
	CurrencyCode   string `json:"currencyCode"`
	CentAmount     int64  `json:"centAmount"`
	FractionDigits int    `json:"fractionDigits"`
	Formatted      string `json:"formatted"`
}

type image struct {
	URL string `json:"url"`
}

type productResponse struct {
	ID          string      `json:"id"`
	VariantID   string      `json:"variantId"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	CategoryID  string      `json:"categoryId,omitempty"`
	Images      []image     `json:"images"`
	Price       priceValue  `json:"price"`
	PromoPrice  *priceValue `json:"promoPrice,omitempty"`
	Stock       int         `json:"stock"`
	InStock     bool        `json:"inStock"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type productListResponse struct {
	Count   int               `json:"count"`
	Results []productResponse `json:"results"`
}

type categoryResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Slug     string            `json:"slug"`
	Products []productResponse `json:"products,omitempty"`
}

type lineItemResponse struct {
	VariantID  string     `json:"variantId"`
	ProductID  string     `json:"productId"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Images     []image    `json:"images"`
	Quantity   int        `json:"quantity"`
	UnitPrice  priceValue `json:"price"`
	TotalPrice priceValue `json:"totalPrice"`
}

type cartResponse struct {
	ID          string             `json:"id,omitempty"`
	LineItems   []lineItemResponse `json:"lineItems"`
	ItemCount   int                `json:"totalLineItemQuantity"`
	Subtotal    priceValue         `json:"subtotal"`
	DeliveryFee priceValue         `json:"deliveryFee"`
	Total       priceValue         `json:"totalPrice"`
	City        string             `json:"city,omitempty"`
}

type orderItemResponse struct {
	ProductID string     `json:"productId"`
	VariantID string     `json:"variantId"`
	Name      string     `json:"name"`
	Quantity  int        `json:"qty"`
	Price     priceValue `json:"price"`
	Subtotal  priceValue `json:"subtotal"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	TrackingNumber string              `json:"trackingNumber"`
	Status         string              `json:"status"`
	Customer       domain.Customer     `json:"customer"`
	Items          []orderItemResponse `json:"items"`
	Subtotal       priceValue          `json:"subtotal"`
	DeliveryFee    priceValue          `json:"deliveryFee"`
	Total          priceValue          `json:"total"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func price(minor int64) priceValue {
	return priceValue{
		Type:           "centPrecision",
		CurrencyCode:   money.Currency,
		CentAmount:     minor,
		FractionDigits: 2,
		Formatted:      money.Format(minor),
	}
}

func imagesFromURLs(urls []string) []image {
	images := make([]image, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		images = append(images, image{URL: u})
	}
	return images
}

func toProductResponse(p domain.Product) productResponse {
	snap := p.Snapshot()
	out := productResponse{
		ID:          p.ID,
		VariantID:   domain.VariantID(p.ID),
		Name:        snap.Name,
		Slug:        snap.Slug,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Images:      imagesFromURLs(p.Images),
		Price:       price(snap.PriceMinorUnits),
		Stock:       p.Stock,
		InStock:     p.Stock > 0,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
	if p.PromoPrice.Valid {
		promo := price(money.ToMinor(p.PromoPrice.Decimal))
		out.PromoPrice = &promo
	}
	return out
}

func toCartResponse(v cartsvc.View) cartResponse {
	out := cartResponse{
		LineItems:   []lineItemResponse{},
		ItemCount:   v.ItemCount,
		Subtotal:    price(v.Subtotal),
		DeliveryFee: price(v.DeliveryFee),
		Total:       price(v.Total),
		City:        v.City,
	}
	if v.Cart == nil {
		return out
	}
	out.ID = v.Cart.ID
	for _, l := range v.Cart.LineItems {
		out.LineItems = append(out.LineItems, lineItemResponse{
			VariantID:  l.VariantID,
			ProductID:  l.Product.ProductID,
			Name:       l.Product.Name,
			Slug:       l.Product.Slug,
			Images:     imagesFromURLs(l.Product.Images),
			Quantity:   l.Quantity,
			UnitPrice:  price(l.Product.PriceMinorUnits),
			TotalPrice: price(l.Subtotal()),
		})
	}
	return out
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     price(it.UnitPrice),
			Subtotal:  price(it.LineSubtotal),
		})
	}
	return orderResponse{
		ID:             o.ID,
		TrackingNumber: o.TrackingNumber,
		Status:         o.Status,
		Customer:       o.Customer,
		Items:          items,
		Subtotal:       price(o.Subtotal),
		DeliveryFee:    price(o.DeliveryFee),
		Total:          price(o.Total),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
