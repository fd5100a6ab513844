package domain

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is an immutable line copied from the cart at checkout.
type OrderItem struct {
	ProductID    string `json:"productId"`
	VariantID    string `json:"variantId"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"price"`
	Quantity     int    `json:"qty"`
	LineSubtotal int64  `json:"subtotal"`
}

// Order is created once at checkout. Only Status and UpdatedAt change afterwards.
type Order struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"trackingNumber"`
	Customer       Customer    `json:"customer"`
	Items          []OrderItem `json:"items"`
	Subtotal       int64       `json:"subtotal"`
	DeliveryFee    int64       `json:"deliveryFee"`
	Total          int64       `json:"total"`
	Status         string      `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}
