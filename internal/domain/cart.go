package domain

import "storefront/internal/money"

// MaxQuantity caps the quantity of a single line item.
const MaxQuantity = 999

// Cart is the server-side cart keyed by an opaque id. Line items keep insertion order.
type Cart struct {
	ID        string     `json:"id"`
	LineItems []LineItem `json:"lineItems"`
}

// LineItem holds a variant, its quantity (always >= 1) and the last known product snapshot.
type LineItem struct {
	VariantID string          `json:"variantId"`
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"productSnapshot"`
}

// Subtotal returns the line total in minor units.
func (l LineItem) Subtotal() int64 {
	return l.Product.PriceMinorUnits * int64(l.Quantity)
}

// CheckedSubtotal is Subtotal with overflow detection.
func (l LineItem) CheckedSubtotal() (int64, bool) {
	return money.Mul(l.Product.PriceMinorUnits, int64(l.Quantity))
}

// Subtotal sums all line totals in minor units.
func (c *Cart) Subtotal() int64 {
	if c == nil {
		return 0
	}
	var total int64
	for _, l := range c.LineItems {
		total += l.Subtotal()
	}
	return total
}

// ItemCount sums quantities across line items.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, l := range c.LineItems {
		n += l.Quantity
	}
	return n
}

// Find returns the index of the line item for variantID, or -1.
func (c *Cart) Find(variantID string) int {
	for i, l := range c.LineItems {
		if l.VariantID == variantID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers never share line-item slices.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := &Cart{ID: c.ID, LineItems: make([]LineItem, len(c.LineItems))}
	for i, l := range c.LineItems {
		l.Product.Images = append([]string(nil), l.Product.Images...)
		out.LineItems[i] = l
	}
	return out
}
