package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestVariantIDRoundTrip(t *testing.T) {
	assert.Equal(t, "p1-v1", VariantID("p1"))
	assert.Equal(t, "p1", ProductIDFromVariant("p1-v1"))
	assert.Equal(t, "p1", ProductIDFromVariant("p1"))
	assert.Equal(t, "p1-v2", ProductIDFromVariant("p1-v2"))
}

func TestProductSnapshotDefaults(t *testing.T) {
	p := Product{ID: "p1", Price: decimal.RequireFromString("100.00"), Images: []string{"a.jpg"}}
	snap := p.Snapshot()
	assert.Equal(t, "Unnamed Product", snap.Name)
	assert.Equal(t, "p1", snap.Slug)
	assert.Equal(t, int64(10000), snap.PriceMinorUnits)

	snap.Images[0] = "changed"
	assert.Equal(t, "a.jpg", p.Images[0], "snapshot must not alias product images")
}

func TestCartTotals(t *testing.T) {
	c := &Cart{LineItems: []LineItem{
		{VariantID: "a-v1", Quantity: 2, Product: ProductSnapshot{PriceMinorUnits: 1500}},
		{VariantID: "b-v1", Quantity: 1, Product: ProductSnapshot{PriceMinorUnits: 700}},
	}}
	assert.Equal(t, int64(3700), c.Subtotal())
	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, 1, c.Find("b-v1"))
	assert.Equal(t, -1, c.Find("c-v1"))

	var nilCart *Cart
	assert.Zero(t, nilCart.Subtotal())
}

func TestCartCloneIsDeep(t *testing.T) {
	c := &Cart{ID: "c1", LineItems: []LineItem{{VariantID: "a-v1", Quantity: 1, Product: ProductSnapshot{Images: []string{"x"}}}}}
	cp := c.Clone()
	cp.LineItems[0].Quantity = 5
	cp.LineItems[0].Product.Images[0] = "y"
	assert.Equal(t, 1, c.LineItems[0].Quantity)
	assert.Equal(t, "x", c.LineItems[0].Product.Images[0])
}

func TestErrorWrapping(t *testing.T) {
	pe := &PersistenceError{Op: "order", Err: ErrAlreadyExists}
	assert.True(t, errors.Is(pe, ErrAlreadyExists))

	ve := &ValidationError{Fields: []string{"phone", "city"}}
	assert.Equal(t, "missing or invalid fields: phone, city", ve.Error())
}

func TestLineItemCheckedSubtotal(t *testing.T) {
	line := LineItem{Quantity: MaxQuantity, Product: ProductSnapshot{PriceMinorUnits: 10000}}
	if got, ok := line.CheckedSubtotal(); !ok || got != 10000*MaxQuantity {
		t.Fatalf("expected %d, got %d ok=%v", 10000*MaxQuantity, got, ok)
	}
	line = LineItem{Quantity: 1_000_000_000_000_000, Product: ProductSnapshot{PriceMinorUnits: 10000}}
	if _, ok := line.CheckedSubtotal(); ok {
		t.Fatalf("expected overflow to be reported")
	}
}
