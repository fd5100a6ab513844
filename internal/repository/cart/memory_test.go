package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestMemoryRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	_, err := repo.Load(ctx, "c1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	in := &domain.Cart{ID: "c1", LineItems: []domain.LineItem{
		{VariantID: "p1-v1", Quantity: 2, Product: domain.ProductSnapshot{ProductID: "p1", PriceMinorUnits: 500}},
	}}
	require.NoError(t, repo.Save(ctx, in))

	in.LineItems[0].Quantity = 99

	got, err := repo.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.LineItems[0].Quantity, "saved cart must not alias caller state")

	got.LineItems[0].Quantity = 7
	again, err := repo.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.LineItems[0].Quantity, "loaded cart must not alias stored state")

	require.NoError(t, repo.Delete(ctx, "c1"))
	require.NoError(t, repo.Delete(ctx, "c1"))
	_, err = repo.Load(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
