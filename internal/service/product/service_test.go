package product

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type stubCatalog struct {
	products []domain.Product
	err      error
	lastCat  string
	lastLim  int
}

func (s *stubCatalog) GetProduct(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) GetProductBySlug(context.Context, string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) ListProductsByCategory(_ context.Context, categoryID string, limit int) ([]domain.Product, error) {
	s.lastCat = categoryID
	s.lastLim = limit
	return s.products, s.err
}

type stubFinder struct {
	product *domain.Product
	err     error
	last    string
}

func (s *stubFinder) Product(_ context.Context, idOrSlug string) (*domain.Product, error) {
	s.last = idOrSlug
	return s.product, s.err
}

func TestList_FallsBackOnError(t *testing.T) {
	primary := &stubCatalog{err: errors.New("db down")}
	mirror := &stubCatalog{products: []domain.Product{{ID: "p1"}}}
	svc := New(&stubFinder{}, nil, primary, mirror)

	got, err := svc.List(context.Background(), " beauty ", 10)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "beauty", mirror.lastCat)
	assert.Equal(t, 10, mirror.lastLim)
}

func TestList_AllFail(t *testing.T) {
	svc := New(&stubFinder{}, nil, &stubCatalog{err: errors.New("a")}, &stubCatalog{err: errors.New("b")})

	_, err := svc.List(context.Background(), "", 0)
	assert.EqualError(t, err, "b")
}

func TestGet_Delegates(t *testing.T) {
	f := &stubFinder{product: &domain.Product{ID: "p1"}}
	svc := New(f, nil)

	p, err := svc.Get(context.Background(), "argan-oil")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "argan-oil", f.last)
}
