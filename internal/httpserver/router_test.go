package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	"storefront/internal/service/checkout"
	"storefront/internal/service/delivery"
	"storefront/internal/service/session"
)

type stubResolver struct {
	snapshots map[string]domain.ProductSnapshot
}

func (s *stubResolver) Resolve(_ context.Context, variantID string) (domain.ProductSnapshot, error) {
	snap, ok := s.snapshots[variantID]
	if !ok {
		return domain.ProductSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

type stubOrders struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	err    error
}

func (s *stubOrders) Create(_ context.Context, o domain.Order) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.TrackingNumber] = o
	return nil
}

func (s *stubOrders) GetByTracking(_ context.Context, tn string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[tn]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

type stubProducts struct {
	products []domain.Product
}

func (s *stubProducts) Get(_ context.Context, idOrSlug string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == idOrSlug || p.Slug == idOrSlug {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProducts) List(_ context.Context, categoryID string, _ int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubCategories struct{}

func (stubCategories) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "beauty", Name: "Beauty", Slug: "beauty"}}, nil
}

func (stubCategories) ListWithProducts(context.Context, int) ([]categorysvc.Listing, error) {
	return []categorysvc.Listing{{
		Category: domain.Category{ID: "beauty", Name: "Beauty", Slug: "beauty"},
		Products: []domain.Product{{ID: "p1", Name: "Argan Oil", CategoryID: "beauty"}},
	}}, nil
}

// unavailableSessions fails every token lookup as a down token store would.
type unavailableSessions struct {
	issued int
}

func (s *unavailableSessions) Issue(context.Context, string) (string, time.Time, error) {
	s.issued++
	return "fresh", time.Now().Add(time.Hour), nil
}

func (s *unavailableSessions) CartID(context.Context, string) (string, error) {
	return "", errors.New("token store timeout")
}

func (s *unavailableSessions) Revoke(context.Context, string) error { return nil }

func (s *unavailableSessions) TTLSeconds() int { return 3600 }

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type testAPI struct {
	router *gin.Engine
	orders *stubOrders
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWithSessions(t, session.New(tokenrepo.NewMemory(), session.DefaultTTL))
}

func newTestAPIWithSessions(t *testing.T, sessions SessionService) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resolver := &stubResolver{snapshots: map[string]domain.ProductSnapshot{
		"p1-v1": {ProductID: "p1", Name: "Argan Oil", Slug: "argan-oil", PriceMinorUnits: 10000},
		"p2-v1": {ProductID: "p2", Name: "Tagine", Slug: "tagine", PriceMinorUnits: 60000},
	}}
	store := cartsvc.NewStore(cartrepo.NewMemory(), resolver, logDiscard())
	enricher := cartsvc.NewEnricher(resolver, 2, time.Second, logDiscard())
	fees := delivery.Policy{}
	orders := &stubOrders{orders: make(map[string]domain.Order)}

	router, err := buildRouter(logDiscard(), Deps{
		Carts:    cartsvc.NewService(store, enricher, fees),
		Checkout: checkout.New(store, enricher, fees, orders, logDiscard()),
		Products: &stubProducts{products: []domain.Product{
			{ID: "p1", Name: "Argan Oil", Slug: "argan-oil", CategoryID: "beauty", Stock: 3},
		}},
		Categories: stubCategories{},
		Sessions:   sessions,
		Orders:     orders,
		Delivery:   fees,
	})
	require.NoError(t, err)
	return &testAPI{router: router, orders: orders}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(cartTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBuildRouter_RequiresDeps(t *testing.T) {
	_, err := buildRouter(logDiscard(), Deps{})
	require.Error(t, err)
}

func TestAddItem_IssuesTokenAndReturnsCart(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token := rec.Header().Get(cartTokenHeader)
	require.NotEmpty(t, token)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), cartCookie+"=")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "HttpOnly")

	cart := decode[cartResponse](t, rec)
	require.Len(t, cart.LineItems, 1)
	assert.Equal(t, 2, cart.LineItems[0].Quantity)
	assert.Equal(t, int64(20000), cart.Subtotal.CentAmount)
	assert.Equal(t, int64(2500), cart.DeliveryFee.CentAmount)
	assert.Equal(t, "MAD", cart.Total.CurrencyCode)

	rec = api.do(t, http.MethodPost, "/cart/items", token, `{"variantId":"p1-v1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(cartTokenHeader), "existing cart keeps its token")

	rec = api.do(t, http.MethodGet, "/cart?city=Rabat", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[cartResponse](t, rec)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, int64(0), cart.DeliveryFee.CentAmount)
}

func TestAddItem_Errors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"missing-v1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/cart/items", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_QuantityBounds(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1","quantity":1000000000000000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get(cartTokenHeader))

	rec = api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1","quantity":999}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := rec.Header().Get(cartTokenHeader)

	rec = api.do(t, http.MethodPost, "/cart/items", token, `{"variantId":"p1-v1","quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/cart/items/p1-v1", token, `{"quantity":1000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/cart", token, "")
	cart := decode[cartResponse](t, rec)
	require.Len(t, cart.LineItems, 1)
	assert.Equal(t, 999, cart.LineItems[0].Quantity)
	assert.Equal(t, int64(9990000), cart.Subtotal.CentAmount)
}

func TestSessionStoreFailureKeepsCookie(t *testing.T) {
	sessions := &unavailableSessions{}
	api := newTestAPIWithSessions(t, sessions)

	rec := api.do(t, http.MethodPost, "/cart/items", "existing-token", `{"variantId":"p1-v1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
	assert.Equal(t, 0, sessions.issued, "no replacement cart may be bound")

	rec = api.do(t, http.MethodGet, "/cart", "existing-token", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "callers without a token are unaffected")
}

func TestGetCart_UnknownTokenIsEmpty(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/cart", "bogus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[cartResponse](t, rec)
	assert.Empty(t, cart.LineItems)
	assert.Equal(t, int64(0), cart.Total.CentAmount)
}

func TestSetQuantityAndRemove(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1"}`)
	token := rec.Header().Get(cartTokenHeader)

	rec = api.do(t, http.MethodPut, "/cart/items/p1-v1", token, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[cartResponse](t, rec).ItemCount)

	rec = api.do(t, http.MethodDelete, "/cart/items/p1-v1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartResponse](t, rec).LineItems)
}

func TestClearCart_Idempotent(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1"}`)
	token := rec.Header().Get(cartTokenHeader)

	for i := 0; i < 2; i++ {
		rec = api.do(t, http.MethodDelete, "/cart", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	}
}

func TestCheckout_PlacesOrderAndRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1","quantity":2}`)
	token := rec.Header().Get(cartTokenHeader)

	body := `{"customerName":"Amina","phone":"0600000000","city":"Casablanca","address":"1 Rue X"}`
	rec = api.do(t, http.MethodPost, "/checkout", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	order := decode[orderResponse](t, rec)
	assert.Regexp(t, checkout.TrackingPattern, order.TrackingNumber)
	assert.Equal(t, int64(20000), order.Subtotal.CentAmount)
	assert.Equal(t, int64(2500), order.DeliveryFee.CentAmount)
	assert.Equal(t, int64(22500), order.Total.CentAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	rec = api.do(t, http.MethodGet, "/cart", token, "")
	assert.Empty(t, decode[cartResponse](t, rec).LineItems)

	rec = api.do(t, http.MethodPost, "/checkout", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodGet, "/orders/"+strings.ToLower(order.TrackingNumber), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.ID, decode[orderResponse](t, rec).ID)
}

func TestCheckout_ValidationFields(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p1-v1"}`)
	token := rec.Header().Get(cartTokenHeader)

	rec = api.do(t, http.MethodPost, "/checkout", token, `{"customerName":"Amina","city":"Rabat"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.Contains(t, resp.Fields, "phone")
	assert.Contains(t, resp.Fields, "address")

	rec = api.do(t, http.MethodGet, "/cart", token, "")
	assert.Len(t, decode[cartResponse](t, rec).LineItems, 1)
}

func TestCheckout_PersistenceFailure(t *testing.T) {
	api := newTestAPI(t)
	api.orders.err = errors.New("db down")
	rec := api.do(t, http.MethodPost, "/cart/items", "", `{"variantId":"p2-v1"}`)
	token := rec.Header().Get(cartTokenHeader)

	body := `{"customerName":"Amina","phone":"0600000000","city":"Rabat","address":"1 Rue X"}`
	rec = api.do(t, http.MethodPost, "/checkout", token, body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = api.do(t, http.MethodGet, "/cart", token, "")
	assert.Len(t, decode[cartResponse](t, rec).LineItems, 1)
}

func TestCheckout_WithoutCart(t *testing.T) {
	api := newTestAPI(t)
	body := `{"customerName":"Amina","phone":"0600000000","city":"Rabat","address":"1 Rue X"}`
	rec := api.do(t, http.MethodPost, "/checkout", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProducts(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/products/argan-oil", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[productResponse](t, rec)
	assert.Equal(t, "p1-v1", p.VariantID)
	assert.True(t, p.InStock)

	rec = api.do(t, http.MethodGet, "/products/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/products?category=beauty", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[productListResponse](t, rec).Count)

	rec = api.do(t, http.MethodGet, "/products?limit=x", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/categories", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"products"`)

	rec = api.do(t, http.MethodGet, "/categories?products=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Results []categoryResponse `json:"results"`
	}](t, rec)
	require.Len(t, resp.Results, 1)
	require.Len(t, resp.Results[0].Products, 1)
	assert.Equal(t, "p1-v1", resp.Results[0].Products[0].VariantID)
}

func TestDeliveryQuote(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/delivery/quote?subtotal=20000&city=Sal%C3%A9", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	q := decode[delivery.Quote](t, rec)
	assert.True(t, q.Free)
	assert.Equal(t, delivery.ReasonZone, q.Reason)

	rec = api.do(t, http.MethodGet, "/delivery/quote?subtotal=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/cities", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Casablanca")
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
