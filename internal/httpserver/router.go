package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	"storefront/internal/service/delivery"
)

type CartService interface {
	GetCart(ctx context.Context, cartID, city string) (cartsvc.View, error)
	AddItem(ctx context.Context, cartID, variantID string, qty int, city string) (cartsvc.View, error)
	RemoveItem(ctx context.Context, cartID, variantID, city string) (cartsvc.View, error)
	SetQuantity(ctx context.Context, cartID, variantID string, qty int, city string) (cartsvc.View, error)
	ClearCart(ctx context.Context, cartID string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, cartID string, customer domain.Customer) (*domain.Order, error)
}

type ProductService interface {
	Get(ctx context.Context, idOrSlug string) (*domain.Product, error)
	List(ctx context.Context, categoryID string, limit int) ([]domain.Product, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	ListWithProducts(ctx context.Context, limit int) ([]categorysvc.Listing, error)
}

type SessionService interface {
	Issue(ctx context.Context, cartID string) (string, time.Time, error)
	CartID(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	TTLSeconds() int
}

type OrderReader interface {
	GetByTracking(ctx context.Context, trackingNumber string) (*domain.Order, error)
}

type DeliveryQuoter interface {
	Quote(subtotal int64, city string) delivery.Quote
}

// Deps are the services the API is built from. Ready serves /readyz.
type Deps struct {
	Carts        CartService
	Checkout     CheckoutService
	Products     ProductService
	Categories   CategoryService
	Sessions     SessionService
	Orders       OrderReader
	Delivery     DeliveryQuoter
	Ready        http.Handler
	CORSOrigins  []string
	CookieSecure bool
}

func (d Deps) validate() error {
	switch {
	case d.Carts == nil:
		return errors.New("httpserver: cart service required")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout service required")
	case d.Products == nil:
		return errors.New("httpserver: product service required")
	case d.Categories == nil:
		return errors.New("httpserver: category service required")
	case d.Sessions == nil:
		return errors.New("httpserver: session service required")
	case d.Orders == nil:
		return errors.New("httpserver: order reader required")
	case d.Delivery == nil:
		return errors.New("httpserver: delivery quoter required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	if deps.Ready != nil {
		router.GET("/readyz", gin.WrapH(deps.Ready))
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/products", h.listProducts)
	router.GET("/products/:idOrSlug", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.GET("/delivery/quote", h.deliveryQuote)
	router.GET("/cities", h.cities)

	cart := router.Group("/cart")
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/items", h.addItem)
	cart.PUT("/items/:variantId", h.setQuantity)
	cart.DELETE("/items/:variantId", h.removeItem)

	router.POST("/checkout", h.checkout)
	router.GET("/orders/:trackingNumber", h.getOrder)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, cartTokenHeader)
	cfg.ExposeHeaders = []string{cartTokenHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
