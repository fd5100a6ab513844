package httpserver

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service/delivery"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

// Quantity bounds mirror domain.MaxQuantity.
type addItemRequest struct {
	VariantID string `json:"variantId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"omitempty,min=1,max=999"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=999"`
}

type checkoutRequest struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
}

func (h *handlers) listProducts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	products, err := h.deps.Products.List(c.Request.Context(), strings.TrimSpace(c.Query("category")), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, productListResponse{Count: len(results), Results: results})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Products.Get(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

// listCategories returns categories, with their products when ?products=true.
func (h *handlers) listCategories(c *gin.Context) {
	withProducts, _ := strconv.ParseBool(c.DefaultQuery("products", "false"))
	if !withProducts {
		cats, err := h.deps.Categories.List(c.Request.Context())
		if err != nil {
			h.writeError(c, err)
			return
		}
		out := make([]categoryResponse, 0, len(cats))
		for _, cat := range cats {
			out = append(out, categoryResponse{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
		}
		c.JSON(http.StatusOK, gin.H{"results": out})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	listings, err := h.deps.Categories.ListWithProducts(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	out := make([]categoryResponse, 0, len(listings))
	for _, l := range listings {
		resp := categoryResponse{ID: l.Category.ID, Name: l.Category.Name, Slug: l.Category.Slug, Products: []productResponse{}}
		for _, p := range l.Products {
			resp.Products = append(resp.Products, toProductResponse(p))
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (h *handlers) deliveryQuote(c *gin.Context) {
	subtotal, err := strconv.ParseInt(c.Query("subtotal"), 10, 64)
	if err != nil || subtotal < 0 {
		badRequest(c, "subtotal must be a non-negative amount in minor units")
		return
	}
	c.JSON(http.StatusOK, h.deps.Delivery.Quote(subtotal, c.Query("city")))
}

func (h *handlers) cities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cities": delivery.Cities})
}

func (h *handlers) getCart(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.deps.Carts.GetCart(c.Request.Context(), s.cartID, c.Query("city"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("variantId is required and quantity must be between 1 and %d", domain.MaxQuantity))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	s, err := h.session(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.deps.Carts.AddItem(c.Request.Context(), s.cartID, req.VariantID, qty, c.Query("city"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.bind(c, s, view.Cart.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("quantity is required and must not exceed %d", domain.MaxQuantity))
		return
	}
	s, err := h.session(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.deps.Carts.SetQuantity(c.Request.Context(), s.cartID, c.Param("variantId"), *req.Quantity, c.Query("city"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.bind(c, s, view.Cart.ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) removeItem(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	view, err := h.deps.Carts.RemoveItem(c.Request.Context(), s.cartID, c.Param("variantId"), c.Query("city"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *handlers) clearCart(c *gin.Context) {
	s, err := h.session(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if err := h.deps.Carts.ClearCart(c.Request.Context(), s.cartID); err != nil {
		h.writeError(c, err)
		return
	}
	h.release(c, s)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid checkout payload")
		return
	}
	s, err := h.session(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	order, err := h.deps.Checkout.Checkout(c.Request.Context(), s.cartID, domain.Customer{
		Name:    req.CustomerName,
		Phone:   req.Phone,
		City:    req.City,
		Address: req.Address,
		Notes:   req.Notes,
	})
	var clearErr *domain.CartClearError
	switch {
	case errors.As(err, &clearErr):
		// The order exists; the stale cart is only logged.
		h.logger.Printf("http: checkout placed %s but cart was not cleared: %v", clearErr.Order.TrackingNumber, clearErr.Err)
		order = clearErr.Order
	case err != nil:
		h.writeError(c, err)
		return
	}
	h.release(c, s)
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.Orders.GetByTracking(c.Request.Context(), strings.ToUpper(strings.TrimSpace(c.Param("trackingNumber"))))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
