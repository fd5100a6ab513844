package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/service/session"
)

var errSessionUnavailable = errors.New("cart session unavailable")

const (
	cartCookie      = "cart_token"
	cartTokenHeader = "X-Cart-Token"
)

// cartSession is what the request layer knows about the caller's cart.
type cartSession struct {
	token  string
	cartID string
}

// session resolves the cart id from the cookie or header. An unknown or expired
// token yields an empty cart id, so the next mutation starts a fresh cart. Any
// other lookup failure is returned so the caller's cart is not replaced.
func (h *handlers) session(c *gin.Context) (cartSession, error) {
	token := strings.TrimSpace(c.GetHeader(cartTokenHeader))
	if token == "" {
		if v, err := c.Cookie(cartCookie); err == nil {
			token = v
		}
	}
	if token == "" {
		return cartSession{}, nil
	}
	cartID, err := h.deps.Sessions.CartID(c.Request.Context(), token)
	switch {
	case errors.Is(err, session.ErrInvalidToken):
		return cartSession{}, nil
	case err != nil:
		return cartSession{}, fmt.Errorf("%w: %w", errSessionUnavailable, err)
	}
	return cartSession{token: token, cartID: cartID}, nil
}

// bind issues a token for a cart created by this request.
func (h *handlers) bind(c *gin.Context, s cartSession, cartID string) error {
	if cartID == "" || cartID == s.cartID {
		return nil
	}
	token, _, err := h.deps.Sessions.Issue(c.Request.Context(), cartID)
	if err != nil {
		return err
	}
	if s.token != "" {
		_ = h.deps.Sessions.Revoke(c.Request.Context(), s.token)
	}
	h.setCookie(c, token, h.deps.Sessions.TTLSeconds())
	c.Header(cartTokenHeader, token)
	return nil
}

// release revokes the token once its cart is gone.
func (h *handlers) release(c *gin.Context, s cartSession) {
	if s.token == "" {
		return
	}
	if err := h.deps.Sessions.Revoke(c.Request.Context(), s.token); err != nil {
		h.logger.Printf("http: revoke cart token: %v", err)
	}
	h.setCookie(c, "", -1)
}

func (h *handlers) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, value, maxAge, "/", "", h.deps.CookieSecure, true)
}
