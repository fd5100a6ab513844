package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

type errorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
}

// writeError maps domain errors to HTTP statuses. Unknown errors are logged and
// reported as 500 without leaking their text.
func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		verr *domain.ValidationError
		perr *domain.PersistenceError
	)
	resp := errorResponse{Message: err.Error()}
	switch {
	case errors.As(err, &verr):
		resp.StatusCode = http.StatusUnprocessableEntity
		resp.Fields = verr.Fields
	case errors.Is(err, domain.ErrProductUnavailable):
		resp.StatusCode = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		resp.StatusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyCart):
		resp.StatusCode = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidQuantity):
		resp.StatusCode = http.StatusBadRequest
	case errors.Is(err, errSessionUnavailable):
		h.logger.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		resp.StatusCode = http.StatusServiceUnavailable
		resp.Message = "cart session unavailable, please retry"
	case errors.As(err, &perr):
		h.logger.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		resp.StatusCode = http.StatusServiceUnavailable
		resp.Message = "order could not be saved, please retry"
	default:
		h.logger.Printf("http: %s %s: %v", c.Request.Method, c.FullPath(), err)
		resp.StatusCode = http.StatusInternalServerError
		resp.Message = "internal error"
	}
	c.AbortWithStatusJSON(resp.StatusCode, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{StatusCode: http.StatusBadRequest, Message: msg})
}
