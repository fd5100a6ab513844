package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/products/:idOrSlug", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("204", http.MethodGet, "/products/:idOrSlug"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("204", http.MethodGet, "/products/:idOrSlug"))
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	ResolverResults.WithLabelValues("postgres", "found").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_resolver_results_total"))
}
