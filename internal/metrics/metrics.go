// Package metrics holds the storefront's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ResolverResults counts per-source resolution outcomes (found, not_found, transient).
	ResolverResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_resolver_results_total",
			Help: "Product source lookups by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	// EnrichStale counts line items that kept their cached snapshot during enrichment.
	EnrichStale = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_enrich_stale_items_total",
			Help: "Line items served from their last known snapshot, by reason.",
		},
		[]string{"reason"},
	)

	EnrichDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_enrich_duration_seconds",
			Help:    "Wall time of a cart enrichment pass.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CheckoutTotal counts checkout attempts by result.
	CheckoutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_total",
			Help: "Checkout attempts by result.",
		},
		[]string{"result"},
	)
)

// Middleware records request counts and latency keyed by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, path).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
