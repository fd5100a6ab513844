package cart

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	"storefront/internal/metrics"
)

const (
	defaultEnrichLimit   = 4
	defaultEnrichTimeout = 3 * time.Second
)

// Enricher refreshes line-item snapshots from the resolver with bounded parallelism.
type Enricher struct {
	resolver Resolver
	limit    int
	timeout  time.Duration
	logger   *log.Logger
}

func NewEnricher(resolver Resolver, limit int, timeout time.Duration, logger *log.Logger) *Enricher {
	if limit < 1 {
		limit = defaultEnrichLimit
	}
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Enricher{resolver: resolver, limit: limit, timeout: timeout, logger: logger}
}

// Enrich returns a copy of cart with fresh snapshots. Order and count of line items are
// preserved; items that fail to resolve, or are still pending at the deadline, keep
// their cached snapshot. Enrich never fails.
func (e *Enricher) Enrich(ctx context.Context, cart *domain.Cart) *domain.Cart {
	out := cart.Clone()
	if out == nil || len(out.LineItems) == 0 {
		return out
	}
	start := time.Now()
	defer func() { metrics.EnrichDuration.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		closed bool
		fresh  = make([]*domain.ProductSnapshot, len(out.LineItems))
		errs   = make([]error, len(out.LineItems))
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		g.SetLimit(e.limit)
		for i, item := range out.LineItems {
			if ctx.Err() != nil {
				break
			}
			variantID := item.VariantID
			g.Go(func() error {
				snap, err := e.resolver.Resolve(ctx, variantID)
				mu.Lock()
				defer mu.Unlock()
				if closed {
					return nil
				}
				if err != nil {
					errs[i] = err
					return nil
				}
				fresh[i] = &snap
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	closed = true
	defer mu.Unlock()

	for i := range out.LineItems {
		item := &out.LineItems[i]
		switch {
		case fresh[i] != nil:
			item.Product = *fresh[i]
		case errs[i] != nil:
			metrics.EnrichStale.WithLabelValues("error").Inc()
			e.logger.Printf("enrich: cart=%s variant=%s kept cached snapshot error=%v", out.ID, item.VariantID, errs[i])
		default:
			metrics.EnrichStale.WithLabelValues("timeout").Inc()
			e.logger.Printf("enrich: cart=%s variant=%s kept cached snapshot reason=deadline", out.ID, item.VariantID)
		}
	}
	return out
}
