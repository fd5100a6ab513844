// Package resolver turns variant ids into product snapshots by consulting an
// ordered list of product sources.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	productrepo "storefront/internal/repository/product"
)

// Outcome is the three-way result of asking one source for a product.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	Transient
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// Source is one product data source with its own timeout.
type Source struct {
	Name    string
	Catalog productrepo.Catalog
	Timeout time.Duration
}

// ExhaustedError is returned when every source failed transiently.
// It matches domain.ErrNotFound so callers can treat it as absence.
type ExhaustedError struct {
	VariantID string
	Errs      []error
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("resolve %s: all sources failed: %s", e.VariantID, strings.Join(msgs, "; "))
}

func (e *ExhaustedError) Is(target error) bool { return target == domain.ErrNotFound }

func (e *ExhaustedError) Unwrap() []error { return e.Errs }

type lookupFunc func(ctx context.Context, c productrepo.Catalog, key string) (*domain.Product, error)

// Resolver walks its sources in order. It is safe for concurrent use.
type Resolver struct {
	sources []Source
	logger  *log.Logger
}

func New(logger *log.Logger, sources ...Source) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{sources: sources, logger: logger}
}

// Resolve maps a variant id to a snapshot, or an error matching domain.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, variantID string) (domain.ProductSnapshot, error) {
	productID := domain.ProductIDFromVariant(strings.TrimSpace(variantID))
	if productID == "" {
		return domain.ProductSnapshot{}, domain.ErrNotFound
	}
	p, err := r.walk(ctx, variantID, productID, func(ctx context.Context, c productrepo.Catalog, id string) (*domain.Product, error) {
		return c.GetProduct(ctx, id)
	})
	if err != nil {
		return domain.ProductSnapshot{}, err
	}
	return p.Snapshot(), nil
}

// Product looks a product up by id, falling back to slug, through the same source chain.
func (r *Resolver) Product(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	key := strings.TrimSpace(idOrSlug)
	if key == "" {
		return nil, domain.ErrNotFound
	}
	p, err := r.walk(ctx, key, key, func(ctx context.Context, c productrepo.Catalog, id string) (*domain.Product, error) {
		return c.GetProduct(ctx, id)
	})
	var exhausted *ExhaustedError
	if err == nil || !errors.Is(err, domain.ErrNotFound) || errors.As(err, &exhausted) {
		return p, err
	}
	return r.walk(ctx, key, key, func(ctx context.Context, c productrepo.Catalog, slug string) (*domain.Product, error) {
		return c.GetProductBySlug(ctx, slug)
	})
}

func (r *Resolver) walk(ctx context.Context, label, key string, lookup lookupFunc) (*domain.Product, error) {
	var errs []error
	for _, src := range r.sources {
		p, outcome, err := r.try(ctx, src, key, lookup)
		metrics.ResolverResults.WithLabelValues(src.Name, outcome.String()).Inc()
		switch outcome {
		case Found:
			return p, nil
		case NotFound:
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("resolver: source=%s key=%s transient error=%v", src.Name, label, err)
		errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
		if ctx.Err() != nil {
			// The caller gave up; later sources would fail the same way.
			break
		}
	}
	if len(errs) == 0 {
		return nil, domain.ErrNotFound
	}
	return nil, &ExhaustedError{VariantID: label, Errs: errs}
}

func (r *Resolver) try(ctx context.Context, src Source, key string, lookup lookupFunc) (*domain.Product, Outcome, error) {
	if src.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, src.Timeout)
		defer cancel()
	}
	type result struct {
		p   *domain.Product
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := lookup(ctx, src.Catalog, key)
		done <- result{p, err}
	}()

	var p *domain.Product
	var err error
	select {
	case res := <-done:
		p, err = res.p, res.err
	case <-ctx.Done():
		return nil, Transient, ctx.Err()
	}
	switch {
	case err == nil && p != nil:
		return p, Found, nil
	case err == nil:
		return nil, NotFound, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, NotFound, err
	default:
		return nil, Transient, err
	}
}
