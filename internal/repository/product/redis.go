package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/domain"
)

const (
	keyPrefix    = "product:"
	slugPrefix   = "product:slug:"
	allProducts  = "products:all"
	categoryKeyF = "category:%s:products"
)

// ProductKey returns the mirror key of a product document.
func ProductKey(id string) string { return keyPrefix + id }

// SlugKey returns the mirror key mapping a slug to a product id.
func SlugKey(slug string) string { return slugPrefix + slug }

// CategoryKey returns the set of product ids in a category.
func CategoryKey(categoryID string) string { return fmt.Sprintf(categoryKeyF, categoryID) }

// Mirror is the public-read catalog kept in Redis as JSON documents.
type Mirror struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisMirror builds a Mirror. A ttl of zero stores documents without expiry.
func NewRedisMirror(client redis.Cmdable, ttl time.Duration, logger *log.Logger) *Mirror {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Mirror{client: client, ttl: ttl, logger: logger}
}

func (m *Mirror) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	data, err := m.client.Get(ctx, ProductKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		m.logger.Printf("product mirror: get id=%s error=%v", id, err)
		return nil, fmt.Errorf("get product %s from redis: %w", id, err)
	}
	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product %s: %w", id, err)
	}
	return &p, nil
}

func (m *Mirror) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	id, err := m.client.Get(ctx, SlugKey(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get slug %s from redis: %w", slug, err)
	}
	return m.GetProduct(ctx, id)
}

func (m *Mirror) ListProductsByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	setKey := allProducts
	if categoryID != "" {
		setKey = CategoryKey(categoryID)
	}
	ids, err := m.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s from redis: %w", setKey, err)
	}
	result := []domain.Product{}
	if len(ids) == 0 {
		return result, nil
	}
	sort.Strings(ids)
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductKey(id)
	}
	values, err := m.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget products from redis: %w", err)
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Set member without a document; the mirror is eventually consistent.
			continue
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			m.logger.Printf("product mirror: skip id=%s error=%v", ids[i], err)
			continue
		}
		result = append(result, p)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit = normalizeLimit(limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Publish writes a product document plus its slug and category indexes.
func (m *Mirror) Publish(ctx context.Context, p domain.Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("product mirror: id required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product %s: %w", p.ID, err)
	}
	if err := m.client.Set(ctx, ProductKey(p.ID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("set product %s in redis: %w", p.ID, err)
	}
	slug := p.Slug
	if slug == "" {
		slug = p.ID
	}
	if err := m.client.Set(ctx, SlugKey(slug), p.ID, m.ttl).Err(); err != nil {
		return fmt.Errorf("set slug %s in redis: %w", slug, err)
	}
	if err := m.client.SAdd(ctx, allProducts, p.ID).Err(); err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	if p.CategoryID != "" {
		if err := m.client.SAdd(ctx, CategoryKey(p.CategoryID), p.ID).Err(); err != nil {
			return fmt.Errorf("index product %s in category %s: %w", p.ID, p.CategoryID, err)
		}
	}
	m.logger.Printf("product mirror: published id=%s slug=%s", p.ID, slug)
	return nil
}

// Upsert publishes the product and returns it, so the mirror can act as an import target.
func (m *Mirror) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := m.Publish(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}
