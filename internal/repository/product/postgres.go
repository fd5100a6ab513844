package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns the primary catalog backed by the products table.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id, name, slug, COALESCE(description, ''), images, COALESCE(category_id, ''), price::text, promo_price::text, stock, is_active, created_at, updated_at`

func (r *postgresRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE slug = $1 LIMIT 1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get slug=%s not found", slug)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get slug=%s error=%v", slug, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListProductsByCategory(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + `
FROM products
WHERE ($1 = '' OR category_id = $1)
ORDER BY created_at DESC, id
LIMIT $2`
	rows, err := r.pool.Query(ctx, q, categoryID, normalizeLimit(limit))
	if err != nil {
		r.logger.Printf("product repo: list category_id=%s error=%v", categoryID, err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows category_id=%s error=%v", categoryID, err)
		return nil, err
	}
	r.logger.Printf("product repo: list category_id=%s count=%d", categoryID, len(result))
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, errors.New("product repo: id required")
	}
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = p.ID
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	var promo *string
	if p.PromoPrice.Valid {
		s := p.PromoPrice.Decimal.String()
		promo = &s
	}
	const q = `
INSERT INTO products (id, name, slug, description, images, category_id, price, promo_price, stock, is_active)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7::numeric, $8::numeric, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    slug = EXCLUDED.slug,
    description = EXCLUDED.description,
    images = EXCLUDED.images,
    category_id = EXCLUDED.category_id,
    price = EXCLUDED.price,
    promo_price = EXCLUDED.promo_price,
    stock = EXCLUDED.stock,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING ` + productColumns
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		p.ID,
		p.Name,
		slug,
		p.Description,
		images,
		p.CategoryID,
		p.Price.String(),
		promo,
		p.Stock,
		p.IsActive,
	))
	if err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%s slug=%s", res.ID, res.Slug)
	return res, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
		promo *string
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Images,
		&p.CategoryID,
		&price,
		&promo,
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s: parse price: %w", p.ID, err)
	}
	p.Price = d
	if promo != nil {
		pd, err := decimal.NewFromString(*promo)
		if err != nil {
			return nil, fmt.Errorf("product %s: parse promo price: %w", p.ID, err)
		}
		p.PromoPrice = decimal.NewNullDecimal(pd)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}
