package category

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id, name, slug, position, created_at
FROM categories
ORDER BY position ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Position, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("category id required")
	}
	const q = `
INSERT INTO categories (id, name, slug, position)
VALUES ($1, $2, COALESCE(NULLIF($3, ''), $1), $4)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    slug = EXCLUDED.slug,
    position = EXCLUDED.position
RETURNING id, name, slug, position, created_at
`
	var out domain.Category
	err := r.pool.QueryRow(ctx, q, c.ID, c.Name, c.Slug, c.Position).
		Scan(&out.ID, &out.Name, &out.Slug, &out.Position, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
