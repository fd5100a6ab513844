package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres stores carts in the carts and cart_lines tables.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Load(ctx context.Context, id string) (*domain.Cart, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM carts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	rows, err := r.pool.Query(ctx, `
SELECT variant_id, quantity, snapshot
FROM cart_lines
WHERE cart_id = $1
ORDER BY position
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := &domain.Cart{ID: id, LineItems: []domain.LineItem{}}
	for rows.Next() {
		var (
			line domain.LineItem
			raw  []byte
		)
		if err := rows.Scan(&line.VariantID, &line.Quantity, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &line.Product); err != nil {
			return nil, fmt.Errorf("decode snapshot cart=%s variant=%s: %w", id, line.VariantID, err)
		}
		cart.LineItems = append(cart.LineItems, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

// Save replaces the cart's lines in one transaction.
func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (id) VALUES ($1)
ON CONFLICT (id) DO UPDATE SET updated_at = now()
`, cart.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cart.ID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, line := range cart.LineItems {
		if line.Quantity <= 0 {
			return fmt.Errorf("cart %s: line %s has quantity %d", cart.ID, line.VariantID, line.Quantity)
		}
		snap, err := json.Marshal(line.Product)
		if err != nil {
			return err
		}
		batch.Queue(`
INSERT INTO cart_lines (cart_id, position, variant_id, quantity, snapshot)
VALUES ($1, $2, $3, $4, $5)
`, cart.ID, i, line.VariantID, line.Quantity, snap)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}
