package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	const q = `
INSERT INTO orders (id, tracking_number, customer_name, phone, city, address, notes, items, subtotal, delivery_fee, total, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`
	_, err = r.pool.Exec(ctx, q,
		o.ID,
		o.TrackingNumber,
		o.Customer.Name,
		o.Customer.Phone,
		o.Customer.City,
		o.Customer.Address,
		o.Customer.Notes,
		items,
		o.Subtotal,
		o.DeliveryFee,
		o.Total,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Printf("order repo: create tracking=%s duplicate", o.TrackingNumber)
			return domain.ErrAlreadyExists
		}
		r.logger.Printf("order repo: create tracking=%s error=%v", o.TrackingNumber, err)
		return err
	}
	r.logger.Printf("order repo: created id=%s tracking=%s total=%d", o.ID, o.TrackingNumber, o.Total)
	return nil
}

func (r *postgresRepo) GetByTracking(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	const q = `
SELECT id::text, tracking_number, customer_name, phone, city, address, notes, items, subtotal, delivery_fee, total, status, created_at, updated_at
FROM orders
WHERE tracking_number = $1
`
	var (
		o   domain.Order
		raw []byte
	)
	err := r.pool.QueryRow(ctx, q, trackingNumber).Scan(
		&o.ID,
		&o.TrackingNumber,
		&o.Customer.Name,
		&o.Customer.Phone,
		&o.Customer.City,
		&o.Customer.Address,
		&o.Customer.Notes,
		&raw,
		&o.Subtotal,
		&o.DeliveryFee,
		&o.Total,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items tracking=%s: %w", trackingNumber, err)
	}
	return &o, nil
}
