package token

import (
	"context"
	"time"
)

// Token maps an opaque cart session token to the cart it identifies.
type Token struct {
	Token     string
	CartID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type Repository interface {
	// Create returns domain.ErrAlreadyExists when the token value collides.
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
