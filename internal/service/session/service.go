// Package session issues the opaque tokens that carry cart identity between requests.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// DefaultTTL is the lifetime of a cart token.
const DefaultTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Service struct {
	tokens *tokenManager
	ttl    time.Duration
}

func New(repo tokenrepo.Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{tokens: newTokenManager(repo), ttl: ttl}
}

// Issue binds a new token to cartID.
func (s *Service) Issue(ctx context.Context, cartID string) (token string, expiresAt time.Time, err error) {
	if strings.TrimSpace(cartID) == "" {
		return "", time.Time{}, errors.New("cart id required")
	}
	return s.tokens.Issue(ctx, cartID, s.ttl)
}

// CartID resolves a token to its cart. Unknown or expired tokens yield ErrInvalidToken;
// token store failures are returned wrapped.
func (s *Service) CartID(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	meta, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	return meta.CartID, nil
}

// Revoke deletes the token. Revoking an unknown token is not an error.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.tokens.repo.Delete(ctx, token); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// TTLSeconds is the cookie Max-Age for issued tokens.
func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
