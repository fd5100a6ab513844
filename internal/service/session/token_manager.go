package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

const issueAttempts = 5

var errTokenCollision = errors.New("token collision")

type tokenManager struct {
	repo tokenrepo.Repository
	now  func() time.Time
}

func newTokenManager(repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *tokenManager) Issue(ctx context.Context, cartID string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < issueAttempts; i++ {
		token, err := randomToken()
		if err != nil {
			return "", time.Time{}, err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			CartID:    cartID,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, expiresAt, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", time.Time{}, err
	}
	return "", time.Time{}, errTokenCollision
}

// Validate returns the token record if it exists and has not expired, and
// ErrInvalidToken otherwise. Expired tokens are removed on sight. Repository
// failures are returned as is so callers do not mistake them for a missing token.
func (m *tokenManager) Validate(ctx context.Context, token string) (*tokenrepo.Token, error) {
	meta, err := m.repo.Get(ctx, token)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, ErrInvalidToken
	case err != nil:
		return nil, fmt.Errorf("lookup cart token: %w", err)
	}
	if meta.Expired(m.now()) {
		_ = m.repo.Delete(ctx, token)
		return nil, ErrInvalidToken
	}
	return meta, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
