package ports

import (
	"context"
	"time"

	"github.com/videotube/videotube-api/internal/core/domain"
)

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	IssuePair(user *domain.User) (domain.TokenPair, error)
	ParseAccessToken(token string) (*domain.AccessClaims, error)
	// ParseRefreshToken verifies token and returns the user id it was issued to.
	ParseRefreshToken(token string) (string, error)
}

// TokenBlacklist revokes access tokens before their natural expiry.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
