package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/videotube-api/internal/api/metrics"
	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

const (
	AccessTokenCookie = "accessToken"

	contextKeyUser   = "user"
	contextKeyClaims = "claims"
)

// UserFinder resolves the account behind a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth verifies the access token from the accessToken cookie or the
// Authorization bearer header and injects the user and claims into context.
// Revoked tokens and tokens of deleted users are rejected.
func Auth(tokens ports.TokenIssuer, blacklist ports.TokenBlacklist, users UserFinder, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := accessToken(c)
			if raw == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthorized
			}

			claims, err := tokens.ParseAccessToken(raw)
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidAccessToken
			}

			ctx := c.Request().Context()
			revoked, err := blacklist.IsRevoked(ctx, claims.TokenID)
			if err != nil {
				return fmt.Errorf("auth: blacklist lookup: %w", err)
			}
			if revoked {
				metrics.TokenRejectionsTotal.WithLabelValues("revoked").Inc()
				return domain.ErrInvalidAccessToken
			}

			user, err := users.FindByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.TokenRejectionsTotal.WithLabelValues("unknown_user").Inc()
					log.Debug().Str("user_id", claims.UserID).Msg("token for unknown user")
					return domain.ErrInvalidAccessToken
				}
				return fmt.Errorf("auth: load user: %w", err)
			}

			c.Set(contextKeyUser, user)
			c.Set(contextKeyClaims, claims)
			return next(c)
		}
	}
}

func accessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// CurrentUser returns the user injected by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextKeyUser).(*domain.User)
	return user, ok && user != nil
}

// CurrentClaims returns the access token claims injected by Auth.
func CurrentClaims(c echo.Context) (*domain.AccessClaims, bool) {
	claims, ok := c.Get(contextKeyClaims).(*domain.AccessClaims)
	return claims, ok && claims != nil
}
