package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/videotube/videotube-api/internal/core/domain"
)

type Config struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

type accessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session tokens. Access and refresh tokens
// are signed with separate secrets.
type Manager struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token secrets not configured")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// IssuePair signs a new access and refresh token for user. Each token gets its
// own jti so two pairs issued within the same second still differ.
func (m *Manager) IssuePair(user *domain.User) (domain.TokenPair, error) {
	if user == nil || user.ID == "" {
		return domain.TokenPair{}, errors.New("user id required")
	}
	now := m.now()
	accessExp := now.Add(m.accessTTL)
	refreshExp := now.Add(m.refreshTTL)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	})
	accessToken, err := access.SignedString(m.accessSecret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(refreshExp),
	})
	refreshToken, err := refresh.SignedString(m.refreshSecret)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) ParseAccessToken(tokenStr string) (*domain.AccessClaims, error) {
	claims := &accessClaims{}
	if _, err := m.parse(tokenStr, claims, m.accessSecret); err != nil {
		return nil, domain.ErrInvalidAccessToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidAccessToken
	}
	return &domain.AccessClaims{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
		FullName:  claims.FullName,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) ParseRefreshToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := m.parse(tokenStr, claims, m.refreshSecret); err != nil {
		return "", domain.ErrInvalidRefreshToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidRefreshToken
	}
	return claims.Subject, nil
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims, secret []byte) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
}
