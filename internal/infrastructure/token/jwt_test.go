package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videotube/videotube-api/internal/core/domain"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		AccessSecret:  "access-secret-32-bytes-long-enough",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret-32-bytes-long-enough",
		RefreshTTL:    240 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewManager error: %v", err)
	}
	return m
}

var testUser = &domain.User{ID: "65f0c0ffee", Username: "alice", Email: "alice@example.com", FullName: "Alice"}

func TestNewManager_RequiresSecrets(t *testing.T) {
	if _, err := NewManager(Config{AccessTTL: time.Minute, RefreshTTL: time.Hour}); err == nil {
		t.Fatalf("expected error without secrets")
	}
	if _, err := NewManager(Config{AccessSecret: "a", RefreshSecret: "b"}); err == nil {
		t.Fatalf("expected error without lifetimes")
	}
}

func TestIssuePair_AccessClaims(t *testing.T) {
	m := newTestManager(t)
	pair, err := m.IssuePair(testUser)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	claims, err := m.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.UserID != testUser.ID || claims.Username != "alice" || claims.Email != testUser.Email || claims.FullName != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected jti")
	}
	if !claims.ExpiresAt.Equal(pair.AccessExpiresAt.Truncate(time.Second)) {
		t.Fatalf("expiry mismatch: %v vs %v", claims.ExpiresAt, pair.AccessExpiresAt)
	}

	sub, err := m.ParseRefreshToken(pair.RefreshToken)
	if err != nil || sub != testUser.ID {
		t.Fatalf("ParseRefreshToken got %q, %v", sub, err)
	}
}

func TestIssuePair_Unique(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	first, err := m.IssuePair(testUser)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	second, err := m.IssuePair(testUser)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if first.RefreshToken == second.RefreshToken || first.AccessToken == second.AccessToken {
		t.Fatalf("pairs issued in the same second must differ")
	}
}

func TestParse_TokensAreNotInterchangeable(t *testing.T) {
	m := newTestManager(t)
	pair, err := m.IssuePair(testUser)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if _, err := m.ParseAccessToken(pair.RefreshToken); err != domain.ErrInvalidAccessToken {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := m.ParseRefreshToken(pair.AccessToken); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	m := newTestManager(t)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }
	pair, err := m.IssuePair(testUser)
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	m.now = time.Now

	if _, err := m.ParseAccessToken(pair.AccessToken); err != domain.ErrInvalidAccessToken {
		t.Fatalf("expected expired access token to fail, got %v", err)
	}
	if _, err := m.ParseRefreshToken(pair.RefreshToken); err != nil {
		t.Fatalf("refresh token should still be valid: %v", err)
	}
}

func TestParse_WrongAlgorithm(t *testing.T) {
	m := newTestManager(t)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   testUser.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := tok.SignedString(m.accessSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.ParseAccessToken(signed); err != domain.ErrInvalidAccessToken {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.ParseAccessToken("not.a.jwt"); err != domain.ErrInvalidAccessToken {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
	if _, err := m.ParseRefreshToken(""); err != domain.ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}
