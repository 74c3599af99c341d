package ports

import (
	"context"
	"time"

	"github.com/videotube/videotube-api/internal/core/domain"
)

// RegisterInput carries the registration form. CoverImage is optional.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *MediaFile
	CoverImage *MediaFile
}

// LoginInput identifies the user by Username or Email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LogoutInput identifies the session being closed.
type LogoutInput struct {
	UserID          string
	AccessTokenID   string
	AccessExpiresAt time.Time
}

// AuthService drives the registration and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*domain.Session, error)
	Logout(ctx context.Context, in LogoutInput) error
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
