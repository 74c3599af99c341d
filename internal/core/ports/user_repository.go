package ports

import (
	"context"

	"github.com/videotube/videotube-api/internal/core/domain"
)

// UserRepository defines persistence for user documents and the aggregations
// built on top of them.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByUsernameOrEmail matches either field; empty arguments are ignored.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)

	SetRefreshToken(ctx context.Context, id, token string) error
	// RotateRefreshToken replaces current with next only while current is still
	// the stored token. It returns domain.ErrRefreshTokenExpired otherwise.
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	ClearRefreshToken(ctx context.Context, id string) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id, fullName, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*domain.User, error)

	// ChannelProfile runs the subscriber/subscription aggregation for username
	// as seen by viewerID.
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	WatchHistory(ctx context.Context, id string) ([]domain.WatchedVideo, error)
}

// SubscriptionRepository persists subscriber -> channel edges.
type SubscriptionRepository interface {
	// Toggle removes the edge when present and creates it otherwise. It returns
	// whether the subscriber is subscribed afterwards.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}
