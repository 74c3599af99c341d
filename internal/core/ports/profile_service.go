package ports

import (
	"context"

	"github.com/videotube/videotube-api/internal/core/domain"
)

// ProfileService updates the owning user's profile and media.
type ProfileService interface {
	UpdateDetails(ctx context.Context, userID, fullName, email string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, file *MediaFile) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, userID string, file *MediaFile) (*domain.User, error)
}

// ChannelService answers relationship queries between users.
type ChannelService interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error)
	ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error)
}
