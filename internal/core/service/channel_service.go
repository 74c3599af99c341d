package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// ChannelService serves the relationship queries between users.
type ChannelService struct {
	users         ports.UserRepository
	subscriptions ports.SubscriptionRepository
	log           zerolog.Logger
}

func NewChannelService(users ports.UserRepository, subscriptions ports.SubscriptionRepository, log zerolog.Logger) *ChannelService {
	return &ChannelService{users: users, subscriptions: subscriptions, log: log}
}

// ChannelProfile returns the channel of username with subscription counts and
// whether viewerID is subscribed to it.
func (s *ChannelService) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, domain.ErrUsernameMissing
	}
	return s.users.ChannelProfile(ctx, username, viewerID)
}

func (s *ChannelService) WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error) {
	videos, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []domain.WatchedVideo{}
	}
	return videos, nil
}

// ToggleSubscription subscribes subscriberID to channelID, or unsubscribes when
// already subscribed. It reports the resulting state.
func (s *ChannelService) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return false, domain.ErrMissingFields
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, domain.ErrChannelNotFound
		}
		return false, fmt.Errorf("toggle subscription: %w", err)
	}

	subscribed, err := s.subscriptions.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("toggle subscription: %w", err)
	}

	s.log.Info().
		Str("subscriber", subscriberID).
		Str("channel", channelID).
		Bool("subscribed", subscribed).
		Msg("subscription toggled")
	return subscribed, nil
}
