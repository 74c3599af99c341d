package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// ProfileService updates account details and profile media.
type ProfileService struct {
	users   ports.UserRepository
	media   ports.MediaStorage
	cleaner MediaCleaner
	log     zerolog.Logger
}

func NewProfileService(users ports.UserRepository, media ports.MediaStorage, cleaner MediaCleaner, log zerolog.Logger) *ProfileService {
	return &ProfileService{users: users, media: media, cleaner: cleaner, log: log}
}

func (s *ProfileService) UpdateDetails(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = domain.NormalizeEmail(email)
	if fullName == "" || email == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.users.UpdateDetails(ctx, userID, fullName, email)
	if err != nil {
		return nil, fmt.Errorf("update details: %w", err)
	}
	return user, nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error) {
	if file == nil {
		return nil, domain.ErrAvatarRequired
	}
	return s.replaceMedia(ctx, userID, *file, "avatar",
		func(u *domain.User) string { return u.Avatar },
		s.users.UpdateAvatar,
	)
}

func (s *ProfileService) UpdateCoverImage(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error) {
	if file == nil {
		return nil, domain.ErrCoverImageRequired
	}
	return s.replaceMedia(ctx, userID, *file, "cover_image",
		func(u *domain.User) string { return u.CoverImage },
		s.users.UpdateCoverImage,
	)
}

// replaceMedia uploads file, persists its URL and only then hands the previous
// file to the cleaner. A failed persist discards the new upload instead, so the
// stored URL always points at an existing file.
func (s *ProfileService) replaceMedia(
	ctx context.Context,
	userID string,
	file ports.MediaFile,
	kind string,
	current func(*domain.User) string,
	persist func(ctx context.Context, id, url string) (*domain.User, error),
) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := current(user)

	uploaded, err := uploadMedia(ctx, s.media, file)
	if err != nil {
		return nil, err
	}

	updated, err := persist(ctx, userID, uploaded.URL)
	if err != nil {
		s.cleaner.Discard(uploaded.URL)
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}

	if previous != "" && previous != uploaded.URL {
		s.cleaner.Discard(previous)
	}

	s.log.Info().Str("user_id", userID).Str("kind", kind).Msg("profile media replaced")
	return updated, nil
}
