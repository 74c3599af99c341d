package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// AuthService implements registration and the session token lifecycle.
type AuthService struct {
	users     ports.UserRepository
	tokens    ports.TokenIssuer
	blacklist ports.TokenBlacklist
	media     ports.MediaStorage
	cleaner   MediaCleaner
	log       zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	blacklist ports.TokenBlacklist,
	media ports.MediaStorage,
	cleaner MediaCleaner,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		media:     media,
		cleaner:   cleaner,
		log:       log,
	}
}

// Register validates the form, uploads the avatar (and optional cover image)
// and creates the user. Uploaded files are discarded if creation fails.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := domain.NormalizeEmail(in.Email)
	username := domain.NormalizeUsername(in.Username)
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, domain.ErrMissingFields
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	if in.Avatar == nil {
		return nil, domain.ErrAvatarRequired
	}
	avatar, err := uploadMedia(ctx, s.media, *in.Avatar)
	if err != nil {
		return nil, err
	}
	uploaded := []string{avatar.URL}

	var coverURL string
	if in.CoverImage != nil {
		cover, err := uploadMedia(ctx, s.media, *in.CoverImage)
		if err != nil {
			s.discard(uploaded...)
			return nil, err
		}
		coverURL = cover.URL
		uploaded = append(uploaded, coverURL)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		s.discard(uploaded...)
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatar.URL,
		CoverImage:   coverURL,
		WatchHistory: []string{},
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.discard(uploaded...)
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: create: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and opens a session with a fresh token pair.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	username := domain.NormalizeUsername(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" && email == "" {
		return nil, domain.ErrUsernameOrEmailRequired
	}
	if in.Password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if !checkPassword(user.PasswordHash, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	user.RefreshToken = tokens.RefreshToken

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &domain.Session{User: user, Tokens: tokens}, nil
}

// Logout drops the stored refresh token and revokes the presented access token
// for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, in ports.LogoutInput) error {
	if err := s.users.ClearRefreshToken(ctx, in.UserID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if in.AccessTokenID != "" {
		if ttl := time.Until(in.AccessExpiresAt); ttl > 0 {
			if err := s.blacklist.Revoke(ctx, in.AccessTokenID, ttl); err != nil {
				s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("failed to revoke access token")
			}
		}
	}

	s.log.Info().Str("user_id", in.UserID).Msg("user logged out")
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// must be the one currently stored for its user; it is rotated atomically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, domain.ErrUnauthorized
	}

	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, domain.ErrRefreshTokenExpired
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	if err := s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrRefreshTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}

	s.log.Debug().Str("user_id", user.ID).Msg("refresh token rotated")
	return &pair, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(oldPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return domain.ErrMissingFields
	}
	if len(newPassword) > maxPasswordBytes {
		return domain.ErrPasswordTooLong
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !checkPassword(user.PasswordHash, oldPassword) {
		return domain.ErrInvalidOldPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	return pair, nil
}

func (s *AuthService) discard(urls ...string) {
	for _, u := range urls {
		if u != "" {
			s.cleaner.Discard(u)
		}
	}
}

// bcrypt only hashes the first 72 bytes and rejects anything longer.
const maxPasswordBytes = 72

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
