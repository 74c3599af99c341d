package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// User repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int
	createErr error
	setErr    error
	updateErr error

	channel *domain.ChannelProfile
	history []domain.WatchedVideo
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	if r.setErr != nil {
		return r.setErr
	}
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *stubUserRepo) RotateRefreshToken(_ context.Context, id, current, next string) error {
	u, ok := r.users[id]
	if !ok || u.RefreshToken != current {
		return domain.ErrRefreshTokenExpired
	}
	u.RefreshToken = next
	return nil
}

func (r *stubUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = ""
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) update(id string, apply func(*domain.User)) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	apply(u)
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdateDetails(_ context.Context, id, fullName, email string) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.FullName, u.Email = fullName, email })
}

func (r *stubUserRepo) UpdateAvatar(_ context.Context, id, url string) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.Avatar = url })
}

func (r *stubUserRepo) UpdateCoverImage(_ context.Context, id, url string) (*domain.User, error) {
	return r.update(id, func(u *domain.User) { u.CoverImage = url })
}

func (r *stubUserRepo) ChannelProfile(_ context.Context, username, _ string) (*domain.ChannelProfile, error) {
	if r.channel == nil || r.channel.Username != username {
		return nil, domain.ErrChannelNotFound
	}
	return r.channel, nil
}

func (r *stubUserRepo) WatchHistory(_ context.Context, id string) ([]domain.WatchedVideo, error) {
	if _, ok := r.users[id]; !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.history, nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubTokens struct {
	issued   int
	issueErr error
}

func (s *stubTokens) IssuePair(user *domain.User) (domain.TokenPair, error) {
	if s.issueErr != nil {
		return domain.TokenPair{}, s.issueErr
	}
	s.issued++
	now := time.Now()
	return domain.TokenPair{
		AccessToken:      fmt.Sprintf("access|%s|%d", user.ID, s.issued),
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshToken:     fmt.Sprintf("refresh|%s|%d", user.ID, s.issued),
		RefreshExpiresAt: now.Add(24 * time.Hour),
	}, nil
}

func (s *stubTokens) ParseAccessToken(token string) (*domain.AccessClaims, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "access" {
		return nil, domain.ErrInvalidAccessToken
	}
	return &domain.AccessClaims{UserID: parts[1], TokenID: parts[2]}, nil
}

func (s *stubTokens) ParseRefreshToken(token string) (string, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "refresh" {
		return "", domain.ErrInvalidRefreshToken
	}
	return parts[1], nil
}

type stubBlacklist struct {
	revoked   map[string]time.Duration
	revokeErr error
}

func newStubBlacklist() *stubBlacklist {
	return &stubBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *stubBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if b.revokeErr != nil {
		return b.revokeErr
	}
	b.revoked[tokenID] = ttl
	return nil
}

func (b *stubBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := b.revoked[tokenID]
	return ok, nil
}

type stubStorage struct {
	uploads   []string
	uploadErr error
	failOn    int // 1-based upload index that fails; 0 = never
}

func (s *stubStorage) Upload(_ context.Context, file ports.MediaFile) (*ports.UploadedMedia, error) {
	if s.uploadErr != nil || (s.failOn > 0 && len(s.uploads)+1 == s.failOn) {
		return nil, errors.New("storage unavailable")
	}
	if file.Content != nil {
		if _, err := io.ReadAll(file.Content); err != nil {
			return nil, err
		}
	}
	id := fmt.Sprintf("media%d", len(s.uploads)+1)
	url := "http://cdn.test/videotube/" + id + ".png"
	s.uploads = append(s.uploads, url)
	return &ports.UploadedMedia{URL: url, PublicID: id}, nil
}

func (s *stubStorage) Delete(_ context.Context, publicID string) (bool, error) {
	return publicID != "", nil
}

type stubCleaner struct {
	discarded []string
}

func (c *stubCleaner) Discard(url string) {
	c.discarded = append(c.discarded, url)
}

type stubSubscriptions struct {
	edges map[string]bool
	err   error
}

func (s *stubSubscriptions) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.edges == nil {
		s.edges = make(map[string]bool)
	}
	key := subscriberID + "->" + channelID
	s.edges[key] = !s.edges[key]
	return s.edges[key], nil
}

func pngFile(name string) *ports.MediaFile {
	return &ports.MediaFile{Filename: name, ContentType: "image/png", Size: 3, Content: strings.NewReader("png")}
}
