package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*domain.Session, error)
	logoutFn   func(ctx context.Context, in ports.LogoutInput) error
	refreshFn  func(ctx context.Context, token string) (*domain.TokenPair, error)
	changeFn   func(ctx context.Context, userID, oldPassword, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.Session, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, in ports.LogoutInput) error {
	return s.logoutFn(ctx, in)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*domain.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return s.changeFn(ctx, userID, oldPassword, newPassword)
}

type stubProfileService struct {
	detailsFn func(ctx context.Context, userID, fullName, email string) (*domain.User, error)
	avatarFn  func(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error)
	coverFn   func(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error)
}

func (s *stubProfileService) UpdateDetails(ctx context.Context, userID, fullName, email string) (*domain.User, error) {
	return s.detailsFn(ctx, userID, fullName, email)
}

func (s *stubProfileService) UpdateAvatar(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error) {
	return s.avatarFn(ctx, userID, file)
}

func (s *stubProfileService) UpdateCoverImage(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error) {
	return s.coverFn(ctx, userID, file)
}

type stubChannelService struct {
	profileFn func(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
	historyFn func(ctx context.Context, userID string) ([]domain.WatchedVideo, error)
	toggleFn  func(ctx context.Context, subscriberID, channelID string) (bool, error)
}

func (s *stubChannelService) ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	return s.profileFn(ctx, username, viewerID)
}

func (s *stubChannelService) WatchHistory(ctx context.Context, userID string) ([]domain.WatchedVideo, error) {
	return s.historyFn(ctx, userID)
}

func (s *stubChannelService) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	return s.toggleFn(ctx, subscriberID, channelID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testCookies = CookieOptions{Secure: true, SameSite: http.SameSiteStrictMode}

var alice = &domain.User{
	ID:           "u1",
	Username:     "alice",
	Email:        "alice@example.com",
	FullName:     "Alice",
	Avatar:       "http://cdn.test/videotube/a.png",
	PasswordHash: "$2a$10$hash",
	RefreshToken: "stored-refresh",
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func authenticated(c echo.Context) echo.Context {
	c.Set("user", alice)
	c.Set("claims", &domain.AccessClaims{UserID: alice.ID, TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Minute)})
	return c
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write([]byte("image-bytes")); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" || in.Password != "pass123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Avatar == nil || in.Avatar.Filename != "me.png" {
				t.Fatalf("avatar not forwarded: %+v", in.Avatar)
			}
			data, _ := io.ReadAll(in.Avatar.Content)
			if string(data) != "image-bytes" {
				t.Fatalf("unexpected avatar content %q", data)
			}
			if in.CoverImage != nil {
				t.Fatalf("cover image should be nil")
			}
			return alice, nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	body, contentType := multipartBody(t, map[string]string{
		"fullName": "Alice",
		"email":    "alice@example.com",
		"username": "alice",
		"password": "pass123",
	}, map[string]string{"avatar": "me.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeEnvelope(t, rec)
	if resp["success"] != true || resp["statusCode"] != float64(http.StatusCreated) {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	user := resp["data"].(map[string]any)
	if user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "$2a$10$hash") || strings.Contains(rec.Body.String(), "stored-refresh") {
		t.Fatalf("response leaks secrets: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Avatar != nil {
				t.Fatalf("expected no avatar")
			}
			return nil, domain.ErrAvatarRequired
		},
	}
	h := NewAuthHandler(stub, testCookies)

	body, contentType := multipartBody(t, map[string]string{"username": "bob"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := h.Register(c); !errors.Is(err, domain.ErrAvatarRequired) {
		t.Fatalf("expected ErrAvatarRequired, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, testCookies)

	body, contentType := multipartBody(t, map[string]string{"email": "not-an-email"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c := e.NewContext(req, httptest.NewRecorder())

	var ve *ValidationError
	if err := h.Register(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0] != "email must be a valid email" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}

func TestAuthHandler_Login_SetsCookies(t *testing.T) {
	e := newEcho()
	pair := domain.TokenPair{
		AccessToken:      "access-1",
		AccessExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshToken:     "refresh-1",
		RefreshExpiresAt: time.Now().Add(24 * time.Hour),
	}
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*domain.Session, error) {
			if in.Email != "alice@example.com" || in.Password != "pass123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Session{User: alice, Tokens: pair}, nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"email":"alice@example.com","password":"pass123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	access := cookieByName(rec, "accessToken")
	refresh := cookieByName(rec, "refreshToken")
	if access == nil || refresh == nil {
		t.Fatalf("expected both cookies, got %v", rec.Result().Cookies())
	}
	if access.Value != "access-1" || refresh.Value != "refresh-1" {
		t.Fatalf("unexpected cookie values: %s / %s", access.Value, refresh.Value)
	}
	if !access.HttpOnly || !access.Secure || access.SameSite != http.SameSiteStrictMode || access.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", access)
	}

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["accessToken"] != "access-1" || data["refreshToken"] != "refresh-1" {
		t.Fatalf("unexpected tokens in body: %+v", data)
	}
	user := data["user"].(map[string]any)
	for _, hidden := range []string{"password", "passwordHash", "PasswordHash", "refreshToken", "RefreshToken"} {
		if _, ok := user[hidden]; ok {
			t.Fatalf("user payload exposes %s", hidden)
		}
	}
}

func TestAuthHandler_Login_FailureSetsNoCookies(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*domain.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, testCookies)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
		strings.NewReader(`{"username":"alice","password":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("expected no cookies, got %v", rec.Result().Cookies())
	}
}

func TestAuthHandler_Logout_ClearsCookies(t *testing.T) {
	e := newEcho()
	var got ports.LogoutInput
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, in ports.LogoutInput) error {
			got = in
			return nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	rec := httptest.NewRecorder()
	c := authenticated(e.NewContext(req, rec))

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.UserID != "u1" || got.AccessTokenID != "jti-1" || got.AccessExpiresAt.IsZero() {
		t.Fatalf("unexpected logout input: %+v", got)
	}
	for _, name := range []string{"accessToken", "refreshToken"} {
		ck := cookieByName(rec, name)
		if ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
			t.Fatalf("expected %s to be cleared, got %+v", name, ck)
		}
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, testCookies)
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())

	if err := h.Logout(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthHandler_RefreshToken_Sources(t *testing.T) {
	cases := []struct {
		name  string
		setup func(r *http.Request)
		body  string
		want  string
	}{
		{
			name:  "cookie",
			setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"}) },
			want:  "from-cookie",
		},
		{
			name: "body",
			body: `{"refreshToken":"from-body"}`,
			want: "from-body",
		},
		{
			name: "none",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			var got string
			stub := &stubAuthService{
				refreshFn: func(_ context.Context, token string) (*domain.TokenPair, error) {
					got = token
					if token == "" {
						return nil, domain.ErrUnauthorized
					}
					return &domain.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
				},
			}
			h := NewAuthHandler(stub, testCookies)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			}
			if tc.setup != nil {
				tc.setup(req)
			}
			rec := httptest.NewRecorder()
			err := h.RefreshToken(e.NewContext(req, rec))

			if got != tc.want {
				t.Fatalf("service got %q, want %q", got, tc.want)
			}
			if tc.want == "" {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if ck := cookieByName(rec, "refreshToken"); ck == nil || ck.Value != "r2" {
				t.Fatalf("expected rotated refresh cookie, got %+v", ck)
			}
		})
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		changeFn: func(_ context.Context, userID, oldPassword, newPassword string) error {
			if userID != "u1" || oldPassword != "old" || newPassword != "new" {
				t.Fatalf("unexpected args: %s %s %s", userID, oldPassword, newPassword)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
		strings.NewReader(`{"oldPassword":"old","newPassword":"new"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.ChangePassword(authenticated(e.NewContext(req, rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_ChangePassword_MultibyteOverLimit(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		changeFn: func(context.Context, string, string, string) error {
			t.Fatalf("service must not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub, testCookies)

	// 72 characters, 144 bytes.
	body, _ := json.Marshal(map[string]string{"oldPassword": "old", "newPassword": strings.Repeat("é", 72)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	var ve *ValidationError
	if err := h.ChangePassword(authenticated(e.NewContext(req, httptest.NewRecorder()))); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0] != "newPassword must be at most 72 bytes" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}

func TestAuthHandler_Register_MultibytePasswordOverLimit(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, testCookies)

	body, contentType := multipartBody(t, map[string]string{
		"fullName": "Alice",
		"email":    "alice@example.com",
		"username": "alice",
		"password": strings.Repeat("é", 72),
	}, map[string]string{"avatar": "me.png"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set(echo.HeaderContentType, contentType)

	var ve *ValidationError
	if err := h.Register(e.NewContext(req, httptest.NewRecorder())); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields[0] != "password must be at most 72 bytes" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{}, testCookies)
	rec := httptest.NewRecorder()
	c := authenticated(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))

	if err := h.CurrentUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["_id"] != "u1" || data["fullName"] != "Alice" {
		t.Fatalf("unexpected user: %+v", data)
	}
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestUserHandler_UpdateDetails(t *testing.T) {
	e := newEcho()
	stub := &stubProfileService{
		detailsFn: func(_ context.Context, userID, fullName, email string) (*domain.User, error) {
			if userID != "u1" || fullName != "Alice L" || email != "new@example.com" {
				t.Fatalf("unexpected args: %s %s %s", userID, fullName, email)
			}
			u := *alice
			u.FullName, u.Email = fullName, email
			return &u, nil
		},
	}
	h := NewUserHandler(stub)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-details",
		strings.NewReader(`{"fullName":"Alice L","email":"new@example.com"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.UpdateDetails(authenticated(e.NewContext(req, rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["email"] != "new@example.com" {
		t.Fatalf("unexpected user: %+v", data)
	}
}

func TestUserHandler_UpdateAvatar(t *testing.T) {
	e := newEcho()
	stub := &stubProfileService{
		avatarFn: func(_ context.Context, userID string, file *ports.MediaFile) (*domain.User, error) {
			if file == nil || file.Filename != "new.png" || file.Size != int64(len("image-bytes")) {
				t.Fatalf("unexpected file: %+v", file)
			}
			u := *alice
			u.Avatar = "http://cdn.test/videotube/new.png"
			return &u, nil
		},
	}
	h := NewUserHandler(stub)

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "new.png"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-avatar", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()

	if err := h.UpdateAvatar(authenticated(e.NewContext(req, rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["avatar"] != "http://cdn.test/videotube/new.png" {
		t.Fatalf("unexpected avatar: %v", data["avatar"])
	}
}

func TestUserHandler_UpdateCoverImage_MissingFile(t *testing.T) {
	e := newEcho()
	stub := &stubProfileService{
		coverFn: func(_ context.Context, _ string, file *ports.MediaFile) (*domain.User, error) {
			if file != nil {
				t.Fatalf("expected nil file")
			}
			return nil, domain.ErrCoverImageRequired
		},
	}
	h := NewUserHandler(stub)

	body, contentType := multipartBody(t, map[string]string{"other": "x"}, nil)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-cover-image", body)
	req.Header.Set(echo.HeaderContentType, contentType)

	err := h.UpdateCoverImage(authenticated(e.NewContext(req, httptest.NewRecorder())))
	if !errors.Is(err, domain.ErrCoverImageRequired) {
		t.Fatalf("expected ErrCoverImageRequired, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Channels
// ---------------------------------------------------------------------------

func TestChannelHandler_ChannelProfile(t *testing.T) {
	e := newEcho()
	stub := &stubChannelService{
		profileFn: func(_ context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
			if username != "bob" || viewerID != "u1" {
				t.Fatalf("unexpected args: %s %s", username, viewerID)
			}
			return &domain.ChannelProfile{ID: "u2", Username: "bob", SubscribersCount: 3, IsSubscribed: true}, nil
		},
	}
	h := NewChannelHandler(stub)

	rec := httptest.NewRecorder()
	c := authenticated(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
	c.SetPath("/api/v1/users/channel/:username")
	c.SetParamNames("username")
	c.SetParamValues("bob")

	if err := h.ChannelProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["subscribersCount"] != float64(3) || data["isSubscribed"] != true {
		t.Fatalf("unexpected profile: %+v", data)
	}
}

func TestChannelHandler_WatchHistory_EmptyArray(t *testing.T) {
	e := newEcho()
	stub := &stubChannelService{
		historyFn: func(context.Context, string) ([]domain.WatchedVideo, error) {
			return []domain.WatchedVideo{}, nil
		},
	}
	h := NewChannelHandler(stub)
	rec := httptest.NewRecorder()

	if err := h.WatchHistory(authenticated(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestChannelHandler_ToggleSubscription(t *testing.T) {
	e := newEcho()
	stub := &stubChannelService{
		toggleFn: func(_ context.Context, subscriberID, channelID string) (bool, error) {
			if subscriberID != "u1" || channelID != "u2" {
				t.Fatalf("unexpected args: %s %s", subscriberID, channelID)
			}
			return true, nil
		},
	}
	h := NewChannelHandler(stub)

	rec := httptest.NewRecorder()
	c := authenticated(e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec))
	c.SetParamNames("channelId")
	c.SetParamValues("u2")

	if err := h.ToggleSubscription(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeEnvelope(t, rec)
	if resp["message"] != "Subscribed successfully" || resp["data"].(map[string]any)["subscribed"] != true {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealthHandler_Readiness(t *testing.T) {
	e := newEcho()
	h := NewHealthHandler(map[string]Pinger{
		"mongodb": PingFunc(func(context.Context) error { return nil }),
		"redis":   PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	rec := httptest.NewRecorder()

	if err := h.Readiness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Dependencies["mongodb"].Status != "ok" || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidator_UsesWireNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&updateDetailsRequest{FullName: strings.Repeat("x", 101), Email: "nope"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"fullName must be at most 100 characters", "email must be a valid email"}
	if len(ve.Fields) != len(want) {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
	for i := range want {
		if ve.Fields[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, ve.Fields[i], want[i])
		}
	}

	if err := v.Validate(&updateDetailsRequest{FullName: "Alice", Email: ""}); err != nil {
		t.Fatalf("empty email should pass shape validation: %v", err)
	}
}

func TestChannelProfile_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(domain.ChannelProfile{SubscribersCount: 2, SubscribedToCount: 5})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"subscribersCount":2`, `"subscribedToCount":5`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected %s in %s", key, data)
		}
	}
}
