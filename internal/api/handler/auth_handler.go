package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/api/metrics"
	"github.com/videotube/videotube-api/internal/api/middleware"
	"github.com/videotube/videotube-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieOptions
}

func NewAuthHandler(authService ports.AuthService, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName    formData  string  true   "Full name"
// @Param        email       formData  string  true   "Email"
// @Param        username    formData  string  true   "Username"
// @Param        password    formData  string  true   "Password"
// @Param        avatar      formData  file    true   "Avatar image"
// @Param        coverImage  formData  file    false  "Cover image"
// @Success      201  {object}  apiResponse{data=domain.User}
// @Failure      400  {object}  api.errorResponse
// @Failure      409  {object}  api.errorResponse
// @Failure      502  {object}  api.errorResponse
// @Router       /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return err
	}

	avatar, closeAvatar, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	defer closeAvatar()
	cover, closeCover, err := formFile(c, "coverImage")
	if err != nil {
		return err
	}
	defer closeCover()

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		FullName:   form.FullName,
		Email:      form.Email,
		Username:   form.Username,
		Password:   form.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	metrics.AuthEventsTotal.WithLabelValues("register", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login authenticates a user by username or email and opens a session.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  apiResponse{data=loginResponse}
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Failure      404   {object}  api.errorResponse
// @Failure      429   {object}  api.errorResponse
// @Router       /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	metrics.AuthEventsTotal.WithLabelValues("login", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	h.cookies.setSession(c, session.Tokens)
	return respond(c, http.StatusOK, loginResponse{
		User:         session.User,
		AccessToken:  session.Tokens.AccessToken,
		RefreshToken: session.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout ends the current session.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  api.errorResponse
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	in := ports.LogoutInput{UserID: user.ID}
	if claims, ok := middleware.CurrentClaims(c); ok {
		in.AccessTokenID = claims.TokenID
		in.AccessExpiresAt = claims.ExpiresAt
	}

	err = h.authService.Logout(c.Request().Context(), in)
	metrics.AuthEventsTotal.WithLabelValues("logout", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, struct{}{}, "User logged out")
}

// RefreshToken exchanges a refresh token for a new token pair.
//
// @Summary      Refresh access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  apiResponse{data=tokensResponse}
// @Failure      401   {object}  api.errorResponse
// @Failure      429   {object}  api.errorResponse
// @Router       /users/refresh-token [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	token := ""
	if ck, err := c.Cookie(refreshTokenCookie); err == nil {
		token = ck.Value
	}
	if strings.TrimSpace(token) == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	metrics.AuthEventsTotal.WithLabelValues("refresh", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	h.cookies.setSession(c, *pair)
	return respond(c, http.StatusOK, tokensResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
}

// ChangePassword replaces the current user's password.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  api.errorResponse
// @Failure      401   {object}  api.errorResponse
// @Router       /users/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.authService.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword)
	metrics.AuthEventsTotal.WithLabelValues("change_password", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, struct{}{}, "Password changed successfully")
}

// CurrentUser returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse{data=domain.User}
// @Failure      401  {object}  api.errorResponse
// @Router       /users/current-user [get]
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched successfully")
}
