package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/api/middleware"
	"github.com/videotube/videotube-api/internal/core/domain"
)

const refreshTokenCookie = "refreshToken"

// CookieOptions controls the attributes of the session cookies.
type CookieOptions struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

func (o CookieOptions) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

func (o CookieOptions) setSession(c echo.Context, pair domain.TokenPair) {
	c.SetCookie(o.cookie(middleware.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt))
	c.SetCookie(o.cookie(refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt))
}

func (o CookieOptions) clearSession(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		ck := o.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		c.SetCookie(ck)
	}
}
