package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/api/middleware"
	"github.com/videotube/videotube-api/internal/core/domain"
)

// ctxUser returns the authenticated user injected by the Auth middleware.
// A missing user means the route was mounted without it.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
