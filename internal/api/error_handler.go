package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/videotube-api/internal/api/handler"
	"github.com/videotube/videotube-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// domainStatus lists the sentinel errors with a fixed HTTP status. The
// response message is the sentinel's own text. The first match wins, so
// sentinels that wrap others (token generation) come first.
var domainStatus = []struct {
	err    error
	status int
}{
	{domain.ErrTokenGeneration, http.StatusInternalServerError},
	{domain.ErrMediaUpload, http.StatusBadGateway},
	{domain.ErrMissingFields, http.StatusBadRequest},
	{domain.ErrUsernameOrEmailRequired, http.StatusBadRequest},
	{domain.ErrAvatarRequired, http.StatusBadRequest},
	{domain.ErrCoverImageRequired, http.StatusBadRequest},
	{domain.ErrUsernameMissing, http.StatusBadRequest},
	{domain.ErrInvalidOldPassword, http.StatusBadRequest},
	{domain.ErrPasswordTooLong, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrInvalidAccessToken, http.StatusUnauthorized},
	{domain.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{domain.ErrRefreshTokenExpired, http.StatusUnauthorized},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrChannelNotFound, http.StatusNotFound},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrTooManyRequests, http.StatusTooManyRequests},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to their HTTP status, logs unexpected errors without leaking them
// to the client and renders the error envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, details := resolveError(err, log, c)
		if details == nil {
			details = []string{}
		}
		body := errorResponse{StatusCode: code, Message: msg, Success: false, Errors: details}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, []string) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, "validation failed", ve.Fields
	}

	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message), nil
	}

	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error().Err(err).
					Str("method", c.Request().Method).
					Str("path", c.Path()).
					Msg("request failed")
			}
			return m.status, m.err.Error(), nil
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error", nil
}
