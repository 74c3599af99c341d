package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/api/metrics"
	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// UserHandler serves the profile update endpoints of the current user.
type UserHandler struct {
	profile ports.ProfileService
}

func NewUserHandler(profile ports.ProfileService) *UserHandler {
	return &UserHandler{profile: profile}
}

// UpdateDetails changes the full name and email of the current user.
//
// @Summary      Update account details
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateDetailsRequest  true  "New details"
// @Success      200   {object}  apiResponse{data=domain.User}
// @Failure      400   {object}  api.errorResponse
// @Failure      409   {object}  api.errorResponse
// @Router       /users/update-details [patch]
func (h *UserHandler) UpdateDetails(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.profile.UpdateDetails(c.Request().Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, "Account details updated successfully")
}

// UpdateAvatar replaces the current user's avatar.
//
// @Summary      Update avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200     {object}  apiResponse{data=domain.User}
// @Failure      400     {object}  api.errorResponse
// @Failure      502     {object}  api.errorResponse
// @Router       /users/update-avatar [patch]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.replaceMedia(c, "avatar", "avatar", h.profile.UpdateAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the current user's cover image.
//
// @Summary      Update cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        coverImage  formData  file  true  "Cover image"
// @Success      200         {object}  apiResponse{data=domain.User}
// @Failure      400         {object}  api.errorResponse
// @Failure      502         {object}  api.errorResponse
// @Router       /users/update-cover-image [patch]
func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	return h.replaceMedia(c, "coverImage", "cover_image", h.profile.UpdateCoverImage, "Cover image updated successfully")
}

func (h *UserHandler) replaceMedia(
	c echo.Context,
	field, kind string,
	update func(ctx context.Context, userID string, file *ports.MediaFile) (*domain.User, error),
	message string,
) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	file, closeFile, err := formFile(c, field)
	if err != nil {
		return err
	}
	defer closeFile()

	updated, err := update(c.Request().Context(), user.ID, file)
	if file != nil {
		metrics.MediaUploadsTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, updated, message)
}
