package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/core/ports"
)

// ChannelHandler serves channel profiles, watch history and subscriptions.
type ChannelHandler struct {
	channels ports.ChannelService
}

func NewChannelHandler(channels ports.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// ChannelProfile returns a channel with its subscription counts.
//
// @Summary      Channel profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Channel username"
// @Success      200       {object}  apiResponse{data=domain.ChannelProfile}
// @Failure      400       {object}  api.errorResponse
// @Failure      404       {object}  api.errorResponse
// @Router       /users/channel/{username} [get]
func (h *ChannelHandler) ChannelProfile(c echo.Context) error {
	viewer, err := ctxUser(c)
	if err != nil {
		return err
	}
	profile, err := h.channels.ChannelProfile(c.Request().Context(), c.Param("username"), viewer.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "User channel fetched successfully")
}

// WatchHistory lists the videos the current user watched.
//
// @Summary      Watch history
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  apiResponse{data=[]domain.WatchedVideo}
// @Failure      401  {object}  api.errorResponse
// @Router       /users/watch-history [get]
func (h *ChannelHandler) WatchHistory(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	videos, err := h.channels.WatchHistory(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, videos, "Watch history fetched successfully")
}

// ToggleSubscription subscribes the current user to a channel or
// unsubscribes when already subscribed.
//
// @Summary      Toggle subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        channelId  path      string  true  "Channel user id"
// @Success      200        {object}  apiResponse{data=subscriptionResponse}
// @Failure      404        {object}  api.errorResponse
// @Router       /subscriptions/c/{channelId} [post]
func (h *ChannelHandler) ToggleSubscription(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	subscribed, err := h.channels.ToggleSubscription(c.Request().Context(), user.ID, c.Param("channelId"))
	if err != nil {
		return err
	}
	msg := "Unsubscribed successfully"
	if subscribed {
		msg = "Subscribed successfully"
	}
	return respond(c, http.StatusOK, subscriptionResponse{Subscribed: subscribed}, msg)
}
