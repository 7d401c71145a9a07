package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"drivedesk/internal/middleware"
	"drivedesk/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications returns a page of the branch feed with its counters.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	limit, offset := pagination(c)

	list, err := h.notifications.GetNotifications(c.Request().Context(), services.ListParams{
		BranchID:   middleware.BranchID(c),
		Limit:      limit,
		Offset:     offset,
		UnreadOnly: c.QueryParam("unread") == "true",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), middleware.BranchID(c), id); err != nil {
		return orNotFound(err, "Notification")
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead flags the whole branch feed as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.notifications.MarkAllRead(c.Request().Context(), middleware.BranchID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
