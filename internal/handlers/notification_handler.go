package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns an offset-paginated page of the caller's
// notifications. unread=true restricts it to unread ones.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}

	limit := services.ClampLimit(queryInt(c, "limit"), services.DefaultNotificationLimit, services.MaxNotificationLimit)
	offset := queryInt(c, "offset")
	if offset < 0 {
		offset = 0
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))

	notifications, err := h.notifications.List(c.Request().Context(), accountID, limit, offset, unreadOnly)
	if err != nil {
		return serviceError(err)
	}
	return respondWithMeta(c, http.StatusOK,
		echo.Map{"notifications": notifications},
		echo.Map{
			"limit":       limit,
			"offset":      offset,
			"count":       len(notifications),
			"hasNextPage": len(notifications) == limit,
		},
	)
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), accountID)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"count": count})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"), accountID); err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"read": true})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	accountID, err := getAccountIDFromContext(c)
	if err != nil {
		return err
	}
	n, err := h.notifications.MarkAllRead(c.Request().Context(), accountID)
	if err != nil {
		return serviceError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"updated": n})
}
