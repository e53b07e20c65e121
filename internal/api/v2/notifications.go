package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// initNotificationRoutes registers notification endpoints
func (c *Controller) initNotificationRoutes() {
	c.Group.GET("/notifications", c.ListNotifications, c.RequireAuth)
	c.Group.POST("/notifications/:id/read", c.MarkNotificationRead, c.RequireAuth)
}

// ListNotifications returns recent notifications, newest first. The limit
// query parameter caps the result, 0 or absent returns all.
func (c *Controller) ListNotifications(ctx echo.Context) error {
	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.HandleError(ctx, err, "Invalid limit", http.StatusBadRequest)
		}
		limit = parsed
	}

	notifications, err := c.Notifier.List(limit)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list notifications", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  c.Notifier.UnreadCount(),
	})
}

// MarkNotificationRead marks a single notification as read.
func (c *Controller) MarkNotificationRead(ctx echo.Context) error {
	if err := c.Notifier.MarkRead(ctx.Param("id")); err != nil {
		return c.HandleError(ctx, err, "Notification not found", http.StatusNotFound)
	}
	return ctx.NoContent(http.StatusNoContent)
}
