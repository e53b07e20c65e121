package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/errors"
)

type profileUpdateRequest struct {
	DisplayName string `json:"display_name"`
	Biography   string `json:"biography"`
}

// initProfileRoutes registers profile endpoints
func (c *Controller) initProfileRoutes() {
	c.Group.GET("/profiles", c.ListProfiles, c.RequireAuth)
	c.Group.PUT("/profiles/me", c.UpdateCurrentProfile, c.RequireAuth)
	c.Group.GET("/profiles/:id", c.GetProfile, c.RequireAuth)
}

// ListProfiles returns all registered profiles.
func (c *Controller) ListProfiles(ctx echo.Context) error {
	profiles, err := c.DS.ListProfiles(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list profiles", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profiles)
}

// UpdateCurrentProfile edits the authenticated user's display name and
// biography. Email and password are not editable here.
func (c *Controller) UpdateCurrentProfile(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)

	profile, err := c.DS.GetProfile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Profile not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}

	var req profileUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return c.HandleError(ctx, nil, "Display name is required.", http.StatusBadRequest)
	}
	profile.DisplayName = displayName

	biography := strings.TrimSpace(req.Biography)
	if biography == "" {
		profile.Biography = nil
	} else {
		profile.Biography = &biography
	}

	if err := c.DS.UpdateProfile(ctx.Request().Context(), profile); err != nil {
		return c.HandleError(ctx, err, "Failed to update profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profile)
}

// GetProfile returns a single profile by id.
func (c *Controller) GetProfile(ctx echo.Context) error {
	profile, err := c.DS.GetProfile(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Profile not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profile)
}
