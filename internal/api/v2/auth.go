package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/errors"
	"github.com/biodexapp/biodex/internal/security"
)

// contextKeyUserID is the echo context key the auth middleware stores the
// authenticated profile id under.
const contextKeyUserID = "user_id"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// initAuthRoutes registers authentication endpoints
func (c *Controller) initAuthRoutes() {
	auth := c.Group.Group("/auth")
	auth.POST("/login", c.Login)
	auth.POST("/logout", c.Logout)
	auth.GET("/me", c.CurrentUser, c.RequireAuth)
}

// RequireAuth rejects requests without a valid session.
func (c *Controller) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID := c.Sessions.UserID(ctx)
		if userID == "" {
			return c.HandleError(ctx, nil, "Authentication required", http.StatusUnauthorized)
		}
		ctx.Set(contextKeyUserID, userID)
		return next(ctx)
	}
}

// Login authenticates a profile by email and password and starts a session.
// The failure response is identical whether the email or the password was
// wrong.
func (c *Controller) Login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	profile, err := c.DS.GetProfileByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, security.ErrInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
		}
		return c.HandleError(ctx, err, "Failed to look up profile", http.StatusInternalServerError)
	}

	if !security.CheckPassword(profile.PasswordHash, req.Password) {
		return c.HandleError(ctx, security.ErrInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	}

	if err := c.Sessions.SignIn(ctx, profile.ID); err != nil {
		return c.HandleError(ctx, err, "Failed to start session", http.StatusInternalServerError)
	}

	c.apiLogger.Info("user logged in", "profile_id", profile.ID)
	return ctx.JSON(http.StatusOK, profile)
}

// Logout ends the current session.
func (c *Controller) Logout(ctx echo.Context) error {
	if err := c.Sessions.SignOut(ctx); err != nil {
		return c.HandleError(ctx, err, "Failed to end session", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CurrentUser returns the authenticated profile.
func (c *Controller) CurrentUser(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)
	profile, err := c.DS.GetProfile(ctx.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Profile not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, profile)
}
