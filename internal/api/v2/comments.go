package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/errors"
)

type commentRequest struct {
	Comment string `json:"comment"`
}

// initCommentRoutes registers comment endpoints
func (c *Controller) initCommentRoutes() {
	c.Group.GET("/species/:id/comments", c.ListComments, c.RequireAuth)
	c.Group.POST("/species/:id/comments", c.CreateComment, c.RequireAuth)
	c.Group.DELETE("/comments/:id", c.DeleteComment, c.RequireAuth)
}

// ListComments returns a record's comments, newest first.
func (c *Controller) ListComments(ctx echo.Context) error {
	speciesID, err := parseID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	comments, err := c.DS.ListComments(ctx.Request().Context(), speciesID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list comments", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment to a record on behalf of the authenticated
// user.
func (c *Controller) CreateComment(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)

	speciesID, err := parseID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	var req commentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	text := strings.TrimSpace(req.Comment)
	if text == "" {
		return c.HandleError(ctx, nil, "Comment cannot be empty.", http.StatusBadRequest)
	}

	// The record must exist before a comment can attach to it
	if _, err := c.DS.GetSpecies(ctx.Request().Context(), speciesID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load species", http.StatusInternalServerError)
	}

	comment := &datastore.Comment{
		SpeciesID: speciesID,
		UserID:    userID,
		Comment:   text,
	}
	if err := c.DS.CreateComment(ctx.Request().Context(), comment); err != nil {
		return c.HandleError(ctx, err, "Failed to create comment", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment the authenticated user wrote. Other
// users' comments are indistinguishable from missing ones.
func (c *Controller) DeleteComment(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)

	id, err := parseID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid comment id", http.StatusBadRequest)
	}

	if err := c.DS.DeleteComment(ctx.Request().Context(), id, userID); err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Comment not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to delete comment", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}
