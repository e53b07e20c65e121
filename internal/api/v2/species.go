package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/errors"
	"github.com/biodexapp/biodex/internal/form"
	"github.com/biodexapp/biodex/internal/species"
	"github.com/biodexapp/biodex/internal/wikipedia"
)

// previewLength is how many description characters a catalog card shows
// before truncation.
const previewLength = 150

// speciesResponse augments a record with the truncated preview used by
// catalog cards.
type speciesResponse struct {
	datastore.Species
	Preview string `json:"preview"`
}

// initSpeciesRoutes registers species CRUD and lookup endpoints
func (c *Controller) initSpeciesRoutes() {
	c.Group.GET("/species", c.ListSpecies, c.RequireAuth)
	c.Group.GET("/species/:id", c.GetSpecies, c.RequireAuth)
	c.Group.POST("/species", c.CreateSpecies, c.RequireAuth)
	c.Group.PUT("/species/:id", c.UpdateSpecies, c.RequireAuth)
	c.Group.DELETE("/species/:id", c.DeleteSpecies, c.RequireAuth)
	c.Group.GET("/species/lookup", c.LookupSpecies, c.RequireAuth)
}

// ListSpecies returns all records ordered by scientific name.
func (c *Controller) ListSpecies(ctx echo.Context) error {
	records, err := c.DS.ListSpecies(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list species", http.StatusInternalServerError)
	}

	response := make([]speciesResponse, 0, len(records))
	for i := range records {
		response = append(response, speciesResponse{
			Species: records[i],
			Preview: previewOf(records[i].Description),
		})
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetSpecies returns a single record by id.
func (c *Controller) GetSpecies(ctx echo.Context) error {
	id, err := parseID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	record, err := c.DS.GetSpecies(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load species", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, record)
}

// CreateSpecies validates the submitted record through a form dialog and
// persists it owned by the authenticated user.
func (c *Controller) CreateSpecies(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)

	var raw species.RawRecord
	if err := ctx.Bind(&raw); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	dialog := form.NewCreateDialog(c.DS, c.Notifier, c.Lookup, userID)
	if err := dialog.Open(); err != nil {
		return c.HandleError(ctx, err, "Failed to open form", http.StatusInternalServerError)
	}
	if err := dialog.SetFields(raw); err != nil {
		return c.HandleError(ctx, err, "Failed to apply fields", http.StatusInternalServerError)
	}

	model, err := dialog.Submit(ctx.Request().Context())
	if err != nil {
		var violations species.FieldErrors
		if errors.As(err, &violations) {
			return ctx.JSON(http.StatusBadRequest, map[string]any{"errors": violations})
		}
		return c.HandleError(ctx, err, "Failed to create species", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, model)
}

// UpdateSpecies replaces all six editable fields of a record the
// authenticated user owns.
func (c *Controller) UpdateSpecies(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)

	id, err := parseID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	existing, err := c.DS.GetSpecies(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load species", http.StatusInternalServerError)
	}
	if existing.Author != userID {
		return c.HandleError(ctx, nil, "You can only edit your own species", http.StatusForbidden)
	}

	var raw species.RawRecord
	if err := ctx.Bind(&raw); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	dialog := form.NewUpdateDialog(c.DS, c.Notifier, c.Lookup, existing)
	if err := dialog.Open(); err != nil {
		return c.HandleError(ctx, err, "Failed to open form", http.StatusInternalServerError)
	}
	if err := dialog.SetFields(raw); err != nil {
		return c.HandleError(ctx, err, "Failed to apply fields", http.StatusInternalServerError)
	}

	model, err := dialog.Submit(ctx.Request().Context())
	if err != nil {
		var violations species.FieldErrors
		if errors.As(err, &violations) {
			return ctx.JSON(http.StatusBadRequest, map[string]any{"errors": violations})
		}
		return c.HandleError(ctx, err, "Failed to update species", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, model)
}

// DeleteSpecies removes a record the authenticated user owns, along with
// its comments.
func (c *Controller) DeleteSpecies(ctx echo.Context) error {
	userID, _ := ctx.Get(contextKeyUserID).(string)

	id, err := parseID(ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid species id", http.StatusBadRequest)
	}

	existing, err := c.DS.GetSpecies(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, datastore.ErrNotFound) {
			return c.HandleError(ctx, err, "Species not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to load species", http.StatusInternalServerError)
	}
	if existing.Author != userID {
		return c.HandleError(ctx, nil, "You can only delete your own species", http.StatusForbidden)
	}

	if err := c.DS.DeleteSpecies(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete species", http.StatusInternalServerError)
	}

	c.Notifier.NotifySuccess("Species deleted!",
		fmt.Sprintf("Successfully deleted %s.", existing.ScientificName))
	c.apiLogger.Info("species deleted", "species_id", id, "profile_id", userID)
	return ctx.NoContent(http.StatusNoContent)
}

// LookupSpecies runs the encyclopedia lookup for the query parameter and
// returns the article data for autofilling the form.
func (c *Controller) LookupSpecies(ctx echo.Context) error {
	query := ctx.QueryParam("query")

	result, err := c.Lookup.Lookup(ctx.Request().Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, wikipedia.ErrEmptyQuery):
			return c.HandleError(ctx, err, "Search query is required", http.StatusBadRequest)
		case errors.Is(err, wikipedia.ErrNoMatch), errors.Is(err, wikipedia.ErrNoPageData):
			return c.HandleError(ctx, err, "No matching article found.", http.StatusNotFound)
		default:
			return c.HandleError(ctx, err, "Lookup failed", http.StatusBadGateway)
		}
	}
	return ctx.JSON(http.StatusOK, result)
}

// previewOf truncates a description for catalog cards
func previewOf(description *string) string {
	if description == nil {
		return ""
	}
	text := strings.TrimSpace(*description)
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}

// parseID parses a positive numeric path parameter
func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errors.Newf("invalid id %q", value).
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	return uint(id), nil
}
