// Package api implements the JSON API served under /api/v2.
package api

import (
	"crypto/rand"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/form"
	"github.com/biodexapp/biodex/internal/logging"
	"github.com/biodexapp/biodex/internal/notification"
	"github.com/biodexapp/biodex/internal/security"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Sessions *security.SessionManager
	Lookup   form.LookupClient
	Notifier *notification.Service

	apiLogger      *slog.Logger
	apiLoggerClose func() error
}

// New creates the API controller and registers all routes under /api/v2.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings,
	sessions *security.SessionManager, lookup form.LookupClient,
	notifier *notification.Service) *Controller {

	logger, loggerClose := logging.ForService("api", settings.Debug)

	c := &Controller{
		Echo:           e,
		DS:             ds,
		Settings:       settings,
		Sessions:       sessions,
		Lookup:         lookup,
		Notifier:       notifier,
		apiLogger:      logger,
		apiLoggerClose: loggerClose,
	}

	c.Group = e.Group("/api/v2")
	c.initRoutes()
	return c
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.initAuthRoutes()
	c.initSpeciesRoutes()
	c.initCommentRoutes()
	c.initProfileRoutes()
	c.initNotificationRoutes()
}

// Shutdown closes the API log file
func (c *Controller) Shutdown() {
	if c.apiLoggerClose != nil {
		_ = c.apiLoggerClose()
	}
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs an error with a correlation id and returns the JSON
// error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	c.apiLogger.Error("API error",
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorStr,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP())

	return ctx.JSON(code, errorResp)
}
