// Package httpcontroller assembles the Echo server: middleware, the JSON
// API, and graceful shutdown.
package httpcontroller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/biodexapp/biodex/internal/api/v2"
	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/form"
	"github.com/biodexapp/biodex/internal/logging"
	"github.com/biodexapp/biodex/internal/notification"
	"github.com/biodexapp/biodex/internal/security"
)

// Server encapsulates the Echo server and its collaborators.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	Sessions *security.SessionManager
	APIV2    *api.Controller

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New initializes the HTTP server with the given collaborators.
func New(settings *conf.Settings, dataStore datastore.Interface,
	lookup form.LookupClient, notifier *notification.Service) *Server {

	logger, loggerClose := logging.ForService("web", settings.Debug)

	s := &Server{
		Echo:           echo.New(),
		DS:             dataStore,
		Settings:       settings,
		Sessions:       security.NewSessionManager(&settings.Security),
		webLogger:      logger,
		webLoggerClose: loggerClose,
	}

	s.Echo.HideBanner = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()
	s.initializeMiddleware()

	s.APIV2 = api.New(s.Echo, s.DS, s.Settings, s.Sessions, lookup, notifier)

	s.Echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// initializeMiddleware sets up the shared middleware chain
func (s *Server) initializeMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	s.Echo.Use(middleware.Secure())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: false,
	}))
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.webLogger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"ip", c.RealIP())
			return nil
		},
	}))
}

// Start begins listening and serving HTTP requests. It blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.Settings.WebServer.Host, s.Settings.WebServer.Port)
	s.webLogger.Info("HTTP server starting", "addr", addr)

	if err := s.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully, allowing in-flight requests to
// finish.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.Echo.Shutdown(ctx)
	s.APIV2.Shutdown()
	if s.webLoggerClose != nil {
		_ = s.webLoggerClose()
	}
	return err
}
