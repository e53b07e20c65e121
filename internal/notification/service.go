package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/biodexapp/biodex/internal/errors"
	"github.com/biodexapp/biodex/internal/logging"
)

// Service manages notifications and provides rate limiting
type Service struct {
	store         Store
	rateLimiter   *RateLimiter
	cleanupTicker *time.Ticker
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	logger        *slog.Logger
	loggerClose   func() error
	config        *ServiceConfig
}

// ServiceConfig holds the complete configuration for the notification service.
type ServiceConfig struct {
	// Debug enables debug logging for the service
	Debug bool
	// MaxNotifications is the maximum number of notifications to keep in memory
	MaxNotifications int
	// CleanupInterval is how often to clean up expired notifications
	CleanupInterval time.Duration
	// RateLimitWindow is the time window for rate limiting
	RateLimitWindow time.Duration
	// RateLimitMaxEvents is the maximum number of events per window
	RateLimitMaxEvents int
}

// DefaultServiceConfig returns a default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxNotifications:   1000,
		CleanupInterval:    5 * time.Minute,
		RateLimitWindow:    1 * time.Minute,
		RateLimitMaxEvents: 100,
	}
}

// NewService creates a new notification service
func NewService(config *ServiceConfig) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	logger, loggerClose := logging.ForService("notification", config.Debug)

	service := &Service{
		store:         NewInMemoryStore(config.MaxNotifications),
		rateLimiter:   NewRateLimiter(config.RateLimitWindow, config.RateLimitMaxEvents),
		cleanupTicker: time.NewTicker(config.CleanupInterval),
		ctx:           ctx,
		cancel:        cancel,
		logger:        logger,
		loggerClose:   loggerClose,
		config:        config,
	}

	service.logger.Info("notification service initialized",
		"max_notifications", config.MaxNotifications,
		"cleanup_interval", config.CleanupInterval,
		"rate_limit_window", config.RateLimitWindow,
		"rate_limit_max_events", config.RateLimitMaxEvents,
		"debug", config.Debug)

	// Start background cleanup
	service.wg.Add(1)
	go service.cleanupLoop()

	return service
}

// Create adds a new notification to the system
func (s *Service) Create(notifType Type, priority Priority, title, message string) (*Notification, error) {
	return s.CreateWithComponent(notifType, priority, title, message, "")
}

// CreateWithComponent adds a new notification with a source component
func (s *Service) CreateWithComponent(notifType Type, priority Priority, title, message, component string) (*Notification, error) {
	if !s.rateLimiter.Allow() {
		s.logger.Warn("notification rate limit exceeded, dropping notification",
			"type", notifType,
			"title", title)
		return nil, errors.Newf("notification rate limit exceeded").
			Component("notification").
			Category(errors.CategoryState).
			Build()
	}

	notification := NewNotification(notifType, priority, title, message)
	if component != "" {
		notification.WithComponent(component)
	}

	if err := s.store.Save(notification); err != nil {
		return nil, err
	}

	s.logger.Debug("notification created",
		"id", notification.ID,
		"type", notifType,
		"priority", priority,
		"title", title,
		"component", component)

	return notification, nil
}

// List returns notifications, newest first, up to limit (0 for all)
func (s *Service) List(limit int) ([]*Notification, error) {
	return s.store.List(limit)
}

// Get returns a single notification by id
func (s *Service) Get(id string) (*Notification, error) {
	return s.store.Get(id)
}

// MarkRead marks a notification as read. The stored notification is copied
// before the status flip so Update sees the unread-to-read transition and
// adjusts the unread count.
func (s *Service) MarkRead(id string) error {
	notification, err := s.store.Get(id)
	if err != nil {
		return err
	}
	updated := *notification
	updated.Status = StatusRead
	return s.store.Update(&updated)
}

// UnreadCount returns the number of unread notifications
func (s *Service) UnreadCount() int {
	return s.store.UnreadCount()
}

// Stop shuts down the cleanup worker and closes the service logger
func (s *Service) Stop() {
	s.cancel()
	s.cleanupTicker.Stop()
	s.wg.Wait()
	if s.loggerClose != nil {
		_ = s.loggerClose()
	}
}

// cleanupLoop periodically removes expired notifications
func (s *Service) cleanupLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.cleanupTicker.C:
			if removed := s.store.DeleteExpired(); removed > 0 {
				s.logger.Debug("removed expired notifications", "count", removed)
			}
		}
	}
}
