// Package notification provides a system for managing and broadcasting
// notifications throughout the application. It handles success toasts,
// warnings, and error alerts raised by the species catalog.
package notification

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biodexapp/biodex/internal/errors"
)

// Type represents the category of a notification
type Type string

const (
	// TypeError indicates a system error notification
	TypeError Type = "error"
	// TypeWarning indicates a warning notification
	TypeWarning Type = "warning"
	// TypeInfo indicates an informational notification
	TypeInfo Type = "info"
	// TypeSystem indicates a system status notification
	TypeSystem Type = "system"
)

// Sentinel errors for notification operations
var (
	ErrNotificationNotFound = errors.Newf("notification not found").Component("notification").Category(errors.CategoryNotFound).Build()
)

// Priority represents the urgency level of a notification
type Priority string

const (
	// PriorityCritical indicates urgent attention required
	PriorityCritical Priority = "critical"
	// PriorityHigh indicates important but not urgent
	PriorityHigh Priority = "high"
	// PriorityMedium indicates normal priority
	PriorityMedium Priority = "medium"
	// PriorityLow indicates low priority/informational
	PriorityLow Priority = "low"
)

// Status represents the read state of a notification
type Status string

const (
	// StatusUnread indicates the notification hasn't been seen
	StatusUnread Status = "unread"
	// StatusRead indicates the notification has been seen
	StatusRead Status = "read"
)

// Notification represents a single notification event
type Notification struct {
	// ID is the unique identifier for the notification
	ID string `json:"id"`
	// Type categorizes the notification
	Type Type `json:"type"`
	// Priority indicates the urgency level
	Priority Priority `json:"priority"`
	// Status tracks whether the notification has been read
	Status Status `json:"status"`
	// Title is a short summary of the notification
	Title string `json:"title"`
	// Message provides detailed information
	Message string `json:"message"`
	// Component identifies the source component (e.g., "form", "wikipedia")
	Component string `json:"component,omitempty"`
	// Timestamp indicates when the notification was created
	Timestamp time.Time `json:"timestamp"`
	// Metadata contains additional context-specific data
	Metadata map[string]any `json:"metadata,omitempty"`
	// ExpiresAt indicates when the notification should be auto-removed (optional)
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewNotification creates a new notification with a unique ID and timestamp
func NewNotification(notifType Type, priority Priority, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Type:      notifType,
		Priority:  priority,
		Status:    StatusUnread,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// WithComponent sets the component field and returns the notification for chaining
func (n *Notification) WithComponent(component string) *Notification {
	n.Component = component
	return n
}

// WithMetadata adds a metadata entry and returns the notification for chaining
func (n *Notification) WithMetadata(key string, value any) *Notification {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = value
	return n
}

// WithExpiry sets the expiry time and returns the notification for chaining
func (n *Notification) WithExpiry(expiresAt time.Time) *Notification {
	n.ExpiresAt = &expiresAt
	return n
}

// IsExpired reports whether the notification has passed its expiry time
func (n *Notification) IsExpired() bool {
	return n.ExpiresAt != nil && time.Now().After(*n.ExpiresAt)
}

// Store is the storage contract for notifications
type Store interface {
	Save(notification *Notification) error
	Get(id string) (*Notification, error)
	List(limit int) ([]*Notification, error)
	Update(notification *Notification) error
	Delete(id string) error
	DeleteExpired() int
	UnreadCount() int
}

// InMemoryStore keeps notifications in memory with a bounded size
type InMemoryStore struct {
	mu            sync.RWMutex
	notifications map[string]*Notification
	maxSize       int
	unreadCount   int
}

// NewInMemoryStore creates a bounded in-memory store
func NewInMemoryStore(maxSize int) *InMemoryStore {
	if maxSize <= 0 {
		maxSize = 1000 // Default to 1000 notifications
	}

	return &InMemoryStore{
		notifications: make(map[string]*Notification),
		maxSize:       maxSize,
	}
}

// Save stores a notification in memory
func (s *InMemoryStore) Save(notification *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Enforce max size by removing oldest notifications
	if len(s.notifications) >= s.maxSize {
		s.removeOldest()
	}

	s.notifications[notification.ID] = notification

	if notification.Status == StatusUnread {
		s.unreadCount++
	}

	return nil
}

// Get returns a notification by id
func (s *InMemoryStore) Get(id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notification, ok := s.notifications[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// List returns notifications sorted newest first, up to limit (0 for all)
func (s *InMemoryStore) List(limit int) ([]*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		list = append(list, n)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Update replaces a stored notification
func (s *InMemoryStore) Update(notification *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.notifications[notification.ID]
	if !ok {
		return ErrNotificationNotFound
	}

	if existing.Status == StatusUnread && notification.Status != StatusUnread {
		s.unreadCount--
	} else if existing.Status != StatusUnread && notification.Status == StatusUnread {
		s.unreadCount++
	}

	s.notifications[notification.ID] = notification
	return nil
}

// Delete removes a notification by id
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification, ok := s.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}

	if notification.Status == StatusUnread {
		s.unreadCount--
	}
	delete(s.notifications, id)
	return nil
}

// DeleteExpired removes all expired notifications and returns how many were removed
func (s *InMemoryStore) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, n := range s.notifications {
		if n.IsExpired() {
			if n.Status == StatusUnread {
				s.unreadCount--
			}
			delete(s.notifications, id)
			removed++
		}
	}
	return removed
}

// UnreadCount returns the number of unread notifications
func (s *InMemoryStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadCount
}

// removeOldest evicts the oldest notification, caller must hold the lock
func (s *InMemoryStore) removeOldest() {
	var oldestID string
	var oldestTime time.Time

	for id, n := range s.notifications {
		if oldestID == "" || n.Timestamp.Before(oldestTime) {
			oldestID = id
			oldestTime = n.Timestamp
		}
	}

	if oldestID != "" {
		if s.notifications[oldestID].Status == StatusUnread {
			s.unreadCount--
		}
		delete(s.notifications, oldestID)
	}
}
