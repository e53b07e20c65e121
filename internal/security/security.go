// Package security provides cookie-session management and password hashing
// for the first-party login flow.
package security

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/errors"
)

const sessionName = "biodex-session"

// ErrInvalidCredentials is returned for any login failure. The message is
// deliberately uniform so it leaks nothing about which part was wrong.
var ErrInvalidCredentials = errors.Newf("invalid email or password").
	Component("security").
	Category(errors.CategoryAuth).
	Build()

// SessionManager wraps a gorilla cookie store with the application's
// session policy.
type SessionManager struct {
	store    *sessions.CookieStore
	duration time.Duration
}

// NewSessionManager builds a session manager from the security settings.
func NewSessionManager(settings *conf.SecuritySettings) *SessionManager {
	store := sessions.NewCookieStore([]byte(settings.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(settings.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   settings.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{
		store:    store,
		duration: settings.SessionDuration,
	}
}

// SignIn stores the authenticated profile id in the session cookie.
func (m *SessionManager) SignIn(c echo.Context, userID string) error {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or tampered cookie still yields a usable new session
		session, _ = m.store.New(c.Request(), sessionName)
	}
	session.Values["user_id"] = userID
	session.Values["issued_at"] = time.Now().Unix()
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return errors.New(err).
			Component("security").
			Category(errors.CategoryAuth).
			Context("operation", "session_save").
			Build()
	}
	return nil
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(c echo.Context) error {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return nil
	}
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(c.Request(), c.Response())
}

// UserID returns the authenticated profile id from the session, or "" when
// the request is anonymous.
func (m *SessionManager) UserID(c echo.Context) string {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return ""
	}
	userID, ok := session.Values["user_id"].(string)
	if !ok {
		return ""
	}
	return userID
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New(err).
			Component("security").
			Category(errors.CategoryAuth).
			Context("operation", "hash_password").
			Build()
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
