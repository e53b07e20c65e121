package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodexapp/biodex/internal/conf"
)

func newTestManager() *SessionManager {
	return NewSessionManager(&conf.SecuritySettings{
		SessionSecret:   "test-secret",
		SessionDuration: time.Hour,
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery staple"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("not a hash", "anything"))
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()
	manager := newTestManager()
	e := echo.New()

	// Sign in and capture the session cookie
	req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, manager.SignIn(c, "profile-42"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Present the cookie on a later request
	req = httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "profile-42", manager.UserID(c))
}

func TestSessionAnonymous(t *testing.T) {
	t.Parallel()
	manager := newTestManager()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Empty(t, manager.UserID(c))
}

func TestSignOutClearsSession(t *testing.T) {
	t.Parallel()
	manager := newTestManager()
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/login", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, manager.SignIn(c, "profile-42"))
	cookies := rec.Result().Cookies()

	req = httptest.NewRequest(http.MethodPost, "/logout", http.NoBody)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	require.NoError(t, manager.SignOut(c))

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionName {
			assert.LessOrEqual(t, cookie.MaxAge, 0)
		}
	}
}
