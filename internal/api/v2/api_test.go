package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/biodexapp/biodex/internal/conf"
	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/notification"
	"github.com/biodexapp/biodex/internal/security"
	"github.com/biodexapp/biodex/internal/wikipedia"
)

// fakeLookup lets tests script the encyclopedia lookup outcome.
type fakeLookup struct {
	result *wikipedia.LookupResult
	err    error
}

func (f *fakeLookup) Lookup(context.Context, string) (*wikipedia.LookupResult, error) {
	return f.result, f.err
}

type testEnv struct {
	controller *Controller
	echo       *echo.Echo
	ds         datastore.Interface
	lookup     *fakeLookup
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	var dsSettings datastore.Settings
	dsSettings.SQLite.Enabled = true
	dsSettings.SQLite.Path = filepath.Join(t.TempDir(), "biodex-test.db")
	ds, err := datastore.New(dsSettings, nil)
	require.NoError(t, err)
	require.NoError(t, ds.Open())
	t.Cleanup(func() { _ = ds.Close() })

	settings := &conf.Settings{}
	settings.Security.SessionSecret = "test-secret"
	settings.Security.SessionDuration = time.Hour

	notifier := notification.NewService(notification.DefaultServiceConfig())
	t.Cleanup(notifier.Stop)

	lookup := &fakeLookup{}
	e := echo.New()
	controller := New(e, ds, settings,
		security.NewSessionManager(&settings.Security), lookup, notifier)
	t.Cleanup(controller.Shutdown)

	return &testEnv{controller: controller, echo: e, ds: ds, lookup: lookup}
}

// seedProfile registers a user and returns the session cookies for them.
func (env *testEnv) seedProfile(t *testing.T, id, email string) []*http.Cookie {
	t.Helper()

	hash, err := security.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, env.ds.CreateProfile(context.Background(), &datastore.Profile{
		ID:           id,
		Email:        email,
		DisplayName:  "User " + id,
		PasswordHash: hash,
	}))

	rec := env.request(t, http.MethodPost, "/api/v2/auth/login",
		`{"email":"`+email+`","password":"password123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func (env *testEnv) seedSpecies(t *testing.T, s *datastore.Species) *datastore.Species {
	t.Helper()
	require.NoError(t, env.ds.CreateSpecies(context.Background(), s))
	return s
}

func (env *testEnv) request(t *testing.T, method, target, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func strPtr(s string) *string { return &s }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
