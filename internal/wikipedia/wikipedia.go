// Package wikipedia implements the best-effort article lookup used to
// autofill the species form. It runs a two-step query chain against the
// MediaWiki action API: a free-text search for the best matching title,
// then an extract and thumbnail fetch for that title.
package wikipedia

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/k3a/html2text"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/biodexapp/biodex/internal/errors"
	"github.com/biodexapp/biodex/internal/logging"
)

const (
	// DefaultEndpoint is the English Wikipedia action API
	DefaultEndpoint = "https://en.wikipedia.org/w/api.php"

	// User-Agent constants following Wikimedia robot policy
	// https://foundation.wikimedia.org/wiki/Policy:Wikimedia_Foundation_User-Agent_Policy
	userAgentName    = "Biodex"
	userAgentContact = "https://github.com/biodexapp/biodex"
	userAgentLibrary = "Go-HTTP-Client"

	// Wikipedia asks automated clients to stay well under a handful of
	// requests per second
	requestsPerSecond = 2
	thumbnailSize     = 500
)

// Sentinel errors surfaced as non-fatal user warnings by the form layer.
var (
	ErrEmptyQuery = errors.Newf("search query is empty").Component("wikipedia").Category(errors.CategoryValidation).Build()
	ErrNoMatch    = errors.Newf("no matching article found").Component("wikipedia").Category(errors.CategoryNotFound).Build()
	ErrNoPageData = errors.Newf("article has no page data").Component("wikipedia").Category(errors.CategoryNotFound).Build()
)

// LookupResult carries the best-effort data for the two autofilled form
// fields. Extract and ThumbnailURL may be empty strings.
type LookupResult struct {
	Title        string `json:"title"`
	Extract      string `json:"extract"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Config controls the lookup client.
type Config struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	CacheTTL   time.Duration
	Backoff    time.Duration // base wait between retries
	Version    string        // application version for the User-Agent
	Debug      bool
}

// Client queries the MediaWiki action API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	cache       *gocache.Cache
	userAgent   string
	logger      *slog.Logger
	loggerClose func() error
}

// New creates a lookup client. Zero-value config fields fall back to
// sensible defaults.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	logger, loggerClose := logging.ForService("wikipedia", cfg.Debug)

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		endpoint:    cfg.Endpoint,
		maxRetries:  cfg.MaxRetries,
		backoff:     cfg.Backoff,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		cache:       gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		userAgent:   buildUserAgent(cfg.Version),
		logger:      logger,
		loggerClose: loggerClose,
	}
}

// Close releases the client's log file handle
func (c *Client) Close() error {
	if c.loggerClose != nil {
		return c.loggerClose()
	}
	return nil
}

// buildUserAgent constructs a user-agent string that complies with Wikimedia's
// robot policy. Format: <client>/<version> (<contact>) <library>/<version>
func buildUserAgent(appVersion string) string {
	if appVersion == "" {
		appVersion = "unknown"
	}
	return fmt.Sprintf("%s/%s (%s) %s/%s",
		userAgentName, appVersion, userAgentContact, userAgentLibrary, runtime.Version())
}

// Lookup runs the two-step chain for a free-text query. The second request
// is only issued when the first yields a title; on any failure no partial
// result is returned.
func (c *Client) Lookup(ctx context.Context, query string) (*LookupResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if cached, ok := c.cache.Get(query); ok {
		result := cached.(LookupResult)
		c.logger.Debug("lookup served from cache", "query", query, "title", result.Title)
		return &result, nil
	}

	title, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}

	result, err := c.pageDetails(ctx, title)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(query, *result)
	c.logger.Info("lookup completed",
		"query", query,
		"title", result.Title,
		"extract_length", len(result.Extract),
		"has_thumbnail", result.ThumbnailURL != "")
	return result, nil
}

// search returns the title of the first full-text search hit
func (c *Client) search(ctx context.Context, query string) (string, error) {
	resp, err := c.query(ctx, map[string]string{
		"action":   "query",
		"format":   "json",
		"list":     "search",
		"srsearch": query,
		"srlimit":  "1",
		"utf8":     "",
	})
	if err != nil {
		return "", err
	}

	hits, err := resp.GetObjectArray("query", "search")
	if err != nil || len(hits) == 0 {
		c.logger.Debug("search returned no hits", "query", query)
		return "", ErrNoMatch
	}

	title, err := hits[0].GetString("title")
	if err != nil || title == "" {
		return "", ErrNoMatch
	}

	c.logger.Debug("search matched article", "query", query, "title", title)
	return title, nil
}

// pageDetails fetches the intro extract and thumbnail for an exact title
func (c *Client) pageDetails(ctx context.Context, title string) (*LookupResult, error) {
	resp, err := c.query(ctx, map[string]string{
		"action":        "query",
		"format":        "json",
		"formatversion": "2",
		"prop":          "extracts|pageimages",
		"exintro":       "1",
		"explaintext":   "1",
		"piprop":        "thumbnail",
		"pithumbsize":   fmt.Sprintf("%d", thumbnailSize),
		"redirects":     "1",
		"titles":        title,
	})
	if err != nil {
		return nil, err
	}

	pages, err := resp.GetObjectArray("query", "pages")
	if err != nil || len(pages) == 0 {
		c.logger.Debug("details response has no pages", "title", title)
		return nil, ErrNoPageData
	}

	page := pages[0]
	if missing, err := page.GetBoolean("missing"); err == nil && missing {
		return nil, ErrNoPageData
	}

	// Both fields are optional on the page object
	extract, _ := page.GetString("extract")
	thumbnail, _ := page.GetString("thumbnail", "source")

	// Extracts are requested as plain text but occasionally carry stray markup
	if strings.Contains(extract, "<") {
		extract = html2text.HTML2Text(extract)
	}

	resolvedTitle, err := page.GetString("title")
	if err != nil || resolvedTitle == "" {
		resolvedTitle = title
	}

	return &LookupResult{
		Title:        resolvedTitle,
		Extract:      strings.TrimSpace(extract),
		ThumbnailURL: thumbnail,
	}, nil
}

// query performs a rate-limited GET against the action API with retry and
// exponential backoff.
func (c *Client) query(ctx context.Context, params map[string]string) (*jason.Object, error) {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	fullURL := c.endpoint + "?" + values.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.New(err).
				Component("wikipedia").
				Category(errors.CategoryNetwork).
				Context("operation", "rate_limiter_wait").
				Build()
		}

		obj, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return obj, nil
		}

		lastErr = err
		c.logger.Warn("API request failed",
			"url", fullURL,
			"attempt", attempt+1,
			"max_attempts", c.maxRetries,
			"error", err)

		if attempt < c.maxRetries-1 {
			wait := c.backoff * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return nil, errors.New(lastErr).
		Component("wikipedia").
		Category(errors.CategoryNetwork).
		Context("operation", "query_with_retry").
		Context("max_retries", c.maxRetries).
		Context("api_action", params["action"]).
		Build()
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (*jason.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("received non-200 response: %d: %s", resp.StatusCode, string(body))
	}

	obj, err := jason.NewObjectFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing API response: %w", err)
	}
	return obj, nil
}
