package plex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"reviewsync/internal/identity"
	"reviewsync/internal/logging"
	"reviewsync/internal/services"
)

const (
	userAgent             = "reviewsync/0.1.0"
	managedProductName    = "reviewsync"
	managedProductVersion = "0.1.0"
)

// ErrAuthorizationMissing means Plex rejected the configured token.
var ErrAuthorizationMissing = errors.New("plex authorization token rejected")

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type transport struct {
	http     HTTPDoer
	clientID string
	logger   *slog.Logger
}

// Option customises Client and Submitter construction.
type Option func(*transport)

// WithHTTPClient replaces the default HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(t *transport) {
		if doer != nil {
			t.http = doer
		}
	}
}

// WithClientIdentifier sets the X-Plex-Client-Identifier header value.
func WithClientIdentifier(id string) Option {
	return func(t *transport) {
		if strings.TrimSpace(id) != "" {
			t.clientID = strings.TrimSpace(id)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *transport) {
		t.logger = logging.NewComponentLogger(logger, "plex")
	}
}

func newTransport(opts []Option) transport {
	t := transport{
		http:     &http.Client{Timeout: 30 * time.Second},
		clientID: managedProductName,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func applyStandardHeaders(req *http.Request, clientIdentifier string) {
	req.Header.Set("X-Plex-Client-Identifier", clientIdentifier)
	req.Header.Set("X-Plex-Product", managedProductName)
	req.Header.Set("X-Plex-Version", managedProductVersion)
	req.Header.Set("X-Plex-Device-Name", managedProductName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
	req.Header.Set("User-Agent", userAgent)
}

// Client reads the local Plex Media Server library.
type Client struct {
	transport
	baseURL string
	token   string
}

// NewClient constructs a library client for the server at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	return &Client{
		transport: newTransport(opts),
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:     strings.TrimSpace(token),
	}
}

// getJSON issues an authenticated GET and decodes the MediaContainer. A 404
// is reported as identity.ErrNotFound so callers can tell a missing item from
// an unreachable server.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out *mediaContainerEnvelope) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "plex", "build request", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	applyStandardHeaders(req, c.clientID)

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "plex", "GET "+path, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return services.Wrap(services.ErrConfiguration, "plex", "GET "+path, "check plex.token", ErrAuthorizationMissing)
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("plex %s: %w", path, identity.ErrNotFound)
	case resp.StatusCode >= http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransport, "plex", "GET "+path,
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "plex", "GET "+path, "decode response", err)
	}
	return nil
}
