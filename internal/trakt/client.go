package trakt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"reviewsync/internal/logging"
	"reviewsync/internal/review"
	"reviewsync/internal/services"
)

const userAgent = "reviewsync/0.1.0"

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger used to report comments that cannot be decoded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "trakt")
	}
}

// WithAPIVersion overrides the trakt-api-version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if strings.TrimSpace(version) != "" {
			c.apiVersion = strings.TrimSpace(version)
		}
	}
}

// WithCommentLimit sets the single-page limit requested from the API.
func WithCommentLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// Client reads a user's comments from the Trakt API.
type Client struct {
	baseURL    string
	clientID   string
	apiVersion string
	limit      int
	http       HTTPDoer
	logger     *slog.Logger
}

// NewClient constructs a Trakt client for baseURL authenticated by clientID.
func NewClient(baseURL, clientID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		clientID:   strings.TrimSpace(clientID),
		apiVersion: "2",
		limit:      9999999,
		http:       &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchReviews returns every comment written by userID, in API order.
// Comments that cannot be decoded are logged and left out.
func (c *Client) FetchReviews(ctx context.Context, userID string) ([]review.Record, error) {
	var envelopes []commentEnvelope
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/comments", url.Values{"limit": {strconv.Itoa(c.limit)}}, &envelopes); err != nil {
		return nil, err
	}

	records := make([]review.Record, 0, len(envelopes))
	for _, env := range envelopes {
		record, err := env.toRecord()
		if err != nil {
			logging.WarnWithContext(c.logger, "trakt comment ignored", "trakt_comment_malformed",
				logging.String(logging.FieldCommentID, strconv.FormatInt(env.Comment.ID, 10)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "inspect the comment on trakt.tv"),
				logging.String(logging.FieldImpact, "comment is not mirrored"),
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// Ping checks that the API answers for userID without decoding the full comment list.
func (c *Client) Ping(ctx context.Context, userID string) error {
	return c.get(ctx, "/users/"+url.PathEscape(userID)+"/comments", url.Values{"limit": {"1"}}, nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "trakt", "build request", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", c.apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransport, "trakt", "GET "+path, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return services.Wrap(services.ErrTransport, "trakt", "GET "+path,
			fmt.Sprintf("returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "trakt", "GET "+path, "decode response", err)
	}
	return nil
}
