package plex

import (
	"context"
	"errors"
	"strings"
)

// CheckAuth verifies that the server answers the section listing with the
// configured token.
func (c *Client) CheckAuth(ctx context.Context) error {
	if c.baseURL == "" {
		return errors.New("plex.url not configured")
	}
	if c.token == "" {
		return ErrAuthorizationMissing
	}
	return c.getJSON(ctx, "/library/sections", nil, nil)
}

// CheckEndpoint reports whether the community endpoint is configured as an
// absolute http(s) URL. Submitting is the only real probe, and doctor never
// writes.
func (s *Submitter) CheckEndpoint() error {
	lower := strings.ToLower(s.endpoint)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return errors.New("plex.community_url must be an http(s) URL")
	}
	if s.token == "" {
		return ErrAuthorizationMissing
	}
	return nil
}
