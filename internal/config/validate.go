package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlex(); err != nil {
		return err
	}
	if err := c.validateTrakt(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func missingCredential(field, env string) error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/reviewsync/config.toml"
	}
	return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'reviewsync config init')", field, env, defaultPath)
}

func (c *Config) validatePlex() error {
	if c.Plex.Token == "" {
		return missingCredential("plex.token", "PLEX_TOKEN")
	}
	if err := validateHTTPURL("plex.url", c.Plex.URL); err != nil {
		return err
	}
	if err := validateHTTPURL("plex.community_url", c.Plex.CommunityURL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTrakt() error {
	if c.Trakt.ClientID == "" {
		return missingCredential("trakt.client_id", "TRAKT_CLIENT_ID")
	}
	if c.Trakt.UserID == "" {
		return missingCredential("trakt.user_id", "TRAKT_USER_ID")
	}
	if err := validateHTTPURL("trakt.base_url", c.Trakt.BaseURL); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.MaxMessageLength <= 0 {
		return errors.New("sync.max_message_length must be positive")
	}
	if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
		return fmt.Errorf("sync.schedule %q is invalid: %w", c.Sync.Schedule, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", field, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, value)
	}
	return nil
}
