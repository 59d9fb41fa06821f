package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlex()
	c.normalizeTrakt()
	c.normalizeSync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if value, ok := os.LookupEnv("LOG_FOLDER"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LogDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.DataDir, defaultLedgerFile)
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePlex() {
	if c.Plex.Token == "" {
		if value, ok := os.LookupEnv("PLEX_TOKEN"); ok {
			c.Plex.Token = value
		}
	}
	if value, ok := os.LookupEnv("PLEX_URL"); ok && strings.TrimSpace(value) != "" && strings.TrimSpace(c.Plex.URL) == defaultPlexURL {
		c.Plex.URL = value
	}
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	if c.Plex.URL == "" {
		c.Plex.URL = defaultPlexURL
	}
	c.Plex.CommunityURL = strings.TrimSpace(c.Plex.CommunityURL)
	if c.Plex.CommunityURL == "" {
		c.Plex.CommunityURL = defaultPlexCommunityURL
	}
	c.Plex.ClientIdentifier = strings.TrimSpace(c.Plex.ClientIdentifier)
}

func (c *Config) normalizeTrakt() {
	if c.Trakt.ClientID == "" {
		if value, ok := os.LookupEnv("TRAKT_CLIENT_ID"); ok {
			c.Trakt.ClientID = value
		}
	}
	if c.Trakt.UserID == "" {
		if value, ok := os.LookupEnv("TRAKT_USER_ID"); ok {
			c.Trakt.UserID = value
		}
	}
	c.Trakt.ClientID = strings.TrimSpace(c.Trakt.ClientID)
	c.Trakt.UserID = strings.TrimSpace(c.Trakt.UserID)
	c.Trakt.BaseURL = strings.TrimRight(strings.TrimSpace(c.Trakt.BaseURL), "/")
	if c.Trakt.BaseURL == "" {
		c.Trakt.BaseURL = defaultTraktBaseURL
	}
	c.Trakt.APIVersion = strings.TrimSpace(c.Trakt.APIVersion)
	if c.Trakt.APIVersion == "" {
		c.Trakt.APIVersion = defaultTraktAPIVersion
	}
	if c.Trakt.CommentLimit <= 0 {
		c.Trakt.CommentLimit = defaultTraktCommentLimit
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.MaxMessageLength <= 0 {
		c.Sync.MaxMessageLength = defaultMaxMessageLength
	}
	if c.Sync.RequestTimeoutSeconds < 0 {
		c.Sync.RequestTimeoutSeconds = 0
	}
	c.Sync.Schedule = strings.TrimSpace(c.Sync.Schedule)
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = defaultSchedule
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
