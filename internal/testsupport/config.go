package testsupport

import (
	"path/filepath"
	"testing"

	"reviewsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories and dummy
// credentials per test. It applies any provided options afterwards.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LedgerPath = filepath.Join(base, "data", "reviews.db")
	cfgVal.Plex.Token = "plex-test-token"
	cfgVal.Plex.ClientIdentifier = "reviewsync-test"
	cfgVal.Trakt.ClientID = "trakt-test-client"
	cfgVal.Trakt.UserID = "tester"
	cfgVal.Sync.RequestTimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithPlexServer points the Plex library client and the community endpoint at baseURL.
func WithPlexServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plex.URL = baseURL
		b.cfg.Plex.CommunityURL = baseURL + "/community"
	}
}

// WithTraktServer points the Trakt client at baseURL.
func WithTraktServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Trakt.BaseURL = baseURL
	}
}

// WithMaxMessageLength overrides the review body cap.
func WithMaxMessageLength(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sync.MaxMessageLength = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
