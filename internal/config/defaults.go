package config

const (
	defaultDataDir               = "~/.local/share/reviewsync"
	defaultLogDir                = "~/.local/share/reviewsync/logs"
	defaultLedgerFile            = "reviews.db"
	defaultPlexURL               = "http://localhost:32400"
	defaultPlexCommunityURL      = "https://community.plex.tv/api"
	defaultTraktBaseURL          = "https://api.trakt.tv"
	defaultTraktAPIVersion       = "2"
	defaultTraktCommentLimit     = 9999999
	defaultMaxMessageLength      = 10000
	defaultRequestTimeoutSeconds = 30
	defaultSchedule              = "@every 6h"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Plex: Plex{
			URL:          defaultPlexURL,
			CommunityURL: defaultPlexCommunityURL,
		},
		Trakt: Trakt{
			BaseURL:      defaultTraktBaseURL,
			APIVersion:   defaultTraktAPIVersion,
			CommentLimit: defaultTraktCommentLimit,
		},
		Sync: Sync{
			MaxMessageLength:      defaultMaxMessageLength,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			Schedule:              defaultSchedule,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
