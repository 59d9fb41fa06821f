package preflight

import (
	"context"
	"net/http"
	"path/filepath"

	"reviewsync/internal/config"
	"reviewsync/internal/ledger"
	"reviewsync/internal/plex"
	"reviewsync/internal/trakt"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config. A nil client
// falls back to one bounded by the configured request timeout.
func RunAll(ctx context.Context, cfg *config.Config, client *http.Client) []Result {
	if cfg == nil {
		return nil
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout()}
	}

	server := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token,
		plex.WithHTTPClient(client),
		plex.WithClientIdentifier(cfg.Plex.ClientIdentifier),
	)
	submitter := plex.NewSubmitter(cfg.Plex.CommunityURL, cfg.Plex.Token,
		plex.WithHTTPClient(client),
		plex.WithClientIdentifier(cfg.Plex.ClientIdentifier),
	)
	source := trakt.NewClient(cfg.Trakt.BaseURL, cfg.Trakt.ClientID,
		trakt.WithHTTPClient(client),
		trakt.WithAPIVersion(cfg.Trakt.APIVersion),
	)

	return []Result{
		CheckPlexServer(ctx, server),
		CheckCommunity(submitter),
		CheckTrakt(ctx, source, cfg.Trakt.UserID),
		CheckDirectoryAccess("Ledger directory", filepath.Dir(cfg.Paths.LedgerPath)),
		CheckLedger(ctx, ledger.New(cfg.Paths.LedgerPath, nil)),
	}
}
