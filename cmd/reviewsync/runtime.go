package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"reviewsync/internal/config"
	"reviewsync/internal/daemon"
	"reviewsync/internal/ledger"
	"reviewsync/internal/logging"
	"reviewsync/internal/plex"
	"reviewsync/internal/trakt"
	"reviewsync/internal/workflow"
)

// buildDaemon wires the production collaborators into a driver guarded by
// the run lock.
func buildDaemon(cfg *config.Config, logger *slog.Logger, client *http.Client, opts workflow.Options) (*daemon.Daemon, error) {
	return daemon.New(buildDriver(cfg, logger, client, opts), cfg.LockPath(), cfg.Sync.Schedule, logger)
}

func buildDriver(cfg *config.Config, logger *slog.Logger, client *http.Client, opts workflow.Options) *workflow.Driver {
	source := trakt.NewClient(cfg.Trakt.BaseURL, cfg.Trakt.ClientID,
		trakt.WithHTTPClient(client),
		trakt.WithLogger(logger),
		trakt.WithAPIVersion(cfg.Trakt.APIVersion),
		trakt.WithCommentLimit(cfg.Trakt.CommentLimit),
	)
	library := plex.NewClient(cfg.Plex.URL, cfg.Plex.Token,
		plex.WithHTTPClient(client),
		plex.WithClientIdentifier(cfg.Plex.ClientIdentifier),
		plex.WithLogger(logger),
	)
	submitter := plex.NewSubmitter(cfg.Plex.CommunityURL, cfg.Plex.Token,
		plex.WithHTTPClient(client),
		plex.WithClientIdentifier(cfg.Plex.ClientIdentifier),
		plex.WithLogger(logger),
	)

	opts.UserID = cfg.Trakt.UserID
	opts.MaxMessageLength = cfg.Sync.MaxMessageLength

	return workflow.NewDriver(workflow.Dependencies{
		Source:    source,
		Ledger:    ledger.New(cfg.Paths.LedgerPath, logger),
		Library:   library,
		Submitter: submitter,
	}, opts, logger)
}

// passRunner serves watch: every scheduled pass gets a new run id, its own
// run log file, and a retention sweep of expired run logs.
type passRunner struct {
	cfg     *config.Config
	console *slog.Logger
	client  *http.Client
}

func (p *passRunner) Run(ctx context.Context) (workflow.Summary, error) {
	runID := uuid.NewString()
	logger, runLog, err := logging.OpenRunLog(p.console, p.cfg.Paths.LogDir, runID)
	if err != nil {
		return workflow.Summary{}, fmt.Errorf("open run log: %w", err)
	}
	defer func() {
		if err := runLog.Close(); err != nil {
			logging.WarnWithContext(p.console, "run log close failed", "run_log_close_failed",
				logging.String("path", runLog.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions on paths.log_dir"),
			)
		}
	}()

	logging.CleanupOldLogs(logger, p.cfg.Logging.RetentionDays, logging.RunLogTarget(p.cfg.Paths.LogDir, runLog.Path))
	return buildDriver(p.cfg, logger, p.client, workflow.Options{RunID: runID}).Run(ctx)
}
