package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reviewsync/internal/identity"
	"reviewsync/internal/logging"
	"reviewsync/internal/review"
	"reviewsync/internal/services"
)

// Driver runs sync passes. It holds no state between runs other than its
// dependencies, so a single Driver may be reused by a scheduler.
type Driver struct {
	deps   Dependencies
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewDriver constructs a driver.
func NewDriver(deps Dependencies, opts Options, logger *slog.Logger) *Driver {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = DefaultMaxMessageLength
	}
	return &Driver{
		deps:   deps,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "workflow"),
		now:    time.Now,
	}
}

// Run performs one sync pass. Per-review failures, a failed fetch, and a
// failed index build are logged and reflected in the Summary; the returned
// error is reserved for cancellation and missing dependencies.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.validate(); err != nil {
		return Summary{}, err
	}

	runID := strings.TrimSpace(d.opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = services.WithRunID(ctx, runID)
	started := d.now()
	summary := Summary{RunID: runID}

	fetchCtx := d.enterPhase(ctx, PhaseFetching)
	records, err := d.deps.Source.FetchReviews(fetchCtx, d.opts.UserID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return summary, ctxErr
		}
		summary.FetchFailed = true
		logging.WarnWithContext(logging.WithContext(fetchCtx, d.logger), "review fetch failed", "review_fetch_failed",
			logging.String("user_id", d.opts.UserID),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check trakt.client_id, trakt.user_id, and network access to the Trakt API"),
			logging.String(logging.FieldImpact, "no reviews processed this run"),
		)
		d.finish(ctx, &summary, started)
		return summary, nil
	}
	summary.Fetched = len(records)

	filterCtx := d.enterPhase(ctx, PhaseFiltering)
	candidates := d.filter(filterCtx, records)
	summary.Candidates = len(candidates)
	logging.WithContext(filterCtx, d.logger).Info("reviews filtered",
		logging.Int("fetched", summary.Fetched),
		logging.Int("candidates", summary.Candidates),
		logging.Int("already_synced", summary.Skipped()),
	)
	if len(candidates) == 0 {
		d.finish(ctx, &summary, started)
		return summary, nil
	}

	// The index is built on the first candidate that needs a library lookup.
	index := identity.NewLazy(func(ctx context.Context) (*identity.Index, error) {
		return identity.Build(d.enterPhase(ctx, PhaseIndexing), d.deps.Library, d.logger)
	})
	var submitCtx context.Context
	for _, record := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !record.TargetType.Supported() {
			d.reportUnsupported(filterCtx, record, &summary)
			continue
		}
		resolved, err := index.Get(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			summary.IndexFailed = true
			logging.WarnWithContext(logging.WithContext(services.WithPhase(ctx, string(PhaseIndexing)), d.logger), "library index build failed", "index_build_failed",
				logging.Int("candidates", len(candidates)),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check plex.url and plex.token; run 'reviewsync doctor'"),
				logging.String(logging.FieldImpact, "candidate reviews will be retried on the next run"),
			)
			d.finish(ctx, &summary, started)
			return summary, nil
		}
		if submitCtx == nil {
			submitCtx = d.enterPhase(ctx, PhaseSubmitting)
		}
		d.processCandidate(submitCtx, resolved, record, &summary)
	}

	d.finish(ctx, &summary, started)
	return summary, nil
}

func (d *Driver) validate() error {
	var missing []string
	if d.deps.Source == nil {
		missing = append(missing, "source")
	}
	if d.deps.Ledger == nil {
		missing = append(missing, "ledger")
	}
	if d.deps.Library == nil {
		missing = append(missing, "library")
	}
	if d.deps.Submitter == nil && !d.opts.DryRun {
		missing = append(missing, "submitter")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "workflow", "run",
			"missing dependencies: "+strings.Join(missing, ", "), nil)
	}
	if strings.TrimSpace(d.opts.UserID) == "" {
		return services.Wrap(services.ErrConfiguration, "workflow", "run", "user id is empty", nil)
	}
	return nil
}

// filter keeps the reviews the ledger has not seen at their current
// timestamp, preserving fetch order.
func (d *Driver) filter(ctx context.Context, records []review.Record) []review.Record {
	candidates := make([]review.Record, 0, len(records))
	logger := logging.WithContext(ctx, d.logger)
	for _, record := range records {
		if !d.deps.Ledger.NeedsProcessing(ctx, record.CommentID, record.UpdatedAt) {
			continue
		}
		logger.Debug("review needs processing",
			logging.String(logging.FieldCommentID, record.CommentID),
			logging.String(logging.FieldTargetType, string(record.TargetType)),
			logging.Time("updated_at", record.UpdatedAt),
		)
		candidates = append(candidates, record)
	}
	return candidates
}

func (d *Driver) enterPhase(ctx context.Context, phase Phase) context.Context {
	ctx = services.WithPhase(ctx, string(phase))
	logging.WithContext(ctx, d.logger).Info("sync phase entered",
		logging.String(logging.FieldEventType, "phase_transition"),
	)
	return ctx
}

func (d *Driver) finish(ctx context.Context, summary *Summary, started time.Time) {
	summary.Duration = d.now().Sub(started)
	doneCtx := d.enterPhase(ctx, PhaseDone)
	logging.WithContext(doneCtx, d.logger).Info("sync run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("fetched", summary.Fetched),
		logging.Int("candidates", summary.Candidates),
		logging.Int("submitted", summary.Submitted),
		logging.Int("recorded", summary.Recorded),
		logging.Int("dry_run", summary.DryRun),
		logging.Int("unresolved", summary.Unresolved),
		logging.Int("rejected", summary.Rejected),
		logging.Int("transport_failures", summary.TransportFailures),
		logging.Int("persistence_failures", summary.PersistenceFailures),
		logging.Bool("fetch_failed", summary.FetchFailed),
		logging.Bool("index_failed", summary.IndexFailed),
		logging.Duration("duration", summary.Duration),
	)
}

func isResolutionMiss(err error) bool {
	return errors.Is(err, identity.ErrNotFound) || errors.Is(err, identity.ErrUnsupportedTarget) || errors.Is(err, services.ErrResolution)
}
