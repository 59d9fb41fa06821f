package workflow

import (
	"context"
	"fmt"

	"reviewsync/internal/identity"
	"reviewsync/internal/ledger"
	"reviewsync/internal/logging"
	"reviewsync/internal/review"
	"reviewsync/internal/services"
)

// maxLoggedResponse bounds the response excerpt attached to rejection warnings.
const maxLoggedResponse = 2048

// reportUnsupported counts a review whose target kind cannot carry a Plex
// review. No library lookup is made for it.
func (d *Driver) reportUnsupported(ctx context.Context, record review.Record, summary *Summary) {
	ctx = services.WithCommentID(ctx, record.CommentID)
	ctx = services.WithTargetType(ctx, string(record.TargetType))
	summary.Unresolved++
	err := services.Wrap(services.ErrResolution, "workflow", "resolve target",
		fmt.Sprintf("target type %q", record.TargetType), identity.ErrUnsupportedTarget)
	logging.WarnWithContext(logging.WithContext(ctx, d.logger), "review target kind cannot be mirrored", "review_unresolved",
		logging.String("target", record.Label()),
		logging.String(logging.FieldErrorKind, services.Kind(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "only movie, show, season and episode reviews are mirrored"),
	)
}

func (d *Driver) processCandidate(ctx context.Context, index *identity.Index, record review.Record, summary *Summary) {
	ctx = services.WithCommentID(ctx, record.CommentID)
	ctx = services.WithTargetType(ctx, string(record.TargetType))
	logger := logging.WithContext(ctx, d.logger)

	entity, err := identity.Resolve(ctx, record, index)
	if err != nil {
		if isResolutionMiss(err) {
			summary.Unresolved++
			logging.WarnWithContext(logger, "review target not found in library", "review_unresolved",
				logging.String("target", record.Label()),
				logging.String("external_id", record.Target.PrimaryExternalID()),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "add the title to a movie or show library, or refresh its metadata"),
			)
			return
		}
		summary.TransportFailures++
		logging.WarnWithContext(logger, "library lookup failed", "library_lookup_failed",
			logging.String("target", record.Label()),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the Plex server is reachable"),
		)
		return
	}

	payload, err := BuildPayload(record, entity, d.opts.MaxMessageLength)
	if err != nil {
		summary.Unresolved++
		logging.WarnWithContext(logger, "library item cannot receive reviews", "review_unresolved",
			logging.String("target", record.Label()),
			logging.String("guid", entity.GUID()),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "switch the library to the Plex Movie or Plex TV Series agent"),
		)
		return
	}

	if d.opts.DryRun {
		summary.DryRun++
		attrs := []logging.Attr{
			logging.String("target", record.Label()),
			logging.String("metadata_id", payload.MetadataID),
			logging.Bool("has_spoilers", payload.HasSpoilers),
			logging.Int("message_length", len([]rune(payload.Message))),
		}
		if payload.Rating != nil {
			attrs = append(attrs, logging.Float64("rating", *payload.Rating))
		}
		logger.Info("dry run: review would be submitted", logging.Args(attrs...)...)
		return
	}

	result, err := d.deps.Submitter.Submit(ctx, payload)
	if err != nil {
		summary.TransportFailures++
		logging.WarnWithContext(logger, "review submission failed", "review_submit_failed",
			logging.String("target", record.Label()),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access to plex.community_url"),
		)
		return
	}
	if !result.Succeeded() {
		summary.Rejected++
		rejection := services.Wrap(services.ErrSubmissionRejected, "workflow", "submit review",
			fmt.Sprintf("status %d, delivery %s", result.HTTPStatus, result.DeliveryStatus), nil)
		logging.WarnWithContext(logger, "review was not accepted by Plex", "review_rejected",
			logging.String("target", record.Label()),
			logging.Int("http_status", result.HTTPStatus),
			logging.String("delivery_status", string(result.DeliveryStatus)),
			logging.String("response", excerpt(result.RawBody, maxLoggedResponse)),
			logging.String(logging.FieldErrorKind, services.Kind(rejection)),
			logging.Error(rejection),
			logging.String(logging.FieldErrorHint, "inspect the response; a 401 means plex.token was refused"),
		)
		return
	}
	summary.Submitted++

	entry := ledger.Entry{
		CommentID:  record.CommentID,
		UpdatedAt:  record.UpdatedAt,
		TargetType: string(record.TargetType),
		Title:      record.Label(),
	}
	if err := d.deps.Ledger.RecordSuccess(ctx, entry); err != nil {
		summary.PersistenceFailures++
		logging.WarnWithContext(logger, "review delivered but not recorded", "ledger_write_failed",
			logging.String("target", record.Label()),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'reviewsync ledger health'"),
			logging.String(logging.FieldImpact, "review will be submitted again on the next run"),
		)
		return
	}
	summary.Recorded++

	logger.Info("review mirrored to Plex",
		logging.String(logging.FieldEventType, "review_synced"),
		logging.String("target", record.Label()),
		logging.String("delivery_status", string(result.DeliveryStatus)),
	)
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
