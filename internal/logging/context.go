package logging

import (
	"context"
	"log/slog"

	"reviewsync/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one sync run across every line it produces.
	FieldRunID = "run_id"
	// FieldCommentID is the remote comment a line concerns.
	FieldCommentID = "comment_id"
	// FieldPhase is the sync driver phase (FETCHING, FILTERING, ...).
	FieldPhase = "phase"
	// FieldTargetType is the kind of media a review targets.
	FieldTargetType = "target_type"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries services.Kind of the failure.
	FieldErrorKind = "error_kind"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if phase, ok := services.PhaseFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPhase, phase))
	}
	if id, ok := services.CommentIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCommentID, id))
	}
	if kind, ok := services.TargetTypeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldTargetType, kind))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
