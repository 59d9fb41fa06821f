package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	commentIDKey  contextKey = "comment_id"
	phaseKey      contextKey = "phase"
	targetTypeKey contextKey = "target_type"
)

// WithRunID annotates context with the identifier of the current sync run.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sync run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, runIDKey)
}

// WithCommentID annotates context with the remote comment being processed.
func WithCommentID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, commentIDKey, id)
}

// CommentIDFromContext returns the remote comment identifier if present.
func CommentIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, commentIDKey)
}

// WithPhase annotates context with the sync driver phase.
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the sync driver phase if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, phaseKey)
}

// WithTargetType annotates context with the kind of media a review targets.
func WithTargetType(ctx context.Context, targetType string) context.Context {
	if targetType == "" {
		return ctx
	}
	return context.WithValue(ctx, targetTypeKey, targetType)
}

// TargetTypeFromContext returns the review target kind if present.
func TargetTypeFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, targetTypeKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
