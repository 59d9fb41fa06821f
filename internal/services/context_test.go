package services_test

import (
	"context"
	"testing"

	"reviewsync/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithCommentID(ctx, "42")
	ctx = services.WithPhase(ctx, "SUBMITTING")
	ctx = services.WithTargetType(ctx, "episode")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if id, ok := services.CommentIDFromContext(ctx); !ok || id != "42" {
		t.Fatalf("unexpected comment id: %v %v", id, ok)
	}
	if phase, ok := services.PhaseFromContext(ctx); !ok || phase != "SUBMITTING" {
		t.Fatalf("unexpected phase: %v %v", phase, ok)
	}
	if kind, ok := services.TargetTypeFromContext(ctx); !ok || kind != "episode" {
		t.Fatalf("unexpected target type: %v %v", kind, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithCommentID(ctx, "")
	ctx = services.WithPhase(ctx, "")
	if _, ok := services.CommentIDFromContext(ctx); ok {
		t.Fatal("expected no comment id value")
	}
	if _, ok := services.PhaseFromContext(ctx); ok {
		t.Fatal("expected no phase value")
	}
}
