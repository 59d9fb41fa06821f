package workflow_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"reviewsync/internal/review"
	"reviewsync/internal/testsupport"
	"reviewsync/internal/workflow"
)

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 10050)
	if got := workflow.Truncate(long, 10000); len(got) != 10000 {
		t.Fatalf("expected 10000 characters, got %d", len(got))
	}

	exact := strings.Repeat("b", 10000)
	if got := workflow.Truncate(exact, 10000); got != exact {
		t.Fatal("expected message at the limit to be unchanged")
	}

	multibyte := strings.Repeat("é", 12)
	got := workflow.Truncate(multibyte, 10)
	if utf8.RuneCountInString(got) != 10 || !utf8.ValidString(got) {
		t.Fatalf("expected 10 whole characters, got %q", got)
	}

	if got := workflow.Truncate("short", 0); got != "short" {
		t.Fatalf("expected non-positive limit to disable truncation, got %q", got)
	}
}

func TestBuildPayload(t *testing.T) {
	zero := 0.0
	seven := 7.0
	movie := testsupport.StubMovie("100", "plex://movie/5d776825880197001ec967c6", "Heat")

	record := review.Record{CommentID: "1", Body: strings.Repeat("x", 10050), HasSpoilers: true, Rating: &seven}
	payload, err := workflow.BuildPayload(record, movie, 10000)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if payload.MetadataID != "5d776825880197001ec967c6" {
		t.Fatalf("unexpected metadata id %q", payload.MetadataID)
	}
	if len(payload.Message) != 10000 || !payload.HasSpoilers {
		t.Fatalf("unexpected payload: len=%d spoilers=%v", len(payload.Message), payload.HasSpoilers)
	}
	if payload.Rating == nil || *payload.Rating != 7 {
		t.Fatalf("expected rating 7, got %v", payload.Rating)
	}

	record.Rating = &zero
	payload, err = workflow.BuildPayload(record, movie, 10000)
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	if payload.Rating != nil {
		t.Fatalf("expected zero rating to be omitted, got %v", *payload.Rating)
	}

	legacy := testsupport.StubMovie("101", "com.plexapp.agents.imdb://tt0113277", "Heat")
	if _, err := workflow.BuildPayload(record, legacy, 10000); err == nil {
		t.Fatal("expected legacy GUID to be rejected")
	}
}
