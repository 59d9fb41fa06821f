package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reviewsync/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransport, "trakt", "fetch comments", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"trakt", "fetch comments", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrResolution, "", "", "", nil)
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected resolution marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrTransport, "plex", "submit", "", errors.New("eof")), "transport"},
		{services.Wrap(services.ErrResolution, "identity", "resolve", "", nil), "resolution"},
		{services.Wrap(services.ErrSubmissionRejected, "plex", "submit", "REJECTED", nil), "submission_rejected"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrPersistence, "ledger", "upsert", "", nil)), "persistence"},
		{services.ErrConfiguration, "configuration"},
		{services.ErrValidation, "validation"},
		{errors.New("plain"), "unknown"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
