package workflow

import (
	"context"
	"time"

	"reviewsync/internal/identity"
	"reviewsync/internal/ledger"
	"reviewsync/internal/plex"
	"reviewsync/internal/review"
)

// DefaultMaxMessageLength is the community API's review length limit in characters.
const DefaultMaxMessageLength = 10000

// Phase names a step of a sync run.
type Phase string

const (
	PhaseFetching   Phase = "fetching"
	PhaseFiltering  Phase = "filtering"
	PhaseIndexing   Phase = "indexing"
	PhaseSubmitting Phase = "submitting"
	PhaseDone       Phase = "done"
)

// Source fetches the remote reviews of a user.
type Source interface {
	FetchReviews(ctx context.Context, userID string) ([]review.Record, error)
}

// Ledger remembers which reviews were delivered.
type Ledger interface {
	NeedsProcessing(ctx context.Context, commentID string, updatedAt time.Time) bool
	RecordSuccess(ctx context.Context, entry ledger.Entry) error
}

// Submitter delivers one review.
type Submitter interface {
	Submit(ctx context.Context, payload plex.ReviewPayload) (plex.SubmissionResult, error)
}

// Dependencies are the collaborators of a run. The library is scanned into
// a fresh identity index at most once per run.
type Dependencies struct {
	Source    Source
	Ledger    Ledger
	Library   identity.Library
	Submitter Submitter
}

// Options tune a run.
type Options struct {
	UserID           string
	MaxMessageLength int
	// DryRun resolves candidates and logs the payload without submitting or
	// recording anything.
	DryRun bool
	// RunID correlates the run's log lines. One is generated when empty.
	RunID string
}

// Summary counts what happened during a run.
type Summary struct {
	RunID      string
	Fetched    int
	Candidates int
	Submitted  int
	Recorded   int
	// DryRun counts candidates that would have been submitted.
	DryRun              int
	Unresolved          int
	Rejected            int
	TransportFailures   int
	PersistenceFailures int
	FetchFailed         bool
	IndexFailed         bool
	Duration            time.Duration
}

// Skipped is the number of fetched reviews the ledger already covers.
func (s Summary) Skipped() int {
	return s.Fetched - s.Candidates
}

// Failures counts the problems that left a review unmirrored or unrecorded.
// A failed fetch or index build counts once.
func (s Summary) Failures() int {
	n := s.Unresolved + s.Rejected + s.TransportFailures + s.PersistenceFailures
	if s.FetchFailed {
		n++
	}
	if s.IndexFailed {
		n++
	}
	return n
}
