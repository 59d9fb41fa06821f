package testsupport

import (
	"context"
	"testing"
	"time"

	"reviewsync/internal/config"
	"reviewsync/internal/ledger"
	"reviewsync/internal/logging"
)

// NewLedger returns a ledger store rooted in the config's temp directory.
func NewLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()
	return ledger.New(cfg.Paths.LedgerPath, logging.NewNop())
}

// SeedEntry records commentID as delivered at updatedAt.
func SeedEntry(t testing.TB, store *ledger.Store, commentID string, updatedAt time.Time) {
	t.Helper()

	if err := store.RecordSuccess(context.Background(), ledger.Entry{CommentID: commentID, UpdatedAt: updatedAt}); err != nil {
		t.Fatalf("ledger.RecordSuccess: %v", err)
	}
}
