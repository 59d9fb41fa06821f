package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reviewsync/internal/logging"
	"reviewsync/internal/services"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one delivered review.
type Entry struct {
	CommentID  string
	UpdatedAt  time.Time
	TargetType string
	Title      string
	SyncedAt   time.Time
}

// Store is the SQLite-backed review ledger.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Store for the database at path. Nothing is opened until the
// first operation.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "ledger"),
		now:    time.Now,
	}
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// withDB opens the ledger, makes sure the schema exists, runs fn, and closes
// the connection again.
func (s *Store) withDB(ctx context.Context, fn func(*sql.DB) error) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(s.path) == "" {
		return errors.New("ledger path not configured")
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if err := retryOnBusy(ctx, func() error {
			_, execErr := db.ExecContext(ctx, pragma)
			return execErr
		}); err != nil {
			return fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if err := retryOnBusy(ctx, func() error { return initSchema(ctx, db) }); err != nil {
		return err
	}
	return fn(db)
}

// NeedsProcessing reports whether the comment has never been delivered or was
// delivered with a different update timestamp. Storage failures are logged
// and answered with true so the comment is reprocessed rather than lost.
func (s *Store) NeedsProcessing(ctx context.Context, commentID string, updatedAt time.Time) bool {
	entry, err := s.Lookup(ctx, commentID)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "ledger read failed; treating comment as unseen", "ledger_read_failed",
			logging.String(logging.FieldCommentID, commentID),
			logging.String("ledger_path", s.path),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'reviewsync ledger health' to inspect the database"),
			logging.String(logging.FieldImpact, "comment may be submitted again"),
		)
		return true
	}
	if entry == nil {
		return true
	}
	if entry.UpdatedAt.IsZero() {
		return true
	}
	return !entry.UpdatedAt.Equal(updatedAt)
}

// RecordSuccess upserts the watermark for a delivered comment in a single statement.
func (s *Store) RecordSuccess(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.CommentID) == "" {
		return services.Wrap(services.ErrValidation, "ledger", "record success", "comment id is empty", nil)
	}
	syncedAt := entry.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = s.now()
	}

	err := s.withDB(ctx, func(db *sql.DB) error {
		return retryOnBusy(ctx, func() error {
			_, err := db.ExecContext(ctx, `
				INSERT INTO reviews (id, updated_at, target_type, title, synced_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					updated_at = excluded.updated_at,
					target_type = excluded.target_type,
					title = excluded.title,
					synced_at = excluded.synced_at`,
				entry.CommentID,
				formatTime(entry.UpdatedAt),
				nullableString(entry.TargetType),
				nullableString(entry.Title),
				formatTime(syncedAt),
			)
			return err
		})
	})
	if err != nil {
		return services.Wrap(services.ErrPersistence, "ledger", "record success", "comment "+entry.CommentID, err)
	}
	return nil
}

// Lookup returns the entry for commentID, or nil when none exists.
func (s *Store) Lookup(ctx context.Context, commentID string) (*Entry, error) {
	var entry *Entry
	err := s.withDB(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM reviews WHERE id = ?", commentID)
		scanned, err := scanEntry(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		entry = scanned
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "ledger", "lookup", "comment "+commentID, err)
	}
	return entry, nil
}

// List returns the most recently synced entries first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.withDB(ctx, func(db *sql.DB) error {
		query := "SELECT " + entryColumns + " FROM reviews ORDER BY synced_at DESC, id"
		args := []any{}
		if limit > 0 {
			query += " LIMIT ?"
			args = append(args, limit)
		}
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return err
			}
			entries = append(entries, *entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "ledger", "list", "", err)
	}
	return entries, nil
}

// Count returns the number of delivered reviews.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.withDB(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx, "SELECT COUNT(1) FROM reviews").Scan(&count)
	})
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "ledger", "count", "", err)
	}
	return count, nil
}

const entryColumns = "id, updated_at, target_type, title, synced_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id         string
		updatedRaw string
		targetType sql.NullString
		title      sql.NullString
		syncedRaw  sql.NullString
	)
	if err := scanner.Scan(&id, &updatedRaw, &targetType, &title, &syncedRaw); err != nil {
		return nil, err
	}
	entry := &Entry{
		CommentID:  id,
		TargetType: targetType.String,
		Title:      title.String,
	}
	// An unparseable watermark is left zero so the comment counts as changed.
	if updated, err := parseTimeString(updatedRaw); err == nil {
		entry.UpdatedAt = updated
	}
	if synced, err := parseTimeString(syncedRaw.String); err == nil {
		entry.SyncedAt = synced
	}
	return entry, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
