package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// DatabaseHealth captures diagnostic information about the ledger database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	MissingColumns   []string
	NeedsUpgrade     bool
	IntegrityCheck   bool
	TotalEntries     int
	LastSyncedAt     time.Time
	Error            string
}

// Healthy reports whether the ledger can be used by a sync run. A database
// that does not exist yet is healthy; it is created on first use. So is an
// unversioned legacy layout, which the next sync upgrades in place.
func (h DatabaseHealth) Healthy() bool {
	if !h.DatabaseExists {
		return h.Error == ""
	}
	if h.NeedsUpgrade {
		return h.DatabaseReadable && h.IntegrityCheck
	}
	return h.DatabaseReadable && h.TableExists && len(h.MissingColumns) == 0 && h.IntegrityCheck && h.SchemaVersion == schemaVersion
}

// CheckHealth inspects the ledger without creating or modifying it.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	ctx = ensureContext(ctx)
	health := DatabaseHealth{DBPath: s.path}

	if strings.TrimSpace(s.path) == "" {
		return health, errors.New("ledger database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat ledger database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("ledger database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("open ledger database: %w", err)
	}
	defer db.Close()

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping ledger database: %w", err)
	}
	health.DatabaseReadable = true

	var versionTables int
	if err := db.QueryRowContext(connCtx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&versionTables); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("query schema_version: %w", err)
	}
	if versionTables > 0 {
		if err := db.QueryRowContext(connCtx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil && !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("read schema version: %w", err)
		}
	}

	var tableName string
	row := db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'reviews'")
	if err := row.Scan(&tableName); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		missing, err := missingColumns(connCtx, db)
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.MissingColumns = missing

		if err := db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM reviews").Scan(&health.TotalEntries); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count ledger entries: %w", err)
		}
		if len(missing) == 0 {
			var last sql.NullString
			if err := db.QueryRowContext(connCtx, "SELECT MAX(synced_at) FROM reviews").Scan(&last); err == nil && last.Valid {
				if parsed, err := parseTimeString(last.String); err == nil {
					health.LastSyncedAt = parsed
				}
			}
		}
	}

	health.NeedsUpgrade = versionTables == 0 && upgradable(health)

	var integrityResult string
	if err := db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

// upgradable reports whether an unversioned database can be brought to the
// current layout by createSchema: either no reviews table at all, or one that
// only lacks the columns added after the original (id, updated_at) layout.
func upgradable(health DatabaseHealth) bool {
	if !health.TableExists {
		return true
	}
	for _, col := range health.MissingColumns {
		if !slices.Contains(ledgerColumns, col) {
			return false
		}
	}
	return true
}

func missingColumns(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info(reviews)")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	present := make(map[string]struct{})
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		present[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}

	var missing []string
	for _, col := range append([]string{"id", "updated_at"}, ledgerColumns...) {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing, nil
}
