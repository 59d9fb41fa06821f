package preflight

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reviewsync/internal/ledger"
	"reviewsync/internal/plex"
	"reviewsync/internal/services"
	"reviewsync/internal/testsupport"
	"reviewsync/internal/trakt"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotCreatedYet(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "created on first sync") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckPlexServer_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Plex-Token") != "good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"MediaContainer":{"size":0}}`))
	}))
	defer srv.Close()

	result := CheckPlexServer(context.Background(), plex.NewClient(srv.URL, "good-token"))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckPlexServer_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckPlexServer(context.Background(), plex.NewClient(srv.URL, "bad-token"))
	if result.Passed {
		t.Fatal("expected failure for bad token")
	}
	if !strings.Contains(result.Detail, "plex.token") {
		t.Fatalf("expected token hint, got: %s", result.Detail)
	}
}

func TestCheckPlexServer_MissingURL(t *testing.T) {
	result := CheckPlexServer(context.Background(), plex.NewClient("", "token"))
	if result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

type slowServer struct{}

func (slowServer) CheckAuth(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheckPlexServer_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	result := CheckPlexServer(ctx, slowServer{})
	if result.Passed || !strings.Contains(result.Detail, "timed out") {
		t.Fatalf("expected timeout summary, got: %+v", result)
	}
}

func TestCheckCommunity(t *testing.T) {
	if r := CheckCommunity(plex.NewSubmitter("https://community.plex.tv/api", "token")); !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r := CheckCommunity(plex.NewSubmitter("community.plex.tv/api", "token")); r.Passed {
		t.Fatal("expected failure for relative URL")
	}
	if r := CheckCommunity(plex.NewSubmitter("https://community.plex.tv/api", "")); r.Passed || r.Detail != "missing token" {
		t.Fatalf("expected missing token, got: %+v", r)
	}
}

func TestCheckTrakt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/tester/comments" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := trakt.NewClient(srv.URL, "client")
	if r := CheckTrakt(context.Background(), client, "tester"); !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r := CheckTrakt(context.Background(), client, "nobody"); r.Passed {
		t.Fatal("expected failure for unknown user")
	}
	if r := CheckTrakt(context.Background(), client, " "); r.Passed || r.Detail != "missing user id" {
		t.Fatalf("expected missing user id, got: %+v", r)
	}
}

type fakeInspector struct {
	health ledger.DatabaseHealth
	err    error
}

func (f fakeInspector) CheckHealth(context.Context) (ledger.DatabaseHealth, error) {
	return f.health, f.err
}

func TestCheckLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewLedger(t, cfg)

	if r := CheckLedger(context.Background(), store); !r.Passed || r.Detail != "not created yet" {
		t.Fatalf("expected fresh ledger to pass, got: %+v", r)
	}

	testsupport.SeedEntry(t, store, "1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if r := CheckLedger(context.Background(), store); !r.Passed || r.Detail != "1 reviews recorded" {
		t.Fatalf("expected populated ledger to pass, got: %+v", r)
	}

	broken := fakeInspector{health: ledger.DatabaseHealth{DatabaseExists: true, DatabaseReadable: true, TableExists: true, MissingColumns: []string{"synced_at"}}}
	if r := CheckLedger(context.Background(), broken); r.Passed || !strings.Contains(r.Detail, "synced_at") {
		t.Fatalf("expected missing column failure, got: %+v", r)
	}

	failing := fakeInspector{err: services.Wrap(services.ErrPersistence, "ledger", "health", "open", errors.New("disk I/O error"))}
	if r := CheckLedger(context.Background(), failing); r.Passed {
		t.Fatal("expected failure when inspection errors")
	}
}

func TestCheckLedger_LegacyLayout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.LedgerPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	db, err := sql.Open("sqlite", cfg.Paths.LedgerPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE reviews(id type UNIQUE, updated_at)"); err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO reviews VALUES (101, '2024-03-01T10:00:00.000Z')"); err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}
	db.Close()

	store := ledger.New(cfg.Paths.LedgerPath, nil)
	r := CheckLedger(context.Background(), store)
	if !r.Passed || !strings.Contains(r.Detail, "legacy layout") {
		t.Fatalf("expected legacy ledger to pass as upgradable, got: %+v", r)
	}

	if store.NeedsProcessing(context.Background(), "101", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatal("expected legacy watermark to be honoured")
	}
	if r := CheckLedger(context.Background(), store); !r.Passed || r.Detail != "1 reviews recorded" {
		t.Fatalf("expected upgraded ledger to pass, got: %+v", r)
	}
}

func TestCheckLedger_UnversionedForeignTable(t *testing.T) {
	foreign := fakeInspector{health: ledger.DatabaseHealth{
		DatabaseExists:   true,
		DatabaseReadable: true,
		TableExists:      true,
		IntegrityCheck:   true,
		MissingColumns:   []string{"id", "updated_at"},
	}}
	if r := CheckLedger(context.Background(), foreign); r.Passed {
		t.Fatalf("expected a table without the ledger keys to fail, got: %+v", r)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/library/sections":
			_, _ = w.Write([]byte(`{"MediaContainer":{"size":0,"Directory":[]}}`))
		case strings.HasPrefix(r.URL.Path, "/users/"):
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithPlexServer(srv.URL), testsupport.WithTraktServer(srv.URL))
	results := RunAll(context.Background(), cfg, srv.Client())
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}
