package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reviewsync/internal/logging"
)

func TestPassRunnerOpensRunLogPerPass(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := env.cfg.Paths.LogDir
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	expired := filepath.Join(logDir, "reviewsync-expired.log")
	if err := os.WriteFile(expired, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("seed expired log: %v", err)
	}
	old := time.Now().AddDate(0, 0, -(env.cfg.Logging.RetentionDays + 1))
	if err := os.Chtimes(expired, old, old); err != nil {
		t.Fatalf("age expired log: %v", err)
	}

	runner := &passRunner{cfg: env.cfg, console: logging.NewNop(), client: &http.Client{Timeout: env.cfg.RequestTimeout()}}
	first, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if first.RunID == second.RunID {
		t.Fatalf("expected a new run id per pass, got %q twice", first.RunID)
	}
	if env.submissions.Load() != 1 {
		t.Fatalf("expected the second pass to skip the recorded review, got %d submissions", env.submissions.Load())
	}

	for _, runID := range []string{first.RunID, second.RunID} {
		info, err := os.Stat(logging.RunLogPath(logDir, runID))
		if err != nil {
			t.Fatalf("expected run log for %s: %v", runID, err)
		}
		if info.Size() == 0 {
			t.Fatalf("run log for %s is empty", runID)
		}
	}
	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Fatalf("expected expired run log to be pruned, err=%v", err)
	}
}
