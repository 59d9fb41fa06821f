package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reviewsync/internal/ledger"
	"reviewsync/internal/plex"
)

const checkTimeout = 10 * time.Second

// PlexServer is the slice of the Plex library client probed by doctor.
type PlexServer interface {
	CheckAuth(ctx context.Context) error
}

// CommunityEndpoint is the slice of the review submitter probed by doctor.
type CommunityEndpoint interface {
	CheckEndpoint() error
}

// TraktSource is the slice of the Trakt client probed by doctor.
type TraktSource interface {
	Ping(ctx context.Context, userID string) error
}

// LedgerInspector reports ledger health without modifying it.
type LedgerInspector interface {
	CheckHealth(ctx context.Context) (ledger.DatabaseHealth, error)
}

// CheckPlexServer verifies that the media server accepts the token.
func CheckPlexServer(ctx context.Context, server PlexServer) Result {
	const name = "Plex server"

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := server.CheckAuth(checkCtx); err != nil {
		if errors.Is(err, plex.ErrAuthorizationMissing) {
			return Result{Name: name, Detail: "auth failed (check plex.token)"}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckCommunity validates the community endpoint configuration. Nothing is
// submitted.
func CheckCommunity(endpoint CommunityEndpoint) Result {
	const name = "Plex community"

	if err := endpoint.CheckEndpoint(); err != nil {
		if errors.Is(err, plex.ErrAuthorizationMissing) {
			return Result{Name: name, Detail: "missing token"}
		}
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "Configured"}
}

// CheckTrakt verifies that the comments of userID can be read.
func CheckTrakt(ctx context.Context, source TraktSource, userID string) Result {
	const name = "Trakt"

	if strings.TrimSpace(userID) == "" {
		return Result{Name: name, Detail: "missing user id"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := source.Ping(checkCtx, userID); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (user %s)", userID)}
}

// CheckDirectoryAccess verifies that the directory is readable and writable.
// A directory that does not exist yet passes when its closest existing
// ancestor is writable, since the first sync creates it.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		ancestor := existingAncestor(path)
		if ancestor == "" {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first sync)", path)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLedger reports whether the ledger database can be used.
func CheckLedger(ctx context.Context, store LedgerInspector) Result {
	const name = "Ledger"

	health, err := store.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	switch {
	case !health.DatabaseExists:
		return Result{Name: name, Passed: true, Detail: "not created yet"}
	case !health.Healthy():
		detail := "unhealthy"
		if len(health.MissingColumns) > 0 {
			detail = "missing columns: " + strings.Join(health.MissingColumns, ", ")
		} else if !health.IntegrityCheck {
			detail = "integrity check failed"
		}
		return Result{Name: name, Detail: detail + " (run 'reviewsync ledger health')"}
	case health.NeedsUpgrade:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("legacy layout with %d reviews, upgraded on next sync", health.TotalEntries)}
	default:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d reviews recorded", health.TotalEntries)}
	}
}

func existingAncestor(path string) string {
	dir := filepath.Clean(path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
}

// summarizeError produces a human-readable summary for connectivity failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (server unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (server unreachable)"
	}
	return err.Error()
}
