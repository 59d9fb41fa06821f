// Package daemon owns the lifecycle around sync runs: the flock-based run lock
// that keeps two reviewsync processes from syncing at once, and the cron
// scheduler behind `reviewsync watch`.
//
// Both the one-shot `sync` command and the watch loop go through RunOnce, so
// a manual sync never overlaps a scheduled one.
package daemon
