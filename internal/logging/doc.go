// Package logging assembles structured slog loggers and formatting helpers used
// across reviewsync.
//
// It owns the console and JSON handlers, mirrors every invocation into its own
// JSON log file, and exposes context-aware helpers so the sync driver can tag
// each line with the run ID, phase, and comment ID it concerns. Warnings go
// through WarnWithContext so they always carry an event type, a hint, and the
// operator-facing impact. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging
