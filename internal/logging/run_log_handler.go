package logging

import (
	"context"
	"log/slog"
)

// runLogHandler sends each record to the console at the configured level and
// to the invocation's run log file, which records debug lines as well so the
// per-review trail of a run is always on disk.
type runLogHandler struct {
	console slog.Handler
	file    slog.Handler
}

func newRunLogHandler(console, file slog.Handler) slog.Handler {
	switch {
	case file == nil:
		return console
	case console == nil:
		return file
	}
	return &runLogHandler{console: console, file: file}
}

func (h *runLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *runLogHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	if h.console.Enabled(ctx, record.Level) {
		firstErr = h.console.Handle(ctx, record.Clone())
	}
	if h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *runLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runLogHandler{console: h.console.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *runLogHandler) WithGroup(name string) slog.Handler {
	return &runLogHandler{console: h.console.WithGroup(name), file: h.file.WithGroup(name)}
}
