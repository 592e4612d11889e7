package diag

import (
	"context"
	"log/slog"
)

// Logger wraps an optional slog.Logger. The zero value discards everything,
// so components can embed it without nil checks at every call site.
type Logger struct {
	L *slog.Logger
}

// Log emits msg at level when a logger is configured.
func (l Logger) Log(level slog.Level, msg string, attrs ...slog.Attr) {
	if l.L == nil {
		return
	}
	l.L.LogAttrs(context.Background(), level, msg, attrs...)
}

// With returns a Logger tagged with a component name.
func (l Logger) With(component string) Logger {
	if l.L == nil {
		return l
	}
	return Logger{L: l.L.With(slog.String("component", component))}
}
