package cli

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger writing to w. quiet keeps only errors;
// otherwise each -v lowers the level one step from warn.
func NewLogger(w io.Writer, verbose int, quiet bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: LogLevel(verbose, quiet)}))
}

// LogLevel maps the -v count and -q flag to a slog level.
func LogLevel(verbose int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose >= 2:
		return slog.LevelDebug
	case verbose == 1:
		return slog.LevelInfo
	}
	return slog.LevelWarn
}
