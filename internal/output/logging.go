package output

import (
	"io"
	"log/slog"
	"math"
)

// LogLevel maps the CLI verbosity flags to a slog level.
// Priority: quiet > debug > verbose > default (warn).
// Quiet disables all output by using a level no record reaches.
func LogLevel(quiet, verbose, debug bool) slog.Level {
	switch {
	case quiet:
		return slog.Level(math.MaxInt)
	case debug:
		return slog.LevelDebug
	case verbose:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// SetupLogger creates a text slog.Logger configured for the given verbosity.
// Output is written to w (typically os.Stderr).
func SetupLogger(quiet, verbose, debug bool, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LogLevel(quiet, verbose, debug),
	}))
}

// SetupJSONLogger is SetupLogger with a JSON handler, used by the long
// running servers whose logs are usually collected.
func SetupJSONLogger(quiet, verbose, debug bool, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: LogLevel(quiet, verbose, debug),
	}))
}
