package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLogLevel selects debug logging when set to "debug".
const EnvLogLevel = "IMAGE_MAKER_LOG_LEVEL"

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel resolves the level from --verbose and the environment.
func logLevel(verbose bool, env string) log.Level {
	if verbose || strings.EqualFold(strings.TrimSpace(env), "debug") {
		return log.DebugLevel
	}
	return log.InfoLevel
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger stored by withLogger, or the
// package default logger when none was attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
