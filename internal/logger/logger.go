// Package logger configures the global slog logger.
package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/snikjou/usagemig/internal/constants"

	"github.com/lmittmann/tint"
)

// Initialize sets up the global slog logger based on the environment.
// Production logs JSON to stderr; the CLI gets a tinted human-readable
// handler so log lines stay distinguishable from the migration output on
// stdout.
func Initialize(env constants.Environment, level slog.Level) *slog.Logger {
	var handler slog.Handler

	if env == constants.Production {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "env", env, "level", level)

	return logger
}

// WithRun derives a logger carrying the identity of one migration run.
// Every log line below the command layer goes through a run logger.
func WithRun(base *slog.Logger, runID, direction string) *slog.Logger {
	return base.With("run", runID, "direction", direction)
}
