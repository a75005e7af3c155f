package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/corebank-ledger/internal/config"
)

// NewLogger builds the JSON slog logger shared by the API gateway and the
// transaction worker. Source locations are attached only at debug level to
// keep production log lines lean.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))

	logger.Info("logger initialized", "level", level)

	return logger
}

// parseLevel maps the configured level name onto a slog level, defaulting to
// info for unknown values.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
