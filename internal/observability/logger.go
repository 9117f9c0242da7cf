package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/uscrn-etl/internal/config"
	"github.com/lmittmann/tint"
)

// NewLogger builds the service logger from LOG_LEVEL and LOG_FORMAT.
// "text" selects a colorized console handler; anything else logs JSON.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)
	var h slog.Handler
	if format == "text" {
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(h).With("service", "uscrn-etl")
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
