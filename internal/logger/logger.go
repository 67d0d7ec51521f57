package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel converts a LOG_LEVEL value to slog.Level, matching is case insensitive
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "warning":
		return slog.LevelWarn, nil
	case "debug", "info", "warn", "error":
		if err := l.UnmarshalText([]byte(level)); err != nil {
			return slog.LevelInfo, err
		}
		return l, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (expects debug, info, warn or error)", level)
	}
}

// InitLogger creates a logger writing to w with the specified log level.
// Uses colourized text for the dev environment otherwise output is JSON.
//
// Command output is written to stdout so w is normally os.Stderr.
func InitLogger(w io.Writer, logLevel slog.Level, environment string) *slog.Logger {
	if environment == "dev" {
		return slog.New(
			tint.NewHandler(w, &tint.Options{
				Level:      logLevel,
				TimeFormat: time.Kitchen,
			}),
		)
	}

	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: logLevel,
		}))
}
