package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level  string
	Format string
	// Extra receives a copy of every record, e.g. a LogstashWriter.
	Extra io.Writer
}

// New builds the process logger. JSON is the default format; "text" is meant
// for local development.
func New(cfg Config) *slog.Logger {
	var out io.Writer = os.Stderr
	if cfg.Extra != nil {
		out = io.MultiWriter(os.Stderr, cfg.Extra)
	}
	return newWithWriter(out, cfg)
}

func newWithWriter(out io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler).With(slog.String("service", "moptabi-api"))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
