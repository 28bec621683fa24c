package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	JSON = "json"
	Text = "text"
)

// Logger wraps slog.Logger so call sites get structured key-value logging
// plus the few extras slog does not ship (Fatal, per-component scoping).
type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case Text:
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	l := slog.New(handler)
	if cfg.Service != "" {
		l = l.With("service", cfg.Service)
	}
	return &Logger{l}
}

// NewDefault returns an info-level JSON logger for the given service.
func NewDefault(service string) *Logger {
	return New(Config{Level: "info", Format: JSON, Service: service})
}

// WithComponent returns a child logger tagged with a component name,
// e.g. "coordinator" or "sweeper".
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.Logger.With("component", name)}
}

// Fatal logs at error level and exits. Reserved for startup failures.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
