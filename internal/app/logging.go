package app

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum level written: debug, info, warn or error.
	Level string

	// Path is the log file. When empty and Output is nil, logging is
	// discarded; a terminal editor cannot write to its own screen.
	Path string

	// MaxSizeMB, MaxBackups and MaxAgeDays control rotation of Path.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Output, when set, receives log records instead of Path.
	Output io.Writer
}

// ParseLogLevel parses a level name. Unknown names give info.
func ParseLogLevel(s string) slog.Level {
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

// NewLogger creates a JSON logger for cfg. The returned closer releases the
// log file and must be called on exit.
func NewLogger(cfg LoggerConfig) (*slog.Logger, io.Closer) {
	w := cfg.Output
	var closer io.Closer = nopCloser{}
	if w == nil {
		if cfg.Path == "" {
			return slog.New(slog.DiscardHandler), closer
		}
		rotating := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		w, closer = rotating, rotating
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(cfg.Level),
	})
	return slog.New(handler), closer
}

// WithComponent returns a logger tagged with the component field.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
