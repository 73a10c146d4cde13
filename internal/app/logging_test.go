package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), "ParseLogLevel(%q)", tt.input)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := NewLogger(LoggerConfig{Level: "warn", Output: &buf})
	defer closer.Close()

	logger = WithComponent(logger, "test")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"component":"test"`)
	assert.Contains(t, out, `"key":"value"`)
}

func TestNewLoggerDiscardsWithoutPath(t *testing.T) {
	logger, closer := NewLogger(LoggerConfig{Level: "debug"})
	defer closer.Close()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cistorm.log")
	logger, closer := NewLogger(LoggerConfig{Level: "info", Path: path, MaxSizeMB: 1})
	logger.Info("written")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
