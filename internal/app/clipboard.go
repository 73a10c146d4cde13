package app

import (
	"log/slog"

	"github.com/atotto/clipboard"
)

// SystemClipboard connects the buffer clipboard to the desktop clipboard.
type SystemClipboard struct {
	logger *slog.Logger
}

// NewSystemClipboard returns the desktop clipboard, or nil when the platform
// has none (no xclip, xsel or wl-clipboard on Linux).
func NewSystemClipboard(logger *slog.Logger) *SystemClipboard {
	if clipboard.Unsupported {
		return nil
	}
	return &SystemClipboard{logger: WithComponent(logger, "clipboard")}
}

// Copy writes text to the desktop clipboard.
func (c *SystemClipboard) Copy(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		c.logger.Warn("copy failed", "error", err)
	}
}

// Paste reads the desktop clipboard.
func (c *SystemClipboard) Paste() (string, bool) {
	text, err := clipboard.ReadAll()
	if err != nil {
		c.logger.Warn("paste failed", "error", err)
		return "", false
	}
	return text, text != ""
}
