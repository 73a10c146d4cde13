package buffer

import "log/slog"

// Option is a functional option for configuring a TextBuffer.
type Option func(*TextBuffer)

// WithTabSize sets the tab stop width used when loading text.
func WithTabSize(size int) Option {
	return func(b *TextBuffer) {
		if size > 0 {
			b.codec.TabSize = size
		}
	}
}

// WithTabsToSpaces controls whether tabs are expanded when loading text.
func WithTabsToSpaces(expand bool) Option {
	return func(b *TextBuffer) {
		b.codec.ExpandTabs = expand
	}
}

// WithIndentWidth sets the number of spaces used by indent, unindent and
// auto-indent.
func WithIndentWidth(width int) Option {
	return func(b *TextBuffer) {
		if width > 0 {
			b.indentWidth = width
		}
	}
}

// WithAutoIndent enables copying indentation on carriage return.
func WithAutoIndent(enabled bool) Option {
	return func(b *TextBuffer) {
		b.autoIndent = enabled
	}
}

// WithViewSize sets the visible window used for scroll calculations.
func WithViewSize(rows, cols int) Option {
	return func(b *TextBuffer) {
		b.SetViewSize(rows, cols)
	}
}

// WithClipboard connects the buffer to a system clipboard.
func WithClipboard(c Clipboard) Option {
	return func(b *TextBuffer) {
		b.clipboard = c
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *TextBuffer) {
		if logger != nil {
			b.logger = logger
		}
	}
}
