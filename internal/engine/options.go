package engine

import (
	"log/slog"

	"github.com/dshills/cistorm/internal/engine/buffer"
	"github.com/dshills/cistorm/internal/engine/grammar"
	"github.com/dshills/cistorm/internal/engine/profile"
)

// Option configures a Document during creation.
type Option func(*Document)

// WithContent sets the initial content of the document.
func WithContent(content string) Option {
	return func(d *Document) {
		d.initContent = content
	}
}

// WithBufferOptions passes options to the text buffer.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(d *Document) {
		d.bufOpts = append(d.bufOpts, opts...)
	}
}

// WithRegistry sets the grammar registry. Without it the embedded default
// grammars are used.
func WithRegistry(r *grammar.Registry) Option {
	return func(d *Document) {
		d.registry = r
	}
}

// WithLeash sets the iteration limit of one parse pass.
func WithLeash(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.leash = n
		}
	}
}

// WithStripTrailingWhitespace strips trailing whitespace when saving.
func WithStripTrailingWhitespace(enabled bool) Option {
	return func(d *Document) {
		d.stripTrailing = enabled
	}
}

// WithProfile sets the statistics the document records into.
func WithProfile(p *profile.Stats) Option {
	return func(d *Document) {
		d.profile = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}
