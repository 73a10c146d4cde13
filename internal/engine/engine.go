package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/dshills/cistorm/internal/engine/buffer"
	"github.com/dshills/cistorm/internal/engine/grammar"
	"github.com/dshills/cistorm/internal/engine/parser"
	"github.com/dshills/cistorm/internal/engine/profile"
)

// Re-export commonly used types for convenience.
type (
	// Position is a row and byte column in a document.
	Position = buffer.Position

	// SelectionMode is the kind of the active selection.
	SelectionMode = buffer.SelectionMode

	// Span marks the start of a run of text under one grammar.
	Span = parser.Span

	// SpanIndex is the result of one parse pass.
	SpanIndex = parser.SpanIndex
)

// ToEnd asks SpanIndex to parse the whole document.
const ToEnd = parser.ToEnd

// Profile keys recorded by a Document.
const (
	ProfileParse     = "parse"
	ProfileParseMax  = "parse.max"
	ProfileParseRows = "parse.rows"
	ProfileFileSize  = "file.size"
)

// Status messages shown to the user.
const (
	MsgNewFile     = "Creating new file"
	MsgSaved       = "File saved"
	MsgReadError   = "Error reading file"
	MsgWriteError  = "Error writing file. The file did not save properly."
	MsgFileChanged = "File changed on disk"
	MsgParseLoop   = "Syntax highlighting stopped early, grammar may loop"
)

const defaultFileMode fs.FileMode = 0o644

// Document is one open file: its text buffer and change log, the grammar
// chosen for it and the parser that produces its span index.
//
// A Document is not safe for concurrent use. It is owned by the goroutine
// that runs the editor loop.
type Document struct {
	id   uuid.UUID
	path string
	stat os.FileInfo

	buf      *buffer.TextBuffer
	registry *grammar.Registry
	root     *grammar.Grammar
	parser   *parser.Parser
	index    *parser.SpanIndex

	// Configuration
	bufOpts       []buffer.Option
	leash         int
	stripTrailing bool
	initContent   string

	profile *profile.Stats
	logger  *slog.Logger
}

// New creates an empty document using the fallback grammar.
func New(opts ...Option) (*Document, error) {
	d := &Document{
		id:     uuid.New(),
		leash:  parser.DefaultLeash,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "document", "doc", d.id.String())

	if d.registry == nil {
		r, err := grammar.DefaultRegistry(grammar.WithLogger(d.logger))
		if err != nil {
			return nil, fmt.Errorf("load default grammars: %w", err)
		}
		d.registry = r
	}
	if d.profile == nil {
		d.profile = profile.New()
	}

	d.buf = buffer.New(append(d.bufOpts, buffer.WithLogger(d.logger))...)
	if d.initContent != "" {
		d.buf.Reset(d.buf.Decode([]byte(d.initContent)))
	}
	d.root = d.registry.Fallback()
	d.parser = parser.New(parser.WithLeash(d.leash), parser.WithLogger(d.logger))
	return d, nil
}

// NewFromReader creates a document holding the contents of r.
func NewFromReader(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	d.buf.Reset(d.buf.Decode(data))
	return d, nil
}

// ID returns the session identifier of the document.
func (d *Document) ID() uuid.UUID { return d.id }

// Path returns the file path, or "" for an unnamed document.
func (d *Document) Path() string { return d.path }

// Buffer returns the text buffer. Edit operations are called on it directly.
func (d *Document) Buffer() *buffer.TextBuffer { return d.buf }

// Registry returns the grammar registry.
func (d *Document) Registry() *grammar.Registry { return d.registry }

// Profile returns the statistics recorded by the document.
func (d *Document) Profile() *profile.Stats { return d.profile }

// Grammar returns the root grammar.
func (d *Document) Grammar() *grammar.Grammar { return d.root }

// Message returns the latest status message.
func (d *Document) Message() string { return d.buf.Message() }

// SetMessage sets the status message.
func (d *Document) SetMessage(msg string) { d.buf.SetMessage(msg) }

// IsDirty reports whether the document has unsaved changes.
func (d *Document) IsDirty() bool { return d.buf.IsDirty() }

// SetGrammar selects the root grammar by name and discards the span index.
func (d *Document) SetGrammar(name string) error {
	g, ok := d.registry.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", grammar.ErrUnknownGrammar, name)
	}
	d.setRoot(g)
	return nil
}

func (d *Document) setRoot(g *grammar.Grammar) {
	d.root = g
	d.parser.Reset()
	d.index = nil
}

// Load reads path into the document and picks a grammar by extension. A
// missing file gives an empty document that will be created on save. On a
// read error the document is left unchanged.
func (d *Document) Load(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data, d.stat = nil, nil
	case err != nil:
		d.buf.SetMessage(MsgReadError)
		d.logger.Error("read failed", "path", path, "error", err)
		return fmt.Errorf("load %s: %w", path, err)
	default:
		if d.stat, err = os.Stat(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	d.path = path
	d.buf.Reset(d.buf.Decode(data))
	d.setRoot(d.registry.ForPath(path))
	d.profile.Current(ProfileFileSize, float64(len(data)))
	if d.stat == nil {
		d.buf.SetMessage(MsgNewFile)
	} else {
		d.buf.SetMessage("")
	}
	d.logger.Info("loaded",
		"path", path,
		"size", humanize.Bytes(uint64(len(data))),
		"lines", d.buf.LineCount(),
		"grammar", d.root.Name)
	return nil
}

// IsSafeToWrite reports whether the file on disk is still the one that was
// loaded or last saved.
func (d *Document) IsSafeToWrite() bool {
	if d.path == "" {
		return true
	}
	info, err := os.Stat(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	if err != nil || d.stat == nil {
		return false
	}
	return os.SameFile(info, d.stat) &&
		info.Mode() == d.stat.Mode() &&
		info.Size() == d.stat.Size() &&
		info.ModTime().Equal(d.stat.ModTime())
}

// Save writes the document unless the file changed on disk since it was
// loaded, in which case it returns ErrFileChanged.
func (d *Document) Save() error {
	if !d.IsSafeToWrite() {
		d.buf.SetMessage(MsgFileChanged)
		return ErrFileChanged
	}
	return d.SaveForce()
}

// SaveForce writes the document to its path. When trailing whitespace
// stripping is enabled the buffer is stripped only after the write succeeds.
// On failure neither the buffer nor its history changes.
func (d *Document) SaveForce() error {
	if d.path == "" {
		return ErrNoPath
	}
	lines := d.buf.Lines()
	if d.stripTrailing {
		lines = buffer.TrimTrailingWhitespace(lines)
	}
	mode := defaultFileMode
	if d.stat != nil {
		mode = d.stat.Mode().Perm()
	}

	data := buffer.Serialize(lines)
	if err := os.WriteFile(d.path, data, mode); err != nil {
		d.buf.SetMessage(MsgWriteError)
		d.logger.Error("write failed", "path", d.path, "error", err)
		return fmt.Errorf("save %s: %w", d.path, err)
	}

	if d.stripTrailing && len(d.buf.TrailingWhitespaceRows()) > 0 {
		d.buf.StripTrailingWhitespace()
	}
	d.buf.MarkSaved()
	stat, err := os.Stat(d.path)
	if err != nil {
		d.logger.Warn("stat after save failed", "path", d.path, "error", err)
	}
	d.stat = stat
	d.profile.Current(ProfileFileSize, float64(len(data)))
	d.buf.SetMessage(MsgSaved)
	d.logger.Info("saved", "path", d.path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}

// SpanIndex returns a span index in which rows 0 through toRow are fully
// parsed. Parsing is lazy: nothing is parsed while the index already covers
// toRow and the buffer has not changed, and after an edit parsing resumes at
// the first changed row.
//
// On parser.ErrLeashExhausted the returned index is still usable.
func (d *Document) SpanIndex(toRow int) (*parser.SpanIndex, error) {
	changed := d.buf.ChangedRow()
	if d.index != nil && changed == buffer.NoChange &&
		(d.index.Complete() || d.index.Covers(toRow)) {
		return d.index, nil
	}

	from := 0
	if d.index != nil {
		from = min(changed, d.index.ResumeRow())
	}
	limit := ToEnd
	if toRow < ToEnd-1 {
		limit = toRow + 1
	}

	start := d.profile.Start()
	idx, err := d.parser.Parse(strings.Join(d.buf.Lines(), "\n"), d.root, from, limit)
	d.profile.RunningDelta(ProfileParse, start)
	d.profile.HighestDelta(ProfileParseMax, start)
	if err != nil && !errors.Is(err, parser.ErrLeashExhausted) {
		return nil, err
	}
	d.profile.Current(ProfileParseRows, float64(idx.RowCount()))
	d.buf.ClearChanged()
	d.index = idx
	if err != nil {
		d.buf.SetMessage(MsgParseLoop)
	}
	return idx, err
}

// CursorGrammar returns the grammar under the cursor and the number of
// bytes until the next span on the cursor row.
func (d *Document) CursorGrammar() (*grammar.Grammar, int) {
	c := d.buf.Cursor()
	idx, _ := d.SpanIndex(c.Row)
	if idx == nil {
		return d.root, 0
	}
	s, remaining, ok := idx.SpanAtRowCol(c.Row, c.Col)
	if !ok {
		return d.root, 0
	}
	return s.Grammar, remaining
}

// CursorGrammarName returns the name of the grammar under the cursor.
func (d *Document) CursorGrammarName() string {
	g, _ := d.CursorGrammar()
	return g.Name
}

// CursorGrammarRemaining returns the number of bytes from the cursor to the
// next span on its row.
func (d *Document) CursorGrammarRemaining() int {
	_, n := d.CursorGrammar()
	return n
}
