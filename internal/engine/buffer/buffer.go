package buffer

import (
	"log/slog"
	"math"
	"regexp"

	"github.com/dshills/cistorm/internal/engine/history"
)

// NoChange is returned by ChangedRow when no content changed since the last
// call to ClearChanged.
const NoChange = math.MaxInt

const (
	defaultViewRows    = 24
	defaultViewCols    = 80
	defaultIndentWidth = 2
)

// TextBuffer is a document held as lines plus cursor, marker, selection and
// scroll state. All mutation goes through the change log.
type TextBuffer struct {
	lines []string

	cursorRow, cursorCol int
	goalCol              int
	markerRow, markerCol int
	markerEndRow         int
	markerEndCol         int
	selectionMode        SelectionMode
	scrollRow, scrollCol int

	log        *history.Log
	changedRow int

	viewRows, viewCols int
	indentWidth        int
	autoIndent         bool
	codec              CodecOptions

	clipboard Clipboard
	clips     [][]string

	findRe *regexp.Regexp

	message string
	logger  *slog.Logger
}

// New creates a buffer holding a single empty line.
func New(opts ...Option) *TextBuffer {
	b := &TextBuffer{
		lines:       []string{""},
		log:         history.NewLog(),
		changedRow:  0,
		viewRows:    defaultViewRows,
		viewCols:    defaultViewCols,
		indentWidth: defaultIndentWidth,
		autoIndent:  true,
		codec:       DefaultCodecOptions(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewFromString creates a buffer from text, decoded with the buffer's codec
// options.
func NewFromString(text string, opts ...Option) *TextBuffer {
	b := New(opts...)
	b.Reset(Deserialize([]byte(text), b.codec))
	return b
}

// Reset replaces the content, clears the history and marks the new content as
// saved. Positional state returns to the origin. The buffer keeps its own
// copy of lines.
func (b *TextBuffer) Reset(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	b.lines = append([]string(nil), lines...)
	b.cursorRow, b.cursorCol, b.goalCol = 0, 0, 0
	b.markerRow, b.markerCol = 0, 0
	b.markerEndRow, b.markerEndCol = 0, 0
	b.selectionMode = SelectionNone
	b.scrollRow, b.scrollCol = 0, 0
	b.log = history.NewLog()
	b.changedRow = 0
}

// Decode converts stored bytes to lines using the buffer's codec options.
func (b *TextBuffer) Decode(data []byte) []string {
	return Deserialize(data, b.codec)
}

// Lines returns the document lines. The slice must not be modified.
func (b *TextBuffer) Lines() []string {
	return b.lines
}

// Line returns the text of row, or "" when row is out of range.
func (b *TextBuffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return b.lines[row]
}

// LineCount returns the number of lines. It is never less than one.
func (b *TextBuffer) LineCount() int {
	return len(b.lines)
}

// Text returns the serialized document.
func (b *TextBuffer) Text() string {
	return string(Serialize(b.lines))
}

// Cursor returns the cursor position.
func (b *TextBuffer) Cursor() Position {
	return Position{Row: b.cursorRow, Col: b.cursorCol}
}

// GoalCol returns the column vertical movement tries to keep.
func (b *TextBuffer) GoalCol() int {
	return b.goalCol
}

// Marker returns the selection anchor.
func (b *TextBuffer) Marker() Position {
	return Position{Row: b.markerRow, Col: b.markerCol}
}

// SelectionMode returns the active selection mode.
func (b *TextBuffer) SelectionMode() SelectionMode {
	return b.selectionMode
}

// Scroll returns the first visible row and column.
func (b *TextBuffer) Scroll() Position {
	return Position{Row: b.scrollRow, Col: b.scrollCol}
}

// SetViewSize sets the size of the visible window.
func (b *TextBuffer) SetViewSize(rows, cols int) {
	if rows > 0 {
		b.viewRows = rows
	}
	if cols > 0 {
		b.viewCols = cols
	}
}

// ViewSize returns the size of the visible window.
func (b *TextBuffer) ViewSize() (rows, cols int) {
	return b.viewRows, b.viewCols
}

// Log returns the change log.
func (b *TextBuffer) Log() *history.Log {
	return b.log
}

// IsDirty reports whether the buffer has unsaved changes.
func (b *TextBuffer) IsDirty() bool {
	return b.log.IsDirty()
}

// MarkSaved records the current state as saved.
func (b *TextBuffer) MarkSaved() {
	b.log.MarkSaved()
}

// Message returns the latest user-facing status message.
func (b *TextBuffer) Message() string {
	return b.message
}

// SetMessage sets the user-facing status message.
func (b *TextBuffer) SetMessage(msg string) {
	b.message = msg
}

// ChangedRow returns the earliest row whose content changed since the last
// ClearChanged, or NoChange.
func (b *TextBuffer) ChangedRow() int {
	return b.changedRow
}

// ClearChanged forgets the recorded content changes.
func (b *TextBuffer) ClearChanged() {
	b.changedRow = NoChange
}

// Undo reverts the most recent edit together with the moves recorded after
// it.
func (b *TextBuffer) Undo() {
	for b.log.Undo(b) {
	}
}

// Redo replays the next edit and the moves recorded after it.
func (b *TextBuffer) Redo() {
	b.log.Redo(b)
}

// record appends c to the log and applies it.
func (b *TextBuffer) record(c history.Change) {
	b.log.Append(b, c)
	b.log.Redo(b)
}

func (b *TextBuffer) touch(row int) {
	if row < b.changedRow {
		b.changedRow = max(row, 0)
	}
}

// text returns the lines spanning [start, end).
func (b *TextBuffer) text(start, end Position) []string {
	if start.Row == end.Row {
		line := b.lines[start.Row]
		return []string{line[clamp(start.Col, 0, len(line)):clamp(end.Col, 0, len(line))]}
	}
	out := make([]string, 0, end.Row-start.Row+1)
	first := b.lines[start.Row]
	out = append(out, first[clamp(start.Col, 0, len(first)):])
	out = append(out, b.lines[start.Row+1:end.Row]...)
	if end.Row < len(b.lines) {
		last := b.lines[end.Row]
		out = append(out, last[:clamp(end.Col, 0, len(last))])
	} else {
		out = append(out, "")
	}
	return out
}

// removeText deletes [start, end) from the lines.
func (b *TextBuffer) removeText(start, end Position) {
	first := b.lines[start.Row]
	head := first[:clamp(start.Col, 0, len(first))]
	tail := ""
	if end.Row < len(b.lines) {
		last := b.lines[end.Row]
		tail = last[clamp(end.Col, 0, len(last)):]
	}
	b.lines[start.Row] = head + tail
	if end.Row > start.Row {
		stop := min(end.Row+1, len(b.lines))
		b.lines = append(b.lines[:start.Row+1], b.lines[stop:]...)
	}
}

// insertText inserts text lines at pos.
func (b *TextBuffer) insertText(pos Position, text []string) {
	if len(text) == 0 {
		return
	}
	line := b.lines[pos.Row]
	col := clamp(pos.Col, 0, len(line))
	if len(text) == 1 {
		b.lines[pos.Row] = line[:col] + text[0] + line[col:]
		return
	}
	added := make([]string, 0, len(text)-1)
	added = append(added, text[1:len(text)-1]...)
	added = append(added, text[len(text)-1]+line[col:])
	b.lines[pos.Row] = line[:col] + text[0]
	b.lines = insertLines(b.lines, pos.Row+1, added)
}

// endOf returns the position just past text inserted at pos.
func endOf(pos Position, text []string) Position {
	if len(text) <= 1 {
		if len(text) == 0 {
			return pos
		}
		return Position{Row: pos.Row, Col: pos.Col + len(text[0])}
	}
	return Position{Row: pos.Row + len(text) - 1, Col: len(text[len(text)-1])}
}

func insertLines(lines []string, at int, add []string) []string {
	out := make([]string, 0, len(lines)+len(add))
	out = append(out, lines[:at]...)
	out = append(out, add...)
	return append(out, lines[at:]...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
