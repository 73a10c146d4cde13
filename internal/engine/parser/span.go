package parser

import (
	"math"
	"sort"

	"github.com/dshills/cistorm/internal/engine/grammar"
)

// Span marks the start of a run of text under one grammar. The run ends
// where the next span begins.
type Span struct {
	Grammar *grammar.Grammar
	// Begin is the byte offset from the start of the document.
	Begin int
	// Col is the byte offset from the start of the row.
	Col int
}

var sentinel = Span{Begin: math.MaxInt, Col: math.MaxInt}

// IsSentinel reports whether s is the terminator of a span sequence.
func (s Span) IsSentinel() bool {
	return s.Grammar == nil && s.Begin == math.MaxInt
}

// SpanIndex is the result of one parse pass. The flat view orders every span
// by offset and ends with a sentinel; the row view holds the spans of each
// row, each row starting at column 0. An index is never modified after it is
// returned.
type SpanIndex struct {
	spans []Span
	rows  [][]Span

	rowStarts []int
	// Grammar stack at the start of each row, or nil where the row began
	// inside a match and parsing cannot resume there.
	stacks [][]*grammar.Grammar

	root      *grammar.Grammar
	complete  bool
	exhausted bool
}

// Root returns the grammar the index was parsed with.
func (x *SpanIndex) Root() *grammar.Grammar { return x.root }

// Complete reports whether the whole document was parsed.
func (x *SpanIndex) Complete() bool { return x.complete }

// Exhausted reports whether parsing stopped at the leash.
func (x *SpanIndex) Exhausted() bool { return x.exhausted }

// RowCount returns the number of rows parsed so far.
func (x *SpanIndex) RowCount() int { return len(x.rows) }

// Spans returns the flat span sequence, including the trailing sentinel.
func (x *SpanIndex) Spans() []Span { return x.spans }

// Row returns the spans of a row, or nil if the row was not parsed.
func (x *SpanIndex) Row(row int) []Span {
	if row < 0 || row >= len(x.rows) {
		return nil
	}
	return x.rows[row]
}

// ResumeRow returns the first row whose spans may be incomplete. For a
// complete index it is RowCount.
func (x *SpanIndex) ResumeRow() int {
	if x.complete {
		return len(x.rows)
	}
	return max(len(x.rows)-1, 0)
}

// Covers reports whether row has been fully parsed.
func (x *SpanIndex) Covers(row int) bool {
	return row < x.ResumeRow()
}

// SpanAtOffset returns the span covering offset and the number of bytes from
// offset to the next span. The distance is very large for the last span.
func (x *SpanIndex) SpanAtOffset(offset int) (Span, int, bool) {
	if offset < 0 || len(x.spans) < 2 {
		return Span{}, 0, false
	}
	i := sort.Search(len(x.spans), func(i int) bool { return x.spans[i].Begin > offset }) - 1
	if i < 0 || i >= len(x.spans)-1 {
		return Span{}, 0, false
	}
	return x.spans[i], x.spans[i+1].Begin - offset, true
}

// SpanAtRowCol returns the span covering col on row and the number of bytes
// from col to the next span on that row.
func (x *SpanIndex) SpanAtRowCol(row, col int) (Span, int, bool) {
	spans := x.Row(row)
	if len(spans) == 0 || col < 0 {
		return Span{}, 0, false
	}
	i := sort.Search(len(spans), func(i int) bool { return spans[i].Col > col }) - 1
	if i < 0 {
		return Span{}, 0, false
	}
	next := sentinel.Col
	if i+1 < len(spans) {
		next = spans[i+1].Col
	}
	return spans[i], next - col, true
}
