package parser

import (
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/dshills/cistorm/internal/engine/grammar"
)

const (
	// ToEnd asks Parse to continue to the end of the document.
	ToEnd = math.MaxInt

	// DefaultLeash is the iteration limit of one parse pass.
	DefaultLeash = 100000
)

var (
	// ErrLeashExhausted is returned when a pass hits the iteration limit. The
	// index returned with it is valid; text after the stopping point is
	// attributed to the root grammar.
	ErrLeashExhausted = errors.New("parser: leash exhausted, grammar likely caught in a loop")

	// ErrNoGrammar is returned when Parse is called without a root grammar.
	ErrNoGrammar = errors.New("parser: no root grammar")
)

// Option configures a Parser.
type Option func(*Parser)

// WithLeash sets the iteration limit of one parse pass.
func WithLeash(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.leash = n
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser splits text into grammar spans. It remembers the previous index so
// a later pass can resume at the first changed row. A Parser is not safe for
// concurrent use.
type Parser struct {
	leash  int
	logger *slog.Logger
	last   *SpanIndex
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		leash:  DefaultLeash,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Leash returns the iteration limit.
func (p *Parser) Leash() int { return p.leash }

// Last returns the most recent index, or nil.
func (p *Parser) Last() *SpanIndex { return p.last }

// Reset forgets the previous index so the next pass starts at row 0.
func (p *Parser) Reset() { p.last = nil }

// Parse parses text with root until row toRow has begun, or to the end when
// toRow is ToEnd. Rows before fromRow are taken from the previous index when
// its grammar stack can be resumed there; otherwise parsing restarts at row 0.
// Rows before fromRow must be unchanged since the previous pass.
//
// On ErrLeashExhausted the returned index is still complete and usable.
func (p *Parser) Parse(text string, root *grammar.Grammar, fromRow, toRow int) (*SpanIndex, error) {
	if root == nil {
		return nil, ErrNoGrammar
	}
	b := &builder{text: text, logger: p.logger}
	if row := p.resumeRow(text, root, fromRow); row > 0 {
		b.resume(p.last, row)
	} else {
		b.start(root)
	}

	err := b.run(toRow, p.leash)
	if errors.Is(err, ErrLeashExhausted) {
		p.logger.Warn("parse stopped at leash",
			"grammar", root.Name, "leash", p.leash, "offset", b.cursor)
	}
	p.last = b.finish(root)
	return p.last, err
}

// resumeRow returns the latest row at or before fromRow where the previous
// pass can be resumed, or 0.
func (p *Parser) resumeRow(text string, root *grammar.Grammar, fromRow int) int {
	prev := p.last
	if prev == nil || prev.root != root || fromRow <= 0 || len(prev.rows) == 0 {
		return 0
	}
	row := min(fromRow, len(prev.rows)-1)
	for row > 0 && prev.stacks[row] == nil {
		row--
	}
	if row == 0 {
		return 0
	}
	start := prev.rowStarts[row]
	if start > len(text) || text[start-1] != '\n' {
		return 0
	}
	return row
}

type builder struct {
	text   string
	logger *slog.Logger

	stack    []*grammar.Grammar
	cursor   int
	rowStart int

	spans     []Span
	rows      [][]Span
	rowStarts []int
	stacks    [][]*grammar.Grammar

	complete  bool
	exhausted bool
}

func (b *builder) start(root *grammar.Grammar) {
	b.stack = []*grammar.Grammar{root}
	b.newRow(0, root, b.snapshot())
}

// resume copies rows before row from prev and restores the grammar stack
// recorded when row began.
func (b *builder) resume(prev *SpanIndex, row int) {
	start := prev.rowStarts[row]
	cut := sort.Search(len(prev.spans), func(i int) bool { return prev.spans[i].Begin >= start })
	b.spans = append([]Span(nil), prev.spans[:cut]...)
	b.rows = append([][]Span(nil), prev.rows[:row]...)
	b.rowStarts = append([]int(nil), prev.rowStarts[:row]...)
	b.stacks = append([][]*grammar.Grammar(nil), prev.stacks[:row]...)

	b.stack = append([]*grammar.Grammar(nil), prev.stacks[row]...)
	b.cursor = start
	b.newRow(start, b.top(), b.snapshot())
}

func (b *builder) top() *grammar.Grammar {
	return b.stack[len(b.stack)-1]
}

func (b *builder) snapshot() []*grammar.Grammar {
	return append([]*grammar.Grammar(nil), b.stack...)
}

func (b *builder) run(toRow, leash int) error {
	for len(b.stack) > 0 {
		if toRow != ToEnd && len(b.rows) > toRow {
			return nil
		}
		if leash == 0 {
			b.exhaust()
			return ErrLeashExhausted
		}
		leash--

		top := b.top()
		m, ok := top.Find(b.text[b.cursor:])
		if !ok {
			b.stack = b.stack[:len(b.stack)-1]
			if len(b.stack) == 0 {
				break
			}
			b.logger.Debug("unterminated region", "grammar", top.Name, "offset", b.cursor)
			b.open(b.top(), b.cursor)
			continue
		}

		start, end := b.cursor+m.Start, b.cursor+m.End
		switch m.Kind {
		case grammar.MatchEscape:
			b.rowsWithin(start, end, top)
		case grammar.MatchEnd:
			if len(b.stack) > 1 {
				b.stack = b.stack[:len(b.stack)-1]
			}
			b.rowsWithin(start, end, top)
			b.open(b.top(), end)
		case grammar.MatchChild:
			b.stack = append(b.stack, m.Child)
			b.open(m.Child, start)
			b.rowsWithin(start, end, m.Child)
		case grammar.MatchNewline:
			b.newRow(end, top, b.snapshot())
		}
		b.cursor = end
	}
	b.complete = true
	return nil
}

// rowsWithin starts a row after each newline in text[start:end], attributed
// to g. A row starting exactly at end records the current stack, since
// scanning continues from there.
func (b *builder) rowsWithin(start, end int, g *grammar.Grammar) {
	for i := start; i < end; i++ {
		if b.text[i] != '\n' {
			continue
		}
		var snap []*grammar.Grammar
		if i+1 == end {
			snap = b.snapshot()
		}
		b.newRow(i+1, g, snap)
	}
}

func (b *builder) newRow(start int, g *grammar.Grammar, snap []*grammar.Grammar) {
	b.rowStart = start
	b.rows = append(b.rows, nil)
	b.rowStarts = append(b.rowStarts, start)
	b.stacks = append(b.stacks, snap)
	b.open(g, start)
}

// open begins a span of g at begin. A span starting where the previous one
// started replaces it.
func (b *builder) open(g *grammar.Grammar, begin int) {
	s := Span{Grammar: g, Begin: begin, Col: begin - b.rowStart}
	row := len(b.rows) - 1
	if n := len(b.spans); n > 0 && b.spans[n-1].Begin == begin {
		if m := len(b.rows[row]); m > 0 && b.rows[row][m-1].Begin == begin {
			b.spans[n-1] = s
			b.rows[row][m-1] = s
			return
		}
	}
	b.spans = append(b.spans, s)
	b.rows[row] = append(b.rows[row], s)
}

// exhaust attributes the rest of the text to the root grammar.
func (b *builder) exhaust() {
	root := b.stack[0]
	b.stack = b.stack[:1]
	b.open(root, b.cursor)
	rest := b.text[b.cursor:]
	for i := strings.IndexByte(rest, '\n'); i >= 0; i = strings.IndexByte(rest, '\n') {
		b.cursor += i + 1
		rest = rest[i+1:]
		b.newRow(b.cursor, root, nil)
	}
	b.cursor = len(b.text)
	b.complete = true
	b.exhausted = true
}

func (b *builder) finish(root *grammar.Grammar) *SpanIndex {
	b.spans = append(b.spans, sentinel)
	return &SpanIndex{
		spans:     b.spans,
		rows:      b.rows,
		rowStarts: b.rowStarts,
		stacks:    b.stacks,
		root:      root,
		complete:  b.complete,
		exhausted: b.exhausted,
	}
}
