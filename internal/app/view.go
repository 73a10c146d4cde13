package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/cistorm/internal/engine/buffer"
	"github.com/dshills/cistorm/internal/engine/grammar"
	"github.com/dshills/cistorm/internal/engine/parser"
)

var (
	words = regexp.MustCompile(`\w+`)

	statusStyle = tcell.StyleDefault.Reverse(true)
	marginStyle = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray)
)

// draw paints the visible rows, the status line and the cursor.
func (a *Application) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	rows := max(height-1, 0)
	buf := a.doc.Buffer()
	scroll := buf.Scroll()

	idx, err := a.doc.SpanIndex(scroll.Row + rows)
	if err != nil && !errors.Is(err, parser.ErrLeashExhausted) {
		a.logger.Error("parse failed", "error", err)
	}

	for y := 0; y < rows; y++ {
		row := scroll.Row + y
		if row >= buf.LineCount() {
			break
		}
		a.drawRow(y, row, idx, width)
	}

	if a.prompt != nil {
		x := a.drawText(0, height-1, width, a.prompt.label+string(a.prompt.text), statusStyle)
		a.screen.ShowCursor(min(x, width-1), height-1)
	} else {
		a.drawStatus(height-1, width)
		a.showCursor(rows, width)
	}
	a.screen.Show()
}

func (a *Application) drawRow(y, row int, idx *parser.SpanIndex, width int) {
	buf := a.doc.Buffer()
	line := buf.Line(row)
	styles := lineStyles(idx, row, line)
	selStart, selEnd, selected := selectedCols(buf, row, line)

	scrollCol := buf.Scroll().Col
	x, col := 0, scrollCol
	for col < len(line) && x < width {
		r, size := utf8.DecodeRuneInString(line[col:])
		w := runeWidth(r)
		if x+w > width {
			break
		}
		style := styles[col]
		if selected && col >= selStart && col < selEnd {
			style = style.Reverse(true)
		}
		if !unicode.IsPrint(r) {
			r = '?'
		}
		a.screen.SetContent(x, y, r, nil, style)
		x += w
		col += size
	}
	if selected && selEnd > len(line) && x < width {
		// Line selections include the line break.
		a.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Reverse(true))
	}

	if a.lineLimit > 0 {
		mx := a.lineLimit - scrollCol
		if mx >= 0 && mx < width {
			mainc, comb, style, _ := a.screen.GetContent(mx, y) //nolint:staticcheck // GetContent is the correct API
			_, bg, _ := marginStyle.Decompose()
			a.screen.SetContent(mx, y, mainc, comb, style.Background(bg))
		}
	}
}

// lineStyles returns the style of each byte of line from the spans of row.
func lineStyles(idx *parser.SpanIndex, row int, line string) []tcell.Style {
	styles := make([]tcell.Style, len(line))
	for i := range styles {
		styles[i] = tcell.StyleDefault
	}
	if idx == nil {
		return styles
	}
	spans := idx.Row(row)
	for i, s := range spans {
		if s.Grammar == nil {
			continue
		}
		start := min(s.Col, len(line))
		end := len(line)
		if i+1 < len(spans) {
			end = min(spans[i+1].Col, len(line))
		}
		if start >= end {
			continue
		}
		fill(styles[start:end], colorStyle(s.Grammar.Attributes.Color))
		if s.Grammar.Keywords() == 0 {
			continue
		}
		kw := colorStyle(s.Grammar.Attributes.KeywordsColor).Bold(true)
		for _, m := range words.FindAllStringIndex(line[start:end], -1) {
			if s.Grammar.IsKeyword(line[start+m[0] : start+m[1]]) {
				fill(styles[start+m[0]:start+m[1]], kw)
			}
		}
	}
	return styles
}

func fill(styles []tcell.Style, style tcell.Style) {
	for i := range styles {
		styles[i] = style
	}
}

func colorStyle(name string) tcell.Style {
	if name == "" {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(tcell.GetColor(name))
}

// selectedCols returns the selected byte range of row. The end exceeds the
// line length when the line break is selected.
func selectedCols(b *buffer.TextBuffer, row int, line string) (int, int, bool) {
	mode := b.SelectionMode()
	if mode == buffer.SelectionNone {
		return 0, 0, false
	}
	start, end := b.StartAndEnd()
	if row < start.Row || row > end.Row {
		return 0, 0, false
	}
	if mode == buffer.SelectionBlock {
		return start.Col, end.Col, true
	}
	from, to := 0, len(line)+1
	if row == start.Row {
		from = start.Col
	}
	if row == end.Row {
		to = end.Col
	}
	return from, to, from < to
}

func (a *Application) drawStatus(y, width int) {
	buf := a.doc.Buffer()
	name := a.doc.Path()
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	if a.doc.IsDirty() {
		name += " *"
	}

	size := 0
	for _, line := range buf.Lines() {
		size += len(line) + 1
	}
	c := buf.Cursor()
	right := fmt.Sprintf(" %s  %s  %d,%d ", grammarName(a.doc.Grammar()),
		humanize.Bytes(uint64(max(size-1, 0))), c.Row+1, c.Col+1)
	if mode := buf.SelectionMode(); mode != buffer.SelectionNone {
		right = " " + mode.String() + right
	}

	left := " " + name
	if msg := a.doc.Message(); msg != "" {
		left += " | " + msg
	}

	for x := 0; x < width; x++ {
		a.screen.SetContent(x, y, ' ', nil, statusStyle)
	}
	a.drawText(0, y, width, left, statusStyle)
	rw := runewidth.StringWidth(right)
	if rw < width {
		a.drawText(width-rw, y, width, right, statusStyle)
	}
}

func grammarName(g *grammar.Grammar) string {
	if g == nil {
		return grammar.FallbackName
	}
	return g.Name
}

// drawText writes s from column x and returns the column after it.
func (a *Application) drawText(x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		w := runeWidth(r)
		if x+w > width {
			break
		}
		a.screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

func (a *Application) showCursor(rows, width int) {
	buf := a.doc.Buffer()
	c, scroll := buf.Cursor(), buf.Scroll()
	y := c.Row - scroll.Row
	line := buf.Line(c.Row)
	if y < 0 || y >= rows || c.Col < scroll.Col || scroll.Col > len(line) {
		a.screen.HideCursor()
		return
	}
	x := runewidth.StringWidth(line[scroll.Col:min(c.Col, len(line))])
	if x >= width {
		a.screen.HideCursor()
		return
	}
	a.screen.ShowCursor(x, y)
}

// byteOffsetAt returns the byte offset in line of screen column x when the
// row is drawn from byte offset from. Columns past the end of the line map
// past its last byte.
func byteOffsetAt(line string, from, x int) int {
	if from >= len(line) {
		return from + x
	}
	col, w := from, 0
	for col < len(line) {
		r, size := utf8.DecodeRuneInString(line[col:])
		rw := runeWidth(r)
		if w+rw > x {
			return col
		}
		w += rw
		col += size
	}
	return col + x - w
}

func runeWidth(r rune) int {
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}
