package buffer

import (
	"regexp"

	"github.com/dshills/cistorm/internal/engine/history"
)

// SelectionMode is how the region between marker and cursor is interpreted.
type SelectionMode int

// Selection modes, in the order NextSelectionMode cycles through them.
const (
	SelectionNone SelectionMode = iota
	SelectionCharacter
	SelectionWord
	SelectionLine
	SelectionBlock
	SelectionAll

	selectionModeCount
)

// String returns the name of the mode.
func (m SelectionMode) String() string {
	switch m {
	case SelectionNone:
		return "none"
	case SelectionCharacter:
		return "char"
	case SelectionWord:
		return "word"
	case SelectionLine:
		return "line"
	case SelectionBlock:
		return "block"
	case SelectionAll:
		return "all"
	default:
		return "unknown"
	}
}

var (
	wordSegments  = regexp.MustCompile(`\w+|\s+|[^\w\s]+`)
	trailingSpace = regexp.MustCompile(`\s+$`)
)

// StartAndEnd returns the ordered extent of the selection. For line mode the
// extent covers whole rows including the line break after the last one. For
// block mode the two positions are opposite corners of a rectangle.
func (b *TextBuffer) StartAndEnd() (Position, Position) {
	cursor, marker := b.Cursor(), b.Marker()
	switch b.selectionMode {
	case SelectionNone:
		return cursor, cursor
	case SelectionLine:
		upper := clamp(min(cursor.Row, marker.Row), 0, len(b.lines)-1)
		lower := clamp(max(cursor.Row, marker.Row), 0, len(b.lines)-1)
		start := Position{Row: upper}
		if lower+1 < len(b.lines) {
			return start, Position{Row: lower + 1}
		}
		return start, Position{Row: lower, Col: len(b.lines[lower])}
	case SelectionBlock:
		last := len(b.lines) - 1
		return Position{Row: clamp(min(cursor.Row, marker.Row), 0, last), Col: min(cursor.Col, marker.Col)},
			Position{Row: clamp(max(cursor.Row, marker.Row), 0, last), Col: max(cursor.Col, marker.Col)}
	default:
		return Ordered(b.clampPosition(marker), b.clampPosition(cursor))
	}
}

// clampPosition returns p limited to the existing text.
func (b *TextBuffer) clampPosition(p Position) Position {
	row := clamp(p.Row, 0, len(b.lines)-1)
	return Position{Row: row, Col: clamp(p.Col, 0, len(b.lines[row]))}
}

// SelectedText returns the selected text split into lines. Block selections
// yield one entry per row. It returns nil when nothing is selected.
func (b *TextBuffer) SelectedText() []string {
	if b.selectionMode == SelectionNone {
		return nil
	}
	start, end := b.StartAndEnd()
	if b.selectionMode == SelectionBlock {
		out := make([]string, 0, end.Row-start.Row+1)
		for row := start.Row; row <= end.Row && row < len(b.lines); row++ {
			line := b.lines[row]
			out = append(out, line[clamp(start.Col, 0, len(line)):clamp(end.Col, 0, len(line))])
		}
		return out
	}
	if start == end {
		return nil
	}
	return b.text(start, end)
}

func hasText(lines []string) bool {
	for _, l := range lines {
		if l != "" {
			return true
		}
	}
	return len(lines) > 1
}

// moveAndMark records a move of the cursor and marker, scrolling as needed
// to keep the cursor visible.
func (b *TextBuffer) moveAndMark(rowDelta, colDelta, goalColDelta, markRowDelta, markColDelta, modeDelta int) {
	row := b.cursorRow + rowDelta
	col := b.cursorCol + colDelta
	d := history.MoveDelta{
		CursorRow:     rowDelta,
		CursorCol:     colDelta,
		GoalCol:       goalColDelta,
		MarkerRow:     markRowDelta,
		MarkerCol:     markColDelta,
		SelectionMode: modeDelta,
	}
	switch {
	case b.scrollRow > row:
		d.ScrollRow = row - b.scrollRow
	case row >= b.scrollRow+b.viewRows:
		d.ScrollRow = row - (b.scrollRow + b.viewRows - 1)
	}
	switch {
	case b.scrollCol > col:
		d.ScrollCol = col - b.scrollCol
	case col >= b.scrollCol+b.viewCols:
		d.ScrollCol = col - (b.scrollCol + b.viewCols - 1)
	}
	b.record(history.Move{Delta: d})
}

func (b *TextBuffer) moveCursor(rowDelta, colDelta, goalColDelta int) {
	b.moveAndMark(rowDelta, colDelta, goalColDelta, 0, 0, 0)
}

func (b *TextBuffer) moveScroll(rowDelta, colDelta, goalColDelta, scrollRowDelta, scrollColDelta int) {
	b.record(history.Move{Delta: history.MoveDelta{
		CursorRow: rowDelta,
		CursorCol: colDelta,
		GoalCol:   goalColDelta,
		ScrollRow: scrollRowDelta,
		ScrollCol: scrollColDelta,
	}})
}

// setSelectionMode switches modes and anchors the marker at the cursor.
func (b *TextBuffer) setSelectionMode(mode SelectionMode) {
	if b.selectionMode == mode {
		return
	}
	b.record(history.Move{Delta: history.MoveDelta{
		MarkerRow:     b.cursorRow - b.markerRow,
		MarkerCol:     b.cursorCol - b.markerCol,
		SelectionMode: int(mode - b.selectionMode),
	}})
}

// extendSelection moves cursor and marker so the selection covers whole
// units of the current mode.
func (b *TextBuffer) extendSelection() {
	var rowDelta, colDelta, markRowDelta, markColDelta int
	switch b.selectionMode {
	case SelectionAll:
		last := len(b.lines) - 1
		rowDelta = last - b.cursorRow
		colDelta = len(b.lines[last]) - b.cursorCol
		markRowDelta = -b.markerRow
		markColDelta = -b.markerCol
	case SelectionLine:
		if b.cursorRow >= b.markerRow {
			colDelta = len(b.lines[b.cursorRow]) - b.cursorCol
			markColDelta = -b.markerCol
		} else {
			colDelta = -b.cursorCol
			markColDelta = len(b.Line(b.markerRow)) - b.markerCol
		}
	case SelectionWord:
		cursor, marker := b.Cursor(), b.Marker()
		if marker.After(cursor) {
			colDelta = wordStart(b.lines[cursor.Row], cursor.Col) - cursor.Col
			markColDelta = wordEnd(b.Line(marker.Row), marker.Col) - marker.Col
		} else {
			colDelta = wordEnd(b.lines[cursor.Row], cursor.Col) - cursor.Col
			markColDelta = wordStart(b.Line(marker.Row), marker.Col) - marker.Col
		}
	default:
		return
	}
	b.moveAndMark(rowDelta, colDelta, b.cursorCol+colDelta-b.goalCol, markRowDelta, markColDelta, 0)
}

// wordStart returns the start of the segment strictly containing col, or col.
func wordStart(line string, col int) int {
	for _, seg := range wordSegments.FindAllStringIndex(line, -1) {
		if seg[0] < col && col < seg[1] {
			return seg[0]
		}
	}
	return col
}

// wordEnd returns the end of the segment strictly containing col, or col.
func wordEnd(line string, col int) int {
	for _, seg := range wordSegments.FindAllStringIndex(line, -1) {
		if seg[0] < col && col < seg[1] {
			return seg[1]
		}
	}
	return col
}

// SelectionNone clears the selection.
func (b *TextBuffer) SelectionNone() { b.setSelectionMode(SelectionNone) }

// SelectionCharacter starts a character selection at the cursor.
func (b *TextBuffer) SelectionCharacter() { b.setSelectionMode(SelectionCharacter) }

// SelectionWord starts a word selection at the cursor.
func (b *TextBuffer) SelectionWord() { b.setSelectionMode(SelectionWord) }

// SelectionLine starts a line selection at the cursor.
func (b *TextBuffer) SelectionLine() { b.setSelectionMode(SelectionLine) }

// SelectionBlock starts a block selection at the cursor.
func (b *TextBuffer) SelectionBlock() { b.setSelectionMode(SelectionBlock) }

// SelectionAll selects the whole document.
func (b *TextBuffer) SelectionAll() {
	b.setSelectionMode(SelectionAll)
	b.extendSelection()
}

// NextSelectionMode cycles to the following selection mode.
func (b *TextBuffer) NextSelectionMode() {
	b.setSelectionMode((b.selectionMode + 1) % selectionModeCount)
}

// SelectLineAt selects the whole of row.
func (b *TextBuffer) SelectLineAt(row int) {
	row = clamp(row, 0, len(b.lines)-1)
	b.SelectionNone()
	b.moveCursor(row-b.cursorRow, -b.cursorCol, -b.goalCol)
	b.SelectionLine()
	b.extendSelection()
}

// SelectWordAt selects the word under row and col.
func (b *TextBuffer) SelectWordAt(row, col int) {
	row = clamp(row, 0, len(b.lines)-1)
	inLine := col < len(b.lines[row])
	col = clamp(col, 0, max(len(b.lines[row])-1, 0))
	b.selectText(row, col, 0, SelectionWord)
	if inLine {
		b.CursorSelectWordRight()
	}
}

// selectText places the cursor at (row, start) with the marker length bytes
// to the right, scrolling the match into view.
func (b *TextBuffer) selectText(row, start, length int, mode SelectionMode) {
	scrollRow, scrollCol := b.scrollRow, b.scrollCol
	if !(b.scrollRow <= row && row < b.scrollRow+b.viewRows) {
		scrollRow = max(row-10, 0)
	}
	if !(b.scrollCol <= start && start+length < b.scrollCol+b.viewCols) {
		scrollCol = max(start-10, 0)
	}
	b.SelectionNone()
	b.moveScroll(
		row-b.cursorRow,
		start+length-b.cursorCol,
		start+length-b.goalCol,
		scrollRow-b.scrollRow,
		scrollCol-b.scrollCol)
	b.setSelectionMode(mode)
	b.moveCursor(0, -length, -length)
}

// MarkerPlace anchors the marker at the cursor.
func (b *TextBuffer) MarkerPlace() {
	b.record(history.Move{Delta: history.MoveDelta{
		MarkerRow: b.cursorRow - b.markerRow,
		MarkerCol: b.cursorCol - b.markerCol,
	}})
}

// SwapCursorAndMarker exchanges the cursor and marker positions. A marker
// left outside the text by later edits is clamped first.
func (b *TextBuffer) SwapCursorAndMarker() {
	m := b.clampPosition(b.Marker())
	b.moveAndMark(
		m.Row-b.cursorRow,
		m.Col-b.cursorCol,
		m.Col-b.goalCol,
		b.cursorRow-b.markerRow,
		b.cursorCol-b.markerCol, 0)
}

// performDelete removes the selected text, if any, and clears the selection.
// The cursor ends at the start of the removed region.
func (b *TextBuffer) performDelete() {
	if b.selectionMode == SelectionNone {
		return
	}
	text := b.SelectedText()
	start, end := b.StartAndEnd()
	if hasText(text) {
		b.record(history.DeleteSelection{
			Range: history.Range{
				StartRow: start.Row, StartCol: start.Col,
				EndRow: end.Row, EndCol: end.Col,
			},
			Block: b.selectionMode == SelectionBlock,
			Lines: text,
		})
	}
	row := start.Row
	col := clamp(start.Col, 0, len(b.lines[row]))
	b.record(history.Move{Delta: history.MoveDelta{
		CursorRow:     row - b.cursorRow,
		CursorCol:     col - b.cursorCol,
		GoalCol:       col - b.goalCol,
		MarkerRow:     row - b.markerRow,
		MarkerCol:     col - b.markerCol,
		SelectionMode: int(SelectionNone - b.selectionMode),
	}})
}
