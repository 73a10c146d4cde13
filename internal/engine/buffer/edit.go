package buffer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/cistorm/internal/engine/history"
)

// Insert replaces any selection with text, inserted at the cursor. Text that
// the codec would change, such as line breaks or control bytes, is decoded and
// pasted instead.
func (b *TextBuffer) Insert(text string) {
	if lines := b.Decode([]byte(text)); len(lines) != 1 || lines[0] != text {
		b.PasteLines(lines)
		return
	}
	b.performDelete()
	if text == "" {
		return
	}
	b.record(history.Insert{Text: text})
	if delta := b.cursorCol - b.scrollCol - b.viewCols + 1; delta > 0 {
		b.moveScroll(0, 0, 0, 0, delta)
	}
}

// InsertPrintable inserts r if it is a printable character.
func (b *TextBuffer) InsertPrintable(r rune) {
	if unicode.IsPrint(r) {
		b.Insert(string(r))
	}
}

// Backspace removes the selection, or the character before the cursor,
// joining with the previous line at column 0.
func (b *TextBuffer) Backspace() {
	switch {
	case b.selectionMode != SelectionNone:
		b.performDelete()
	case b.cursorCol == 0:
		if b.cursorRow > 0 {
			b.CursorLeft()
			b.record(history.Join{})
		}
	default:
		line := b.lines[b.cursorRow][:b.cursorCol]
		_, size := utf8.DecodeLastRuneInString(line)
		b.record(history.Backspace{Text: line[len(line)-size:]})
	}
}

// Delete removes the selection, or the character after the cursor, joining
// with the next line at end of line.
func (b *TextBuffer) Delete() {
	line := b.lines[b.cursorRow]
	switch {
	case b.selectionMode != SelectionNone:
		b.performDelete()
	case b.cursorCol == len(line):
		if b.cursorRow+1 < len(b.lines) {
			b.record(history.Join{})
		}
	default:
		_, size := utf8.DecodeRuneInString(line[b.cursorCol:])
		b.record(history.Delete{Text: line[b.cursorCol : b.cursorCol+size]})
	}
}

// DeleteToEndOfLine removes the rest of the row, or joins the next row when
// the cursor is already at the end.
func (b *TextBuffer) DeleteToEndOfLine() {
	b.SelectionNone()
	line := b.lines[b.cursorRow]
	if b.cursorCol == len(line) {
		if b.cursorRow+1 < len(b.lines) {
			b.record(history.Join{})
		}
		return
	}
	b.record(history.Delete{Text: line[b.cursorCol:]})
}

// JoinLines appends the next row to the cursor row.
func (b *TextBuffer) JoinLines() {
	if b.cursorRow+1 >= len(b.lines) {
		return
	}
	b.SelectionNone()
	b.CursorEndOfLine()
	b.record(history.Join{})
}

// SplitLine breaks the row at the cursor without moving the cursor.
func (b *TextBuffer) SplitLine() {
	b.SelectionNone()
	b.record(history.SplitLines{Count: 1})
}

// CarriageReturn replaces any selection with a line break and moves to the
// start of the new row, copying indentation when auto-indent is enabled.
func (b *TextBuffer) CarriageReturn() {
	b.performDelete()
	b.record(history.SplitLines{Count: 1})
	b.moveCursor(1, -b.cursorCol, -b.goalCol)
	if !b.autoIndent {
		return
	}
	if indent := b.indentFor(b.lines[b.cursorRow-1]); indent > 0 {
		b.record(history.Insert{Text: strings.Repeat(" ", indent)})
	}
}

// indentFor returns the indentation for a row following line.
func (b *TextBuffer) indentFor(line string) int {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if line == "" {
		return indent
	}
	switch {
	case strings.ContainsAny(line[len(line)-1:], ":[{"):
		indent += b.indentWidth
	case strings.Count(line, "(") > strings.Count(line, ")"):
		indent += 2 * b.indentWidth
	}
	return indent
}

// Indent shifts the selected rows, or the cursor row, right by the indent
// width.
func (b *TextBuffer) Indent() {
	b.toLineSelection()
	top, bottom := b.selectedRows()
	b.record(history.VerticalInsert{
		Text:   strings.Repeat(" ", b.indentWidth),
		Top:    top,
		Bottom: bottom,
	})
}

// Unindent shifts the selected rows, or the cursor row, left by the indent
// width. Nothing happens unless every row starts with that much space.
func (b *TextBuffer) Unindent() {
	b.toLineSelection()
	top, bottom := b.selectedRows()
	text := strings.Repeat(" ", b.indentWidth)
	for _, line := range b.lines[top : bottom+1] {
		if !strings.HasPrefix(line, text) {
			return
		}
	}
	b.record(history.VerticalDelete{Text: text, Top: top, Bottom: bottom})
}

// toLineSelection turns the current selection into a line selection with the
// cursor at column 0.
func (b *TextBuffer) toLineSelection() {
	switch b.selectionMode {
	case SelectionNone:
		b.moveAndMark(0, -b.cursorCol, -b.goalCol,
			b.cursorRow-b.markerRow, -b.markerCol, int(SelectionLine-b.selectionMode))
	case SelectionAll:
		b.moveAndMark(len(b.lines)-1-b.cursorRow, -b.cursorCol, -b.goalCol,
			-b.markerRow, -b.markerCol, int(SelectionLine-b.selectionMode))
	default:
		b.moveAndMark(0, -b.cursorCol, -b.goalCol,
			0, -b.markerCol, int(SelectionLine-b.selectionMode))
	}
}

func (b *TextBuffer) selectedRows() (int, int) {
	top := clamp(min(b.cursorRow, b.markerRow), 0, len(b.lines)-1)
	bottom := clamp(max(b.cursorRow, b.markerRow), 0, len(b.lines)-1)
	return top, bottom
}

// VerticalInsert inserts text at the cursor column on rows top to bottom.
// Nothing happens unless every row reaches the cursor column.
func (b *TextBuffer) VerticalInsert(top, bottom int, text string) {
	if text == "" || !b.validRows(top, bottom) {
		return
	}
	for row := top; row <= bottom; row++ {
		if len(b.lines[row]) < b.cursorCol {
			return
		}
	}
	b.record(history.VerticalInsert{Text: text, Top: top, Bottom: bottom})
}

// VerticalBackspace removes the byte left of the cursor column on rows top
// to bottom. Nothing happens unless every row has the same byte there.
func (b *TextBuffer) VerticalBackspace(top, bottom int) {
	if b.cursorCol == 0 {
		return
	}
	if text, ok := b.columnText(top, bottom, b.cursorCol-1); ok {
		b.record(history.VerticalBackspace{Text: text, Top: top, Bottom: bottom})
	}
}

// VerticalDelete removes the byte at the cursor column on rows top to
// bottom. Nothing happens unless every row has the same byte there.
func (b *TextBuffer) VerticalDelete(top, bottom int) {
	if text, ok := b.columnText(top, bottom, b.cursorCol); ok {
		b.record(history.VerticalDelete{Text: text, Top: top, Bottom: bottom})
	}
}

func (b *TextBuffer) validRows(top, bottom int) bool {
	return 0 <= top && top <= bottom && bottom < len(b.lines)
}

// columnText returns the byte at col shared by rows top to bottom.
func (b *TextBuffer) columnText(top, bottom, col int) (string, bool) {
	if !b.validRows(top, bottom) || col < 0 {
		return "", false
	}
	var text string
	for row := top; row <= bottom; row++ {
		line := b.lines[row]
		if col >= len(line) {
			return "", false
		}
		if row == top {
			text = line[col : col+1]
		} else if line[col:col+1] != text {
			return "", false
		}
	}
	return text, true
}

// PerformDeleteRange removes the text between (upperRow, upperCol) and
// (lowerRow, lowerCol), first moving the cursor so it stays on the same
// text.
func (b *TextBuffer) PerformDeleteRange(upperRow, upperCol, lowerRow, lowerCol int) {
	switch {
	case upperRow == b.cursorRow && b.cursorRow == lowerRow:
		if upperCol < b.cursorCol {
			col := upperCol - b.cursorCol
			if lowerCol <= b.cursorCol {
				col = upperCol - lowerCol
			}
			b.moveCursor(0, col, b.cursorCol+col-b.goalCol)
		}
	case upperRow <= b.cursorRow && b.cursorRow < lowerRow:
		b.moveCursor(upperRow-b.cursorRow, upperCol-b.cursorCol, upperCol-b.goalCol)
	case b.cursorRow == lowerRow:
		col := upperCol - lowerCol
		b.moveCursor(upperRow-b.cursorRow, col, b.cursorCol+col-b.goalCol)
	}
	start := Position{Row: upperRow, Col: upperCol}
	end := Position{Row: lowerRow, Col: lowerCol}
	b.record(history.DeleteRange{
		Range: history.Range{StartRow: upperRow, StartCol: upperCol, EndRow: lowerRow, EndCol: lowerCol},
		Lines: b.text(start, end),
	})
}

// StripTrailingWhitespace removes whitespace at the end of every row.
func (b *TextBuffer) StripTrailingWhitespace() {
	for row, line := range b.lines {
		if loc := trailingSpace.FindStringIndex(line); loc != nil {
			b.PerformDeleteRange(row, loc[0], row, loc[1])
		}
	}
}

// TrimTrailingWhitespace returns a copy of lines with trailing whitespace
// removed from each line.
func TrimTrailingWhitespace(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = trailingSpace.ReplaceAllString(line, "")
	}
	return out
}

// TrailingWhitespaceRows returns the rows that end in whitespace.
func (b *TextBuffer) TrailingWhitespaceRows() []int {
	var rows []int
	for row, line := range b.lines {
		if trailingSpace.MatchString(line) {
			rows = append(rows, row)
		}
	}
	return rows
}
