package buffer

import "unicode/utf8"

// colDeltaTo returns the column change needed to land on toRow while
// honoring the goal column.
func (b *TextBuffer) colDeltaTo(toRow int) int {
	if toRow < 0 || toRow >= len(b.lines) {
		return 0
	}
	lineLen := len(b.lines[toRow])
	if b.goalCol <= lineLen {
		return b.goalCol - b.cursorCol
	}
	return lineLen - b.cursorCol
}

func (b *TextBuffer) cursorMoveDown() {
	if b.cursorRow+1 < len(b.lines) {
		b.moveCursor(1, b.colDeltaTo(b.cursorRow+1), 0)
	}
}

func (b *TextBuffer) cursorMoveUp() {
	if b.cursorRow > 0 {
		b.moveCursor(-1, b.colDeltaTo(b.cursorRow-1), 0)
	}
}

func (b *TextBuffer) cursorMoveLeft() {
	switch {
	case b.cursorCol > 0:
		_, size := utf8.DecodeLastRuneInString(b.lines[b.cursorRow][:b.cursorCol])
		b.moveCursor(0, -size, b.cursorCol-size-b.goalCol)
	case b.cursorRow > 0:
		prev := len(b.lines[b.cursorRow-1])
		b.moveCursor(-1, prev, prev-b.goalCol)
	}
}

func (b *TextBuffer) cursorMoveRight() {
	line := b.lines[b.cursorRow]
	switch {
	case b.cursorCol < len(line):
		_, size := utf8.DecodeRuneInString(line[b.cursorCol:])
		b.moveCursor(0, size, b.cursorCol+size-b.goalCol)
	case b.cursorRow+1 < len(b.lines):
		b.moveCursor(1, -b.cursorCol, -b.goalCol)
	}
}

func (b *TextBuffer) cursorMoveWordLeft() {
	switch {
	case b.cursorCol > 0:
		pos := b.cursorCol
		for _, seg := range wordSegments.FindAllStringIndex(b.lines[b.cursorRow], -1) {
			if seg[0] < pos && pos <= seg[1] {
				pos = seg[0]
				break
			}
		}
		b.moveCursor(0, pos-b.cursorCol, pos-b.goalCol)
	case b.cursorRow > 0:
		prev := len(b.lines[b.cursorRow-1])
		b.moveCursor(-1, prev, prev-b.goalCol)
	}
}

func (b *TextBuffer) cursorMoveWordRight() {
	line := b.lines[b.cursorRow]
	switch {
	case b.cursorCol < len(line):
		pos := b.cursorCol
		for _, seg := range wordSegments.FindAllStringIndex(line, -1) {
			if seg[0] <= pos && pos < seg[1] {
				pos = seg[1]
				break
			}
		}
		b.moveCursor(0, pos-b.cursorCol, pos-b.goalCol)
	case b.cursorRow+1 < len(b.lines):
		b.moveCursor(1, -b.cursorCol, -b.goalCol)
	}
}

// CursorLeft clears the selection and moves one character left, wrapping to
// the end of the previous line.
func (b *TextBuffer) CursorLeft() {
	b.SelectionNone()
	b.cursorMoveLeft()
}

// CursorRight clears the selection and moves one character right, wrapping
// to the start of the next line.
func (b *TextBuffer) CursorRight() {
	b.SelectionNone()
	b.cursorMoveRight()
}

// CursorUp clears the selection and moves up one row.
func (b *TextBuffer) CursorUp() {
	b.SelectionNone()
	b.cursorMoveUp()
}

// CursorDown clears the selection and moves down one row.
func (b *TextBuffer) CursorDown() {
	b.SelectionNone()
	b.cursorMoveDown()
}

// CursorWordLeft clears the selection and moves to the previous word start.
func (b *TextBuffer) CursorWordLeft() {
	b.SelectionNone()
	b.cursorMoveWordLeft()
}

// CursorWordRight clears the selection and moves past the current word.
func (b *TextBuffer) CursorWordRight() {
	b.SelectionNone()
	b.cursorMoveWordRight()
}

func (b *TextBuffer) startCharacterSelection() {
	if b.selectionMode == SelectionNone {
		b.SelectionCharacter()
	}
}

// CursorSelectLeft extends the selection one character left.
func (b *TextBuffer) CursorSelectLeft() {
	b.startCharacterSelection()
	b.cursorMoveLeft()
}

// CursorSelectRight extends the selection one character right.
func (b *TextBuffer) CursorSelectRight() {
	b.startCharacterSelection()
	b.cursorMoveRight()
}

// CursorSelectUp extends the selection one row up.
func (b *TextBuffer) CursorSelectUp() {
	b.startCharacterSelection()
	b.cursorMoveUp()
}

// CursorSelectDown extends the selection one row down.
func (b *TextBuffer) CursorSelectDown() {
	b.startCharacterSelection()
	b.cursorMoveDown()
}

// CursorSelectWordLeft extends the selection to the previous word start.
func (b *TextBuffer) CursorSelectWordLeft() {
	b.startCharacterSelection()
	b.cursorMoveWordLeft()
	b.extendSelection()
}

// CursorSelectWordRight extends the selection past the current word.
func (b *TextBuffer) CursorSelectWordRight() {
	b.startCharacterSelection()
	b.cursorMoveWordRight()
	b.extendSelection()
}

// CursorSelectLineDown switches to line selection and extends it one row.
func (b *TextBuffer) CursorSelectLineDown() {
	b.SelectionLine()
	if b.cursorRow+1 < len(b.lines) {
		b.moveCursor(1, -b.cursorCol, -b.goalCol)
		b.extendSelection()
	}
}

// CursorStartOfLine moves to column 0.
func (b *TextBuffer) CursorStartOfLine() {
	b.moveScroll(0, -b.cursorCol, -b.goalCol, 0, -b.scrollCol)
}

// CursorEndOfLine moves past the last character of the row.
func (b *TextBuffer) CursorEndOfLine() {
	lineLen := len(b.lines[b.cursorRow])
	b.moveCursor(0, lineLen-b.cursorCol, lineLen-b.goalCol)
}

// CursorPageDown moves the cursor and view down one screen.
func (b *TextBuffer) CursorPageDown() {
	if b.cursorRow+1 >= len(b.lines) {
		return
	}
	rowDelta := b.viewRows
	scrollDelta := b.viewRows
	if b.cursorRow+2*b.viewRows >= len(b.lines) {
		rowDelta = len(b.lines) - b.cursorRow - 1
		scrollDelta = max(len(b.lines)-b.viewRows-b.scrollRow, 0)
	}
	b.moveScroll(rowDelta, b.colDeltaTo(b.cursorRow+rowDelta), 0, scrollDelta, 0)
}

// CursorPageUp moves the cursor and view up one screen.
func (b *TextBuffer) CursorPageUp() {
	if b.cursorRow == 0 {
		return
	}
	rowDelta := -b.viewRows
	scrollDelta := -b.viewRows
	if b.cursorRow < 2*b.viewRows {
		rowDelta = -b.cursorRow
		scrollDelta = -b.scrollRow
	}
	scrollDelta = max(scrollDelta, -b.scrollRow)
	b.moveScroll(rowDelta, b.colDeltaTo(b.cursorRow+rowDelta), 0, scrollDelta, 0)
}

// ScrollWindow scrolls the view by rows, keeping the cursor on screen.
func (b *TextBuffer) ScrollWindow(rows int) {
	scrollDelta := clamp(b.scrollRow+rows, 0, max(len(b.lines)-1, 0)) - b.scrollRow
	if scrollDelta == 0 {
		return
	}
	top := b.scrollRow + scrollDelta
	row := clamp(b.cursorRow, top, top+b.viewRows-1)
	row = min(row, len(b.lines)-1)
	b.moveScroll(row-b.cursorRow, b.colDeltaTo(row), 0, scrollDelta, 0)
}

// ScrollToMiddle scrolls so the cursor row is centered when possible.
func (b *TextBuffer) ScrollToMiddle() {
	target := min(max(0, len(b.lines)-b.viewRows), max(0, b.cursorRow-b.viewRows/2))
	b.moveScroll(0, 0, 0, target-b.scrollRow, 0)
}

// UpdateScrollPosition scrolls the minimum amount that makes the cursor
// visible.
func (b *TextBuffer) UpdateScrollPosition() {
	rows, cols := 0, 0
	switch {
	case b.scrollRow > b.cursorRow:
		rows = b.cursorRow - b.scrollRow
	case b.cursorRow >= b.scrollRow+b.viewRows:
		rows = b.cursorRow - (b.scrollRow + b.viewRows - 1)
	}
	switch {
	case b.scrollCol > b.cursorCol:
		cols = b.cursorCol - b.scrollCol
	case b.cursorCol >= b.scrollCol+b.viewCols:
		cols = b.cursorCol - (b.scrollCol + b.viewCols - 1)
	}
	b.moveScroll(0, 0, 0, rows, cols)
}
