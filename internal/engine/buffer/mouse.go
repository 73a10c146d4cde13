package buffer

// MouseClick places the cursor at a pane position. With shift held the
// selection is extended instead of cleared.
func (b *TextBuffer) MouseClick(paneRow, paneCol int, shift bool) {
	if shift {
		b.startCharacterSelection()
	} else {
		b.SelectionNone()
	}
	b.MouseRelease(paneRow, paneCol)
}

// MouseDoubleClick selects the word at a pane position.
func (b *TextBuffer) MouseDoubleClick(paneRow, paneCol int) {
	row := b.scrollRow + paneRow
	if row < len(b.lines) && len(b.lines[row]) > 0 {
		b.SelectWordAt(row, b.scrollCol+paneCol)
	}
}

// MouseTripleClick selects the row at a pane position.
func (b *TextBuffer) MouseTripleClick(paneRow, paneCol int) {
	b.MouseRelease(paneRow, paneCol)
	b.SelectLineAt(b.scrollRow + paneRow)
}

// MouseMoved extends the selection to a pane position while dragging.
func (b *TextBuffer) MouseMoved(paneRow, paneCol int) {
	b.MouseClick(paneRow, paneCol, true)
}

// MouseRelease moves the cursor to a pane position, keeping the current
// selection mode's units whole.
func (b *TextBuffer) MouseRelease(paneRow, paneCol int) {
	row := clamp(b.scrollRow+paneRow, 0, len(b.lines)-1)
	inLine := paneCol < len(b.lines[row])
	col := clamp(b.scrollCol+paneCol, 0, len(b.lines[row]))

	// When word selections cross over the marker, the marker moves to the
	// other side of its word.
	markerCol := 0
	if b.selectionMode == SelectionWord {
		switch {
		case b.cursorRow == b.markerRow && row == b.cursorRow:
			if b.cursorCol > b.markerCol && col < b.markerCol {
				markerCol = 1
			} else if b.cursorCol < b.markerCol && col >= b.markerCol {
				markerCol = -1
			}
		case b.cursorRow == b.markerRow:
			if row < b.cursorRow && b.cursorCol > b.markerCol {
				markerCol = 1
			} else if row > b.cursorRow && b.cursorCol < b.markerCol {
				markerCol = -1
			}
		case row == b.markerRow:
			if col < b.markerCol && row < b.cursorRow {
				markerCol = 1
			} else if col >= b.markerCol && row > b.cursorRow {
				markerCol = -1
			}
		}
	}
	if b.markerCol+markerCol < 0 || b.markerCol+markerCol > len(b.Line(b.markerRow)) {
		markerCol = 0
	}

	b.moveAndMark(row-b.cursorRow, col-b.cursorCol, col-b.goalCol, 0, markerCol, 0)
	switch b.selectionMode {
	case SelectionLine:
		b.extendSelection()
	case SelectionWord:
		if b.Cursor().Before(b.Marker()) {
			b.CursorSelectWordLeft()
		} else if inLine {
			b.CursorSelectWordRight()
		}
	}
}

// MouseWheelUp scrolls the view up by one row.
func (b *TextBuffer) MouseWheelUp(shift bool) {
	if !shift {
		b.SelectionNone()
	}
	if b.scrollRow == 0 {
		return
	}
	delta := 0
	if b.cursorRow >= b.scrollRow+b.viewRows-2 {
		delta = max(b.scrollRow+b.viewRows-2-b.cursorRow, -b.cursorRow)
	}
	b.moveScroll(delta, b.colDeltaTo(b.cursorRow+delta), 0, -1, 0)
}

// MouseWheelDown scrolls the view down by one row.
func (b *TextBuffer) MouseWheelDown(shift bool) {
	if !shift {
		b.SelectionNone()
	}
	if b.scrollRow+b.viewRows >= len(b.lines) {
		return
	}
	delta := 0
	if b.cursorRow <= b.scrollRow+1 {
		delta = b.scrollRow - b.cursorRow + 1
	}
	b.moveScroll(delta, b.colDeltaTo(b.cursorRow+delta), 0, 1, 0)
}
