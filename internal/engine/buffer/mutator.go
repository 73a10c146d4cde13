package buffer

import (
	"fmt"

	"github.com/dshills/cistorm/internal/engine/history"
)

// Apply performs c against the buffer. It implements history.Target and is
// called by the change log; operations use record instead.
func (b *TextBuffer) Apply(c history.Change) {
	switch v := c.(type) {
	case history.Insert:
		b.touch(b.cursorRow)
		line := b.lines[b.cursorRow]
		x := b.cursorCol
		b.lines[b.cursorRow] = line[:x] + v.Text + line[x:]
		b.cursorCol += len(v.Text)
		b.goalCol = b.cursorCol
	case history.Backspace:
		b.touch(b.cursorRow)
		b.cursorCol -= len(v.Text)
		b.removeAtCursor(len(v.Text))
	case history.Delete:
		b.touch(b.cursorRow)
		b.removeAtCursor(len(v.Text))
	case history.DeleteRange:
		b.touch(v.Range.StartRow)
		start, end := rangeEnds(v.Range)
		b.removeText(start, end)
	case history.DeleteSelection:
		b.touch(v.Range.StartRow)
		start, end := rangeEnds(v.Range)
		if v.Block {
			b.removeBlock(start, end)
		} else {
			b.removeText(start, end)
		}
	case history.Join:
		b.touch(b.cursorRow)
		b.lines[b.cursorRow] += b.lines[b.cursorRow+1]
		b.lines = append(b.lines[:b.cursorRow+1], b.lines[b.cursorRow+2:]...)
	case history.SplitLines:
		b.touch(b.cursorRow)
		line := b.lines[b.cursorRow]
		add := make([]string, v.Count)
		add[len(add)-1] = line[b.cursorCol:]
		b.lines[b.cursorRow] = line[:b.cursorCol]
		b.lines = insertLines(b.lines, b.cursorRow+1, add)
	case history.Paste:
		b.touch(b.cursorRow)
		b.insertText(b.Cursor(), v.Lines)
	case history.VerticalInsert:
		b.touch(v.Top)
		for row := v.Top; row <= v.Bottom; row++ {
			b.insertAt(row, b.cursorCol, v.Text)
		}
	case history.VerticalDelete:
		b.touch(v.Top)
		for row := v.Top; row <= v.Bottom; row++ {
			b.removeAt(row, b.cursorCol, len(v.Text))
		}
	case history.VerticalBackspace:
		b.touch(v.Top)
		b.cursorCol -= len(v.Text)
		for row := v.Top; row <= v.Bottom; row++ {
			b.removeAt(row, b.cursorCol, len(v.Text))
		}
	case history.Move:
		b.move(v.Delta, 1)
	case history.LineDiff:
		b.touch(history.FirstChangedRow(v.Ops))
		b.lines = history.ApplyDiff(b.lines, v.Ops, false)
	default:
		panic(fmt.Sprintf("buffer: no apply for change %T", c))
	}
}

// Revert performs the inverse of c. It implements history.Target.
func (b *TextBuffer) Revert(c history.Change) {
	switch v := c.(type) {
	case history.Insert:
		b.touch(b.cursorRow)
		line := b.lines[b.cursorRow]
		x := b.cursorCol
		b.lines[b.cursorRow] = line[:x-len(v.Text)] + line[x:]
		b.cursorCol -= len(v.Text)
		b.goalCol = b.cursorCol
	case history.Backspace:
		b.touch(b.cursorRow)
		b.insertAt(b.cursorRow, b.cursorCol, v.Text)
		b.cursorCol += len(v.Text)
	case history.Delete:
		b.touch(b.cursorRow)
		b.insertAt(b.cursorRow, b.cursorCol, v.Text)
	case history.DeleteRange:
		b.touch(v.Range.StartRow)
		start, _ := rangeEnds(v.Range)
		b.insertText(start, v.Lines)
	case history.DeleteSelection:
		b.touch(v.Range.StartRow)
		start, _ := rangeEnds(v.Range)
		if v.Block {
			for i, text := range v.Lines {
				b.insertAt(start.Row+i, start.Col, text)
			}
		} else {
			b.insertText(start, v.Lines)
		}
	case history.Join:
		b.touch(b.cursorRow)
		line := b.lines[b.cursorRow]
		b.lines[b.cursorRow] = line[:b.cursorCol]
		b.lines = insertLines(b.lines, b.cursorRow+1, []string{line[b.cursorCol:]})
	case history.SplitLines:
		b.touch(b.cursorRow)
		b.lines[b.cursorRow] += b.lines[b.cursorRow+v.Count]
		b.lines = append(b.lines[:b.cursorRow+1], b.lines[b.cursorRow+v.Count+1:]...)
	case history.Paste:
		b.touch(b.cursorRow)
		b.removeText(b.Cursor(), endOf(b.Cursor(), v.Lines))
	case history.VerticalInsert:
		b.touch(v.Top)
		for row := v.Top; row <= v.Bottom; row++ {
			b.removeAt(row, b.cursorCol, len(v.Text))
		}
	case history.VerticalDelete:
		b.touch(v.Top)
		for row := v.Top; row <= v.Bottom; row++ {
			b.insertAt(row, b.cursorCol, v.Text)
		}
	case history.VerticalBackspace:
		b.touch(v.Top)
		for row := v.Top; row <= v.Bottom; row++ {
			b.insertAt(row, b.cursorCol, v.Text)
		}
		b.cursorCol += len(v.Text)
	case history.Move:
		b.move(v.Delta, -1)
	case history.LineDiff:
		b.touch(history.FirstChangedRow(v.Ops))
		b.lines = history.ApplyDiff(b.lines, v.Ops, true)
	default:
		panic(fmt.Sprintf("buffer: no revert for change %T", c))
	}
}

func (b *TextBuffer) move(d history.MoveDelta, sign int) {
	b.cursorRow += sign * d.CursorRow
	b.cursorCol += sign * d.CursorCol
	b.goalCol += sign * d.GoalCol
	b.scrollRow += sign * d.ScrollRow
	b.scrollCol += sign * d.ScrollCol
	b.markerRow += sign * d.MarkerRow
	b.markerCol += sign * d.MarkerCol
	b.markerEndRow += sign * d.MarkerEndRow
	b.markerEndCol += sign * d.MarkerEndCol
	b.selectionMode += SelectionMode(sign * d.SelectionMode)
	if b.cursorRow < 0 || b.cursorCol < 0 || b.scrollRow < 0 || b.scrollCol < 0 {
		b.logger.Warn("move left negative position",
			"cursor", b.Cursor(), "scroll", b.Scroll())
	}
}

func (b *TextBuffer) removeAtCursor(n int) {
	b.removeAt(b.cursorRow, b.cursorCol, n)
}

func (b *TextBuffer) removeAt(row, col, n int) {
	line := b.lines[row]
	x := clamp(col, 0, len(line))
	b.lines[row] = line[:x] + line[min(x+n, len(line)):]
}

func (b *TextBuffer) insertAt(row, col int, text string) {
	line := b.lines[row]
	x := clamp(col, 0, len(line))
	b.lines[row] = line[:x] + text + line[x:]
}

// removeBlock deletes the rectangle between start and end on each row.
func (b *TextBuffer) removeBlock(start, end Position) {
	for row := start.Row; row <= end.Row && row < len(b.lines); row++ {
		line := b.lines[row]
		lo := clamp(start.Col, 0, len(line))
		hi := clamp(end.Col, 0, len(line))
		b.lines[row] = line[:lo] + line[hi:]
	}
}

func rangeEnds(r history.Range) (Position, Position) {
	return Position{Row: r.StartRow, Col: r.StartCol}, Position{Row: r.EndRow, Col: r.EndCol}
}
