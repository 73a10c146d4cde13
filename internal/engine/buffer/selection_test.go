package buffer

import (
	"reflect"
	"testing"
)

type fakeClipboard struct {
	copied []string
	paste  string
}

func (c *fakeClipboard) Copy(text string) { c.copied = append(c.copied, text) }

func (c *fakeClipboard) Paste() (string, bool) { return c.paste, c.paste != "" }

func TestSelectionModeString(t *testing.T) {
	tests := map[SelectionMode]string{
		SelectionNone:      "none",
		SelectionCharacter: "char",
		SelectionWord:      "word",
		SelectionLine:      "line",
		SelectionBlock:     "block",
		SelectionAll:       "all",
		SelectionMode(42):  "unknown",
	}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", mode, got, want)
		}
	}
}

func TestNextSelectionModeCycles(t *testing.T) {
	b := NewFromString("abc")
	want := []SelectionMode{
		SelectionCharacter, SelectionWord, SelectionLine,
		SelectionBlock, SelectionAll, SelectionNone,
	}
	for _, mode := range want {
		b.NextSelectionMode()
		if b.SelectionMode() != mode {
			t.Fatalf("mode = %v, want %v", b.SelectionMode(), mode)
		}
	}
}

func TestCharacterSelectionReplace(t *testing.T) {
	b := NewFromString("hello world")
	for i := 0; i < 5; i++ {
		b.CursorSelectRight()
	}
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Fatalf("SelectedText() = %q", got)
	}

	b.Insert("bye")
	assertLines(t, b, "bye world")
	assertCursor(t, b, 0, 3)
	if b.SelectionMode() != SelectionNone {
		t.Errorf("selection mode = %v, want none", b.SelectionMode())
	}

	b.Undo()
	assertLines(t, b, " world")
	assertCursor(t, b, 0, 0)

	b.Undo()
	assertLines(t, b, "hello world")
	assertCursor(t, b, 0, 5)
	if b.SelectionMode() != SelectionCharacter || b.Marker() != (Position{}) {
		t.Errorf("selection = %v from %v, want char from (0:0)", b.SelectionMode(), b.Marker())
	}
}

func TestSelectionBackwards(t *testing.T) {
	b := NewFromString("one\ntwo")
	b.CursorDown()
	b.CursorEndOfLine()
	b.CursorSelectUp()
	b.CursorSelectLeft()

	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"e", "two"}) {
		t.Fatalf("SelectedText() = %q", got)
	}
	b.Backspace()
	assertLines(t, b, "on")
	assertCursor(t, b, 0, 2)
}

func TestLineSelectionDelete(t *testing.T) {
	b := NewFromString("a\nb\nc")

	b.SelectLineAt(1)
	if b.SelectionMode() != SelectionLine {
		t.Fatalf("selection mode = %v, want line", b.SelectionMode())
	}
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"b", ""}) {
		t.Fatalf("SelectedText() = %q", got)
	}

	b.Delete()
	assertLines(t, b, "a", "c")
	assertCursor(t, b, 1, 0)

	b.Undo()
	assertLines(t, b, "a", "b", "c")
}

func TestLineSelectionLastRow(t *testing.T) {
	b := NewFromString("a\nb")
	b.SelectLineAt(1)

	start, end := b.StartAndEnd()
	if start != (Position{Row: 1}) || end != (Position{Row: 1, Col: 1}) {
		t.Errorf("StartAndEnd() = %v, %v", start, end)
	}
}

func TestCursorSelectLineDown(t *testing.T) {
	b := NewFromString("a\nbb\nc")

	b.CursorSelectLineDown()
	assertCursor(t, b, 1, 2)
	if b.Marker() != (Position{Row: 0, Col: 0}) {
		t.Errorf("marker = %v, want (0:0)", b.Marker())
	}
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"a", "bb", ""}) {
		t.Errorf("SelectedText() = %q", got)
	}
}

func TestBlockSelectionDelete(t *testing.T) {
	b := NewFromString("abcd\nefgh\nijkl")
	b.CursorRight()
	b.SelectionBlock()
	b.CursorSelectDown()
	b.CursorSelectDown()
	b.CursorSelectRight()
	b.CursorSelectRight()

	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"bc", "fg", "jk"}) {
		t.Fatalf("SelectedText() = %q", got)
	}

	b.Delete()
	assertLines(t, b, "ad", "eh", "il")
	assertCursor(t, b, 0, 1)

	b.Undo()
	assertLines(t, b, "abcd", "efgh", "ijkl")
}

func TestSelectionAll(t *testing.T) {
	b := NewFromString("ab\ncd")
	b.SelectionAll()

	if b.Marker() != (Position{}) {
		t.Errorf("marker = %v, want origin", b.Marker())
	}
	assertCursor(t, b, 1, 2)

	b.Delete()
	assertLines(t, b, "")
	assertCursor(t, b, 0, 0)
}

func TestSelectWordAt(t *testing.T) {
	b := NewFromString("foo bar_baz qux")

	b.SelectWordAt(0, 6)
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"bar_baz"}) {
		t.Errorf("SelectedText() = %q", got)
	}
	if b.SelectionMode() != SelectionWord {
		t.Errorf("selection mode = %v, want word", b.SelectionMode())
	}
}

func TestCursorSelectWordRight(t *testing.T) {
	b := NewFromString("one two")

	b.CursorSelectWordRight()
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"one"}) {
		t.Errorf("SelectedText() = %q", got)
	}
}

func TestSwapCursorAndMarker(t *testing.T) {
	b := NewFromString("hello")
	b.CursorSelectRight()
	b.CursorSelectRight()

	b.SwapCursorAndMarker()
	assertCursor(t, b, 0, 0)
	if b.Marker() != (Position{Row: 0, Col: 2}) {
		t.Errorf("marker = %v, want (0:2)", b.Marker())
	}
}

func TestSwapCursorAndMarkerClampsStaleMarker(t *testing.T) {
	b := NewFromString("hello\nworld")
	b.CursorDown()
	b.CursorEndOfLine()
	b.MarkerPlace()
	b.CursorUp()
	b.JoinLines()
	b.CursorStartOfLine()
	b.DeleteToEndOfLine()

	b.SwapCursorAndMarker()
	assertCursor(t, b, 0, 0)
	if b.Marker() != (Position{Row: 0, Col: 0}) {
		t.Errorf("marker = %v, want (0:0)", b.Marker())
	}
}

func TestMarkerPlace(t *testing.T) {
	b := NewFromString("hello")
	b.CursorEndOfLine()

	b.MarkerPlace()
	if b.Marker() != (Position{Row: 0, Col: 5}) {
		t.Errorf("marker = %v, want (0:5)", b.Marker())
	}
}

func TestCopyPaste(t *testing.T) {
	clip := &fakeClipboard{}
	b := NewFromString("hello world", WithClipboard(clip))
	for i := 0; i < 5; i++ {
		b.CursorSelectRight()
	}

	b.Copy()
	if !reflect.DeepEqual(clip.copied, []string{"hello"}) {
		t.Fatalf("copied = %q", clip.copied)
	}

	b.SelectionNone()
	b.CursorEndOfLine()
	b.Paste()
	assertLines(t, b, "hello worldhello")
	assertCursor(t, b, 0, 16)
}

func TestPasteFromSystemClipboard(t *testing.T) {
	clip := &fakeClipboard{paste: "x\r\ny"}
	b := NewFromString("ab", WithClipboard(clip))
	b.CursorRight()

	b.Paste()
	assertLines(t, b, "ax", "yb")
	assertCursor(t, b, 1, 1)

	b.Undo()
	assertLines(t, b, "ab")
}

func TestCut(t *testing.T) {
	b := NewFromString("a\nb\nc")
	b.SelectLineAt(0)

	b.Cut()
	assertLines(t, b, "b", "c")
	if got := b.Clips(); len(got) != 1 || !reflect.DeepEqual(got[0], []string{"a", ""}) {
		t.Fatalf("Clips() = %q", got)
	}

	b.CursorDown()
	b.Paste()
	assertLines(t, b, "b", "a", "c")
}

func TestPasteEmpty(t *testing.T) {
	b := NewFromString("ab")
	b.Paste()
	assertLines(t, b, "ab")
	if b.Log().Len() != 0 {
		t.Errorf("log length = %d, want 0", b.Log().Len())
	}
}
