package buffer

import (
	"reflect"
	"strings"
	"testing"
)

func TestMouseClick(t *testing.T) {
	b := NewFromString("abc\ndef")

	b.MouseClick(1, 2, false)
	assertCursor(t, b, 1, 2)
	if b.SelectionMode() != SelectionNone {
		t.Errorf("selection mode = %v, want none", b.SelectionMode())
	}

	b.MouseClick(9, 9, false)
	assertCursor(t, b, 1, 3)
}

func TestMouseShiftClickSelects(t *testing.T) {
	b := NewFromString("abc\ndef")

	b.MouseClick(1, 2, true)
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"abc", "de"}) {
		t.Errorf("SelectedText() = %q", got)
	}
}

func TestMouseDoubleClick(t *testing.T) {
	b := NewFromString("foo bar_baz")

	b.MouseDoubleClick(0, 5)
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"bar_baz"}) {
		t.Errorf("SelectedText() = %q", got)
	}
}

func TestMouseTripleClick(t *testing.T) {
	b := NewFromString("abc\ndef")

	b.MouseTripleClick(1, 0)
	if b.SelectionMode() != SelectionLine {
		t.Fatalf("selection mode = %v, want line", b.SelectionMode())
	}
	if got := b.SelectedText(); !reflect.DeepEqual(got, []string{"def"}) {
		t.Errorf("SelectedText() = %q", got)
	}
}

func TestMouseWheel(t *testing.T) {
	b := NewFromString(strings.Repeat("x\n", 29)+"x", WithViewSize(10, 40))

	b.MouseWheelUp(false)
	if b.Scroll().Row != 0 {
		t.Errorf("scrolled above the top: %v", b.Scroll())
	}

	b.MouseWheelDown(false)
	if b.Scroll().Row != 1 {
		t.Errorf("scroll row = %d, want 1", b.Scroll().Row)
	}
	assertCursor(t, b, 1, 0)

	b.MouseWheelUp(false)
	if b.Scroll().Row != 0 {
		t.Errorf("scroll row = %d, want 0", b.Scroll().Row)
	}
}
