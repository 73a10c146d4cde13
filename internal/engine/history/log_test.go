package history

import (
	"fmt"
	"testing"
)

// textTarget is a single-line target with a cursor, enough to observe the
// ordering of Apply and Revert calls.
type textTarget struct {
	text   string
	cursor int
	breaks int
	calls  []string
}

func (tt *textTarget) Apply(c Change) {
	tt.calls = append(tt.calls, "apply:"+c.Kind().String())
	switch v := c.(type) {
	case Insert:
		tt.text = tt.text[:tt.cursor] + v.Text + tt.text[tt.cursor:]
		tt.cursor += len(v.Text)
	case Delete:
		tt.text = tt.text[:tt.cursor] + tt.text[tt.cursor+len(v.Text):]
	case Move:
		tt.cursor += v.Delta.CursorCol
	case SplitLines:
		tt.breaks += v.Count
	default:
		panic(fmt.Sprintf("unexpected change %T", c))
	}
}

func (tt *textTarget) Revert(c Change) {
	tt.calls = append(tt.calls, "revert:"+c.Kind().String())
	switch v := c.(type) {
	case Insert:
		tt.text = tt.text[:tt.cursor-len(v.Text)] + tt.text[tt.cursor:]
		tt.cursor -= len(v.Text)
	case Delete:
		tt.text = tt.text[:tt.cursor] + v.Text + tt.text[tt.cursor:]
	case Move:
		tt.cursor -= v.Delta.CursorCol
	case SplitLines:
		tt.breaks -= v.Count
	default:
		panic(fmt.Sprintf("unexpected change %T", c))
	}
}

func do(l *Log, t Target, c Change) {
	l.Append(t, c)
	l.Redo(t)
}

func moveCol(n int) Move {
	return Move{Delta: MoveDelta{CursorCol: n}}
}

func TestLogInsertCoalesces(t *testing.T) {
	l := NewLog()
	tt := &textTarget{}

	for _, s := range []string{"a", "b", "c"} {
		do(l, tt, Insert{Text: s})
	}

	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if got, ok := l.entries[0].(Insert); !ok || got.Text != "abc" {
		t.Errorf("entry = %#v, want Insert{abc}", l.entries[0])
	}
	if tt.text != "abc" || tt.cursor != 3 {
		t.Errorf("target = %q@%d, want abc@3", tt.text, tt.cursor)
	}

	l.Undo(tt)
	if tt.text != "" || tt.cursor != 0 {
		t.Errorf("after undo target = %q@%d, want empty", tt.text, tt.cursor)
	}
}

func TestLogCoalescing(t *testing.T) {
	tests := []struct {
		name    string
		changes []Change
		want    []Change
	}{
		{
			name:    "delete",
			changes: []Change{Delete{Text: "x"}, Delete{Text: "y"}},
			want:    []Change{Delete{Text: "xy"}},
		},
		{
			name:    "move",
			changes: []Change{moveCol(1), moveCol(2)},
			want:    []Change{moveCol(3)},
		},
		{
			name:    "split lines",
			changes: []Change{SplitLines{Count: 1}, SplitLines{Count: 2}},
			want:    []Change{SplitLines{Count: 3}},
		},
		{
			name:    "different kinds",
			changes: []Change{Insert{Text: "a"}, moveCol(-1), Delete{Text: "a"}},
			want:    []Change{Insert{Text: "a"}, moveCol(-1), Delete{Text: "a"}},
		},
		{
			name:    "moves cancel out",
			changes: []Change{Insert{Text: "ab"}, moveCol(-1), moveCol(1)},
			want:    []Change{Insert{Text: "ab"}},
		},
		{
			name:    "zero move dropped",
			changes: []Change{Insert{Text: "a"}, Move{}},
			want:    []Change{Insert{Text: "a"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLog()
			tt := &textTarget{text: "xyz"}
			for _, c := range tc.changes {
				do(l, tt, c)
			}
			got := l.Entries()
			if len(got) != len(tc.want) {
				t.Fatalf("entries = %v, want %v", got, tc.want)
			}
			for i := range got {
				if fmt.Sprint(got[i]) != fmt.Sprint(tc.want[i]) {
					t.Errorf("entry %d = %#v, want %#v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestLogNoCoalesceAcrossSave(t *testing.T) {
	l := NewLog()
	tt := &textTarget{}

	do(l, tt, Insert{Text: "a"})
	l.MarkSaved()
	do(l, tt, Insert{Text: "b"})

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if !l.IsDirty() {
		t.Error("IsDirty() = false after edit past save point")
	}
	l.Undo(tt)
	if l.IsDirty() {
		t.Error("IsDirty() = true after undoing back to save point")
	}
	if tt.text != "a" {
		t.Errorf("text = %q, want a", tt.text)
	}
}

func TestLogRedoChainsMoves(t *testing.T) {
	l := NewLog()
	tt := &textTarget{}

	do(l, tt, Insert{Text: "ab"})
	do(l, tt, moveCol(-1))
	do(l, tt, Delete{Text: "b"})
	do(l, tt, moveCol(-1))

	if tt.text != "a" || tt.cursor != 0 {
		t.Fatalf("target = %q@%d, want a@0", tt.text, tt.cursor)
	}

	// Undo is single step and reports moves.
	if !l.Undo(tt) {
		t.Error("Undo() of move = false, want true")
	}
	if l.Undo(tt) {
		t.Error("Undo() of delete = true, want false")
	}
	if !l.Undo(tt) {
		t.Error("Undo() of move = false, want true")
	}
	if l.Position() != 1 {
		t.Fatalf("Position() = %d, want 1", l.Position())
	}

	// Redo applies the move chained after the insert.
	tt.calls = nil
	l.Undo(tt)
	l.Redo(tt)
	want := []string{"revert:insert", "apply:insert", "apply:move"}
	if fmt.Sprint(tt.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", tt.calls, want)
	}
	if l.Position() != 2 {
		t.Errorf("Position() = %d, want 2", l.Position())
	}
}

func TestLogBoundaries(t *testing.T) {
	l := NewLog()
	tt := &textTarget{}

	if l.Undo(tt) {
		t.Error("Undo() on empty log = true")
	}
	l.Redo(tt)
	if len(tt.calls) != 0 {
		t.Errorf("calls on empty log = %v", tt.calls)
	}
	if l.IsDirty() {
		t.Error("new log is dirty")
	}
	if l.CanUndo() || l.CanRedo() {
		t.Error("new log can undo or redo")
	}

	do(l, tt, Insert{Text: "a"})
	l.Redo(tt)
	if l.Position() != 1 || tt.text != "a" {
		t.Errorf("redo at end changed state: pos=%d text=%q", l.Position(), tt.text)
	}
}

func TestLogIsDirty(t *testing.T) {
	t.Run("move after save", func(t *testing.T) {
		l := NewLog()
		tt := &textTarget{text: "abc"}
		do(l, tt, Insert{Text: "x"})
		l.MarkSaved()
		do(l, tt, moveCol(-1))
		if l.IsDirty() {
			t.Error("IsDirty() = true with a single move past the save point")
		}
	})

	t.Run("move before save", func(t *testing.T) {
		l := NewLog()
		tt := &textTarget{text: "abc"}
		do(l, tt, moveCol(1))
		l.MarkSaved()
		l.Undo(tt)
		if l.IsDirty() {
			t.Error("IsDirty() = true with a single move before the save point")
		}
	})

	t.Run("truncation loses save point", func(t *testing.T) {
		l := NewLog()
		tt := &textTarget{}
		do(l, tt, Insert{Text: "a"})
		do(l, tt, moveCol(-1))
		do(l, tt, Insert{Text: "b"})
		l.MarkSaved()
		l.Undo(tt)
		l.Undo(tt)
		do(l, tt, Insert{Text: "c"})
		if l.SavedAt() != -1 {
			t.Errorf("SavedAt() = %d, want -1", l.SavedAt())
		}
		if !l.IsDirty() {
			t.Error("IsDirty() = false after truncating the save point")
		}
		for l.CanUndo() {
			l.Undo(tt)
		}
		if !l.IsDirty() {
			t.Error("IsDirty() = false at start after save point was lost")
		}
	})
}

func TestLogAppendTruncatesRedo(t *testing.T) {
	l := NewLog()
	tt := &textTarget{}

	do(l, tt, Insert{Text: "a"})
	do(l, tt, moveCol(-1))
	do(l, tt, Delete{Text: "a"})
	l.Undo(tt)
	if !l.CanRedo() {
		t.Fatal("CanRedo() = false after undo")
	}
	do(l, tt, Insert{Text: "z"})
	if l.CanRedo() {
		t.Error("CanRedo() = true after append")
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if tt.text != "za" {
		t.Errorf("text = %q, want za", tt.text)
	}
}

func TestApplyDiff(t *testing.T) {
	before := []string{"a", "b", "c"}
	ops := []DiffOp{Keep(1), Removed("b"), Added("B"), Added("B2"), Keep(1)}

	after := ApplyDiff(before, ops, false)
	if fmt.Sprint(after) != fmt.Sprint([]string{"a", "B", "B2", "c"}) {
		t.Errorf("ApplyDiff() = %q", after)
	}
	back := ApplyDiff(after, ops, true)
	if fmt.Sprint(back) != fmt.Sprint(before) {
		t.Errorf("reverse ApplyDiff() = %q, want %q", back, before)
	}
	if got := FirstChangedRow(ops); got != 1 {
		t.Errorf("FirstChangedRow() = %d, want 1", got)
	}
}

func TestKindString(t *testing.T) {
	if KindVerticalBackspace.String() != "verticalBackspace" {
		t.Errorf("String() = %q", KindVerticalBackspace.String())
	}
	if Kind(200).String() != "Kind(200)" {
		t.Errorf("String() = %q", Kind(200).String())
	}
}
