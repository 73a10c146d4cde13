package history

import "fmt"

// Kind identifies the type of a change record.
type Kind uint8

const (
	KindInsert Kind = iota
	KindBackspace
	KindDelete
	KindDeleteRange
	KindDeleteSelection
	KindJoin
	KindSplitLines
	KindPaste
	KindVerticalInsert
	KindVerticalDelete
	KindVerticalBackspace
	KindMove
	KindLineDiff
)

var kindNames = [...]string{
	KindInsert:            "insert",
	KindBackspace:         "backspace",
	KindDelete:            "delete",
	KindDeleteRange:       "deleteRange",
	KindDeleteSelection:   "deleteSelection",
	KindJoin:              "join",
	KindSplitLines:        "splitLines",
	KindPaste:             "paste",
	KindVerticalInsert:    "verticalInsert",
	KindVerticalDelete:    "verticalDelete",
	KindVerticalBackspace: "verticalBackspace",
	KindMove:              "move",
	KindLineDiff:          "lineDiff",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Change is one recorded buffer mutation. The set of implementations is
// closed; the buffer dispatches on the concrete type.
type Change interface {
	Kind() Kind
	change()
}

// Insert inserts Text at the cursor and advances the cursor past it.
type Insert struct{ Text string }

// Backspace removes Text immediately before the cursor.
type Backspace struct{ Text string }

// Delete removes Text immediately after the cursor.
type Delete struct{ Text string }

// Range is a span of document positions; End is exclusive.
type Range struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// DeleteRange removes an arbitrary range. Lines holds the removed text split
// on line breaks.
type DeleteRange struct {
	Range Range
	Lines []string
}

// DeleteSelection removes the active selection. Range is the selection
// extent at the time of the edit. For block selections Range is a rectangle
// and Lines holds one entry per row; otherwise Lines holds the removed text
// split on line breaks.
type DeleteSelection struct {
	Range Range
	Block bool
	Lines []string
}

// Join merges the cursor row with the row below it.
type Join struct{}

// SplitLines splits the cursor row at the cursor column and inserts Count
// line breaks.
type SplitLines struct{ Count int }

// Paste inserts a block of lines at the cursor.
type Paste struct{ Lines []string }

// VerticalInsert inserts Text at the cursor column on every row in
// [Top, Bottom].
type VerticalInsert struct {
	Text        string
	Top, Bottom int
}

// VerticalDelete removes len(Text) bytes at the cursor column on every row
// in [Top, Bottom].
type VerticalDelete struct {
	Text        string
	Top, Bottom int
}

// VerticalBackspace moves the cursor left by len(Text) and removes Text at
// the new cursor column on every row in [Top, Bottom].
type VerticalBackspace struct {
	Text        string
	Top, Bottom int
}

// Move applies positional deltas to the buffer. It never changes content.
type Move struct{ Delta MoveDelta }

// LineDiff replaces the document by applying a compressed diff.
type LineDiff struct{ Ops []DiffOp }

func (Insert) Kind() Kind            { return KindInsert }
func (Backspace) Kind() Kind         { return KindBackspace }
func (Delete) Kind() Kind            { return KindDelete }
func (DeleteRange) Kind() Kind       { return KindDeleteRange }
func (DeleteSelection) Kind() Kind   { return KindDeleteSelection }
func (Join) Kind() Kind              { return KindJoin }
func (SplitLines) Kind() Kind        { return KindSplitLines }
func (Paste) Kind() Kind             { return KindPaste }
func (VerticalInsert) Kind() Kind    { return KindVerticalInsert }
func (VerticalDelete) Kind() Kind    { return KindVerticalDelete }
func (VerticalBackspace) Kind() Kind { return KindVerticalBackspace }
func (Move) Kind() Kind              { return KindMove }
func (LineDiff) Kind() Kind          { return KindLineDiff }

func (Insert) change()            {}
func (Backspace) change()         {}
func (Delete) change()            {}
func (DeleteRange) change()       {}
func (DeleteSelection) change()   {}
func (Join) change()              {}
func (SplitLines) change()        {}
func (Paste) change()             {}
func (VerticalInsert) change()    {}
func (VerticalDelete) change()    {}
func (VerticalBackspace) change() {}
func (Move) change()              {}
func (LineDiff) change()          {}

// MoveDelta holds the deltas carried by a Move record.
type MoveDelta struct {
	CursorRow, CursorCol int
	GoalCol              int
	ScrollRow, ScrollCol int
	MarkerRow, MarkerCol int
	MarkerEndRow         int
	MarkerEndCol         int
	SelectionMode        int
}

// Add returns the component-wise sum of d and o.
func (d MoveDelta) Add(o MoveDelta) MoveDelta {
	return MoveDelta{
		CursorRow:     d.CursorRow + o.CursorRow,
		CursorCol:     d.CursorCol + o.CursorCol,
		GoalCol:       d.GoalCol + o.GoalCol,
		ScrollRow:     d.ScrollRow + o.ScrollRow,
		ScrollCol:     d.ScrollCol + o.ScrollCol,
		MarkerRow:     d.MarkerRow + o.MarkerRow,
		MarkerCol:     d.MarkerCol + o.MarkerCol,
		MarkerEndRow:  d.MarkerEndRow + o.MarkerEndRow,
		MarkerEndCol:  d.MarkerEndCol + o.MarkerEndCol,
		SelectionMode: d.SelectionMode + o.SelectionMode,
	}
}

// IsZero reports whether every delta is zero.
func (d MoveDelta) IsZero() bool {
	return d == MoveDelta{}
}

// DiffOpKind identifies an entry in a LineDiff.
type DiffOpKind uint8

const (
	// DiffKeep keeps Count unchanged lines.
	DiffKeep DiffOpKind = iota
	// DiffInsert adds Line.
	DiffInsert
	// DiffRemove removes Line.
	DiffRemove
)

// DiffOp is one entry of a LineDiff.
type DiffOp struct {
	Op    DiffOpKind
	Count int
	Line  string
}

// Keep returns a DiffOp keeping n lines.
func Keep(n int) DiffOp { return DiffOp{Op: DiffKeep, Count: n} }

// Added returns a DiffOp inserting line.
func Added(line string) DiffOp { return DiffOp{Op: DiffInsert, Line: line} }

// Removed returns a DiffOp removing line.
func Removed(line string) DiffOp { return DiffOp{Op: DiffRemove, Line: line} }

// String renders the op the way diff tools do: a count, or a tagged line.
func (o DiffOp) String() string {
	switch o.Op {
	case DiffInsert:
		return "+ " + o.Line
	case DiffRemove:
		return "- " + o.Line
	default:
		return fmt.Sprintf("%d", o.Count)
	}
}

// ApplyDiff rebuilds lines from a diff. With reverse set the roles of
// inserted and removed lines are swapped, which undoes the diff.
func ApplyDiff(lines []string, ops []DiffOp, reverse bool) []string {
	out := make([]string, 0, len(lines))
	index := 0
	for _, op := range ops {
		switch {
		case op.Op == DiffKeep:
			if index < len(lines) {
				out = append(out, lines[index:min(index+op.Count, len(lines))]...)
			}
			index += op.Count
		case (op.Op == DiffInsert) != reverse:
			out = append(out, op.Line)
		default:
			index++
		}
	}
	return out
}

// FirstChangedRow returns the row of the first line touched by ops.
func FirstChangedRow(ops []DiffOp) int {
	if len(ops) > 0 && ops[0].Op == DiffKeep {
		return ops[0].Count
	}
	return 0
}
