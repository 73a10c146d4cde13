package history

// Target is the object a Log replays changes against.
type Target interface {
	// Apply performs c in the forward direction.
	Apply(c Change)
	// Revert performs the inverse of c.
	Revert(c Change)
}

// Log is a linear, replayable history of changes.
//
// Entries before Position have been applied to the target; entries at or
// after it are redo history. Log is not safe for concurrent use; a document
// and its log belong to a single goroutine.
type Log struct {
	entries  []Change
	position int
	savedAt  int
}

// NewLog creates an empty log whose initial state counts as saved.
func NewLog() *Log {
	return &Log{}
}

// Append records c as the next change without applying it. Redo history past
// the current position is discarded. Call Redo to enact the change.
//
// When the previous entry has the same coalescable kind and the document has
// not been saved at the current position, the previous entry is reverted
// from t, removed and merged into c.
func (l *Log) Append(t Target, c Change) {
	if l.position < l.savedAt {
		l.savedAt = -1
	}
	l.entries = l.entries[:l.position]

	if n := len(l.entries); n > 0 && l.savedAt != l.position {
		if merged, ok := merge(l.entries[n-1], c); ok {
			l.Undo(t)
			l.entries = l.entries[:n-1]
			c = merged
		}
	}

	if m, ok := c.(Move); ok && m.Delta.IsZero() {
		return
	}
	l.entries = append(l.entries, c)
}

// merge combines prev and next into a single change when their kinds
// coalesce.
func merge(prev, next Change) (Change, bool) {
	switch n := next.(type) {
	case Insert:
		if p, ok := prev.(Insert); ok {
			return Insert{Text: p.Text + n.Text}, true
		}
	case Delete:
		if p, ok := prev.(Delete); ok {
			return Delete{Text: p.Text + n.Text}, true
		}
	case Move:
		if p, ok := prev.(Move); ok {
			return Move{Delta: p.Delta.Add(n.Delta)}, true
		}
	case SplitLines:
		if p, ok := prev.(SplitLines); ok {
			return SplitLines{Count: p.Count + n.Count}, true
		}
	}
	return nil, false
}

// Redo applies the entry at the current position, then keeps applying while
// the next entry is a Move. At the end of the log it does nothing.
func (l *Log) Redo(t Target) {
	if l.position >= len(l.entries) {
		return
	}
	for {
		c := l.entries[l.position]
		l.position++
		t.Apply(c)
		if l.position >= len(l.entries) || l.entries[l.position].Kind() != KindMove {
			return
		}
	}
}

// Undo reverts the most recently applied entry and reports whether it was a
// Move. At the start of the log it does nothing and returns false.
func (l *Log) Undo(t Target) bool {
	if l.position == 0 {
		return false
	}
	l.position--
	c := l.entries[l.position]
	t.Revert(c)
	return c.Kind() == KindMove
}

// IsDirty reports whether the target holds non-trivial changes since the
// last MarkSaved. A single Move between the save point and the current
// position does not count.
func (l *Log) IsDirty() bool {
	if l.savedAt < 0 {
		return true
	}
	switch l.savedAt {
	case l.position:
		return false
	case l.position + 1:
		return l.entries[l.position].Kind() != KindMove
	case l.position - 1:
		return l.entries[l.position-1].Kind() != KindMove
	}
	return true
}

// MarkSaved records the current position as the save point.
func (l *Log) MarkSaved() {
	l.savedAt = l.position
}

// CanUndo reports whether there is an applied entry to revert.
func (l *Log) CanUndo() bool {
	return l.position > 0
}

// CanRedo reports whether there is redo history.
func (l *Log) CanRedo() bool {
	return l.position < len(l.entries)
}

// Position returns the number of applied entries.
func (l *Log) Position() int {
	return l.position
}

// SavedAt returns the save point, or -1 when it was lost to truncation.
func (l *Log) SavedAt() int {
	return l.savedAt
}

// Len returns the number of entries, including redo history.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the recorded entries.
func (l *Log) Entries() []Change {
	out := make([]Change, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recently applied entry.
func (l *Log) Last() (Change, bool) {
	if l.position == 0 {
		return nil, false
	}
	return l.entries[l.position-1], true
}
