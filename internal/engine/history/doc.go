// Package history provides the change log behind undo/redo for a text buffer.
//
// Every mutation of a buffer is described by a Change record. Records are
// appended to a Log and then replayed against the buffer with Redo; Undo
// applies the inverse of the most recent applied record. The log is linear:
// appending while positioned in the middle of the history discards the
// redo-only tail.
//
// # Records
//
// Change is a closed set of payload types, one per Kind:
//   - Insert, Backspace, Delete: single-line text edits at the cursor
//   - DeleteRange, DeleteSelection: multi-line removals
//   - Join, SplitLines, Paste: line structure edits
//   - VerticalInsert, VerticalDelete, VerticalBackspace: column edits over rows
//   - Move: positional deltas (cursor, goal column, scroll, marker, selection)
//   - LineDiff: a compressed whole-document diff
//
// # Coalescing
//
// Append merges a record into the previous one when both are Insert, both
// are Delete, both are Move or both are SplitLines, unless the document was
// saved between them. Merging undoes the tail from the buffer, pops it and
// appends the merged record; the caller's next Redo applies it. Zero moves
// are dropped.
//
// # Move chaining
//
// Redo keeps going while the next record is a Move, so moves replay with the
// edit before them. Undo reverts one record and reports whether it was a
// Move; the log itself never chains backward. Callers wanting a single user
// level undo loop while Undo returns true.
//
// # Usage
//
//	log := history.NewLog()
//	log.Append(buf, history.Insert{Text: "x"})
//	log.Redo(buf)
//	for log.Undo(buf) {
//	}
package history
