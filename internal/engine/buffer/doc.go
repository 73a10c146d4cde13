// Package buffer provides the line-based text buffer of the editor engine.
//
// A TextBuffer holds the document as a slice of lines together with the
// cursor, the selection marker, the selection mode and the scroll position.
// Content and positional state change only through history records: every
// user operation builds one or more records describing the delta from the
// current state, appends them to the buffer's change log and replays them.
// The buffer itself is the log's Target, so undo and redo are exact.
//
// Basic usage:
//
//	buf := buffer.New()
//	buf.Insert("Hello")
//	buf.CarriageReturn()
//	buf.Insert("World")
//	buf.Undo()
//
// Coordinates:
//
// Rows and columns are 0-indexed. Columns are byte offsets into the line.
// After every operation 0 <= cursorRow < LineCount() and
// 0 <= cursorCol <= len(Line(cursorRow)).
//
// Persistence:
//
// Serialize and Deserialize convert between stored bytes and lines. Control
// bytes other than newline are kept in lines as a \x01 marker followed by two
// hex digits so that they survive editing and round-trip exactly.
//
// Thread Safety:
//
// TextBuffer is not safe for concurrent use. A document is owned by the
// goroutine that runs the editor loop.
package buffer
