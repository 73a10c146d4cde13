// Package engine provides the document facade of the editor.
//
// A Document ties together the pieces in the sub-packages:
//
//   - buffer: lines, cursor, selection and the edit operations
//   - history: the change log behind undo and redo
//   - grammar: syntax rules and the registry that maps files to them
//   - parser: the incremental lexer that produces span indexes
//   - profile: timing statistics
//
// # Basic Usage
//
//	doc, err := engine.New()
//	if err != nil {
//	    return err
//	}
//	if err := doc.Load("main.c"); err != nil {
//	    return err
//	}
//
//	buf := doc.Buffer()
//	buf.Insert("int x;")
//	buf.CarriageReturn()
//	buf.Undo()
//
//	// Spans for the visible rows.
//	idx, err := doc.SpanIndex(buf.Scroll().Row + rows)
//
// # Parsing
//
// SpanIndex parses lazily. The buffer records the earliest row changed by an
// edit and the next call resumes parsing there, reusing the rows before it.
// A pass that hits the parser leash returns parser.ErrLeashExhausted along
// with a usable index and sets the document message.
//
// # Saving
//
// Save refuses to overwrite a file that changed on disk since it was loaded
// and returns ErrFileChanged; SaveForce writes regardless. A failed write
// leaves the buffer and its history untouched.
//
// # Thread Safety
//
// Documents are not safe for concurrent use. The editor loop owns them and
// other goroutines deliver work to it as events.
package engine
