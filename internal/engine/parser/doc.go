// Package parser splits document text into spans of syntax regions.
//
// Parsing walks the text with a stack of grammars. At each step the grammar
// on top of the stack searches the rest of the text for its earliest escape,
// end, child start or newline. Escapes are skipped, an end pops the stack and
// resumes the parent, a child start pushes the child and a newline starts a
// new row. A region whose end never appears is popped and its parent resumes
// at the same point.
//
// The result is a SpanIndex with a flat view for offset lookups and a row
// view for (row, col) lookups, both searched with sort.Search. Each pass is
// bounded by a leash; a pass that runs out returns ErrLeashExhausted together
// with a usable index.
//
// The parser keeps the grammar stack recorded at the start of every row, so
// after an edit a pass can resume at the first changed row instead of row 0:
//
//	p := parser.New()
//	idx, err := p.Parse(text, root, 0, parser.ToEnd)
//	// ... edit row 40 ...
//	idx, err = p.Parse(newText, root, 40, parser.ToEnd)
package parser
