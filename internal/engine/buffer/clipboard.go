package buffer

import "github.com/dshills/cistorm/internal/engine/history"

// Clipboard is a system clipboard. Copy and Paste are best effort; the
// buffer also keeps its own list of copied text.
type Clipboard interface {
	Copy(text string)
	Paste() (string, bool)
}

// Copy copies the selected text.
func (b *TextBuffer) Copy() {
	text := b.SelectedText()
	if !hasText(text) {
		return
	}
	b.clips = append(b.clips, text)
	if b.clipboard != nil {
		b.clipboard.Copy(string(Serialize(text)))
	}
}

// Cut copies the selected text, then removes it.
func (b *TextBuffer) Cut() {
	b.Copy()
	b.performDelete()
}

// Paste inserts the system clipboard contents, or the most recent copy when
// the system clipboard is empty, replacing any selection.
func (b *TextBuffer) Paste() {
	var clip []string
	if b.clipboard != nil {
		if text, ok := b.clipboard.Paste(); ok && text != "" {
			clip = b.Decode([]byte(text))
		}
	}
	if clip == nil && len(b.clips) > 0 {
		clip = b.clips[len(b.clips)-1]
	}
	if clip == nil {
		b.logger.Debug("paste with empty clipboard")
		return
	}
	b.PasteLines(clip)
}

// PasteLines inserts lines at the cursor, replacing any selection, and moves
// the cursor past them.
func (b *TextBuffer) PasteLines(clip []string) {
	if len(clip) == 0 {
		return
	}
	b.performDelete()
	b.record(history.Paste{Lines: clip})
	end := endOf(b.Cursor(), clip)
	b.moveCursor(end.Row-b.cursorRow, end.Col-b.cursorCol, end.Col-b.goalCol)
}

// Clips returns the texts copied in this buffer, oldest first.
func (b *TextBuffer) Clips() [][]string {
	return b.clips
}
