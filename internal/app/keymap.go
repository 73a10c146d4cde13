package app

import (
	"context"
	"errors"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cistorm/internal/engine"
	"github.com/dshills/cistorm/internal/engine/buffer"
)

// command is one user action bound to a key.
type command func(a *Application) error

// edit adapts a buffer operation to a command.
func edit(op func(b *buffer.TextBuffer)) command {
	return func(a *Application) error {
		op(a.doc.Buffer())
		return nil
	}
}

// defaultKeys is the cua-style key table.
func defaultKeys() map[tcell.Key]command {
	return map[tcell.Key]command{
		tcell.KeyCtrlA: edit((*buffer.TextBuffer).SelectionAll),
		tcell.KeyCtrlC: edit((*buffer.TextBuffer).Copy),
		tcell.KeyCtrlX: edit((*buffer.TextBuffer).Cut),
		tcell.KeyCtrlV: edit((*buffer.TextBuffer).Paste),
		tcell.KeyCtrlZ: edit((*buffer.TextBuffer).Undo),
		tcell.KeyCtrlY: edit((*buffer.TextBuffer).Redo),
		tcell.KeyCtrlK: edit((*buffer.TextBuffer).DeleteToEndOfLine),
		tcell.KeyCtrlG: edit((*buffer.TextBuffer).FindAgain),
		tcell.KeyCtrlP: edit((*buffer.TextBuffer).FindBack),
		tcell.KeyCtrlL: edit(func(b *buffer.TextBuffer) {
			b.SelectLineAt(b.Cursor().Row)
		}),
		tcell.KeyCtrlF: (*Application).promptFind,
		tcell.KeyCtrlR: (*Application).promptReplace,
		tcell.KeyCtrlE: (*Application).promptScript,
		tcell.KeyCtrlS: (*Application).save,
		tcell.KeyCtrlQ: (*Application).quit,

		tcell.KeyEnter:      edit((*buffer.TextBuffer).CarriageReturn),
		tcell.KeyBackspace:  edit((*buffer.TextBuffer).Backspace),
		tcell.KeyBackspace2: edit((*buffer.TextBuffer).Backspace),
		tcell.KeyDelete:     edit((*buffer.TextBuffer).Delete),
		tcell.KeyTab:        (*Application).tab,
		tcell.KeyBacktab:    edit((*buffer.TextBuffer).Unindent),
		tcell.KeyEscape:     edit((*buffer.TextBuffer).SelectionNone),
		tcell.KeyHome:       edit((*buffer.TextBuffer).CursorStartOfLine),
		tcell.KeyEnd:        edit((*buffer.TextBuffer).CursorEndOfLine),
		tcell.KeyPgUp:       edit((*buffer.TextBuffer).CursorPageUp),
		tcell.KeyPgDn:       edit((*buffer.TextBuffer).CursorPageDown),
	}
}

// handleKey runs the command bound to a key and keeps the cursor visible.
func (a *Application) handleKey(ev *tcell.EventKey) error {
	buf := a.doc.Buffer()
	var err error
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModAlt == 0 {
			buf.InsertPrintable(ev.Rune())
		}
	case tcell.KeyLeft, tcell.KeyRight, tcell.KeyUp, tcell.KeyDown:
		arrow(buf, ev.Key(), ev.Modifiers())
	default:
		cmd, ok := a.keys[ev.Key()]
		if !ok {
			a.logger.Debug("unbound key", "key", ev.Name())
			return nil
		}
		err = cmd(a)
	}
	buf.UpdateScrollPosition()
	return err
}

func arrow(b *buffer.TextBuffer, k tcell.Key, mod tcell.ModMask) {
	shift := mod&tcell.ModShift != 0
	ctrl := mod&tcell.ModCtrl != 0
	switch k {
	case tcell.KeyLeft:
		switch {
		case shift && ctrl:
			b.CursorSelectWordLeft()
		case shift:
			b.CursorSelectLeft()
		case ctrl:
			b.CursorWordLeft()
		default:
			b.CursorLeft()
		}
	case tcell.KeyRight:
		switch {
		case shift && ctrl:
			b.CursorSelectWordRight()
		case shift:
			b.CursorSelectRight()
		case ctrl:
			b.CursorWordRight()
		default:
			b.CursorRight()
		}
	case tcell.KeyUp:
		switch {
		case shift:
			b.CursorSelectUp()
		case ctrl:
			b.ScrollWindow(-1)
		default:
			b.CursorUp()
		}
	case tcell.KeyDown:
		switch {
		case shift && ctrl:
			b.CursorSelectLineDown()
		case shift:
			b.CursorSelectDown()
		case ctrl:
			b.ScrollWindow(1)
		default:
			b.CursorDown()
		}
	}
}

// tab indents the selected rows, or inserts spaces to the next indent stop.
func (a *Application) tab() error {
	buf := a.doc.Buffer()
	if buf.SelectionMode() != buffer.SelectionNone {
		buf.Indent()
		return nil
	}
	n := a.indentWidth - buf.Cursor().Col%a.indentWidth
	buf.Insert(strings.Repeat(" ", n))
	return nil
}

func (a *Application) promptFind() error {
	last := ""
	if re := a.doc.Buffer().FindPattern(); re != nil {
		last = re.String()
	}
	a.prompt = newPrompt("Find: ", last, func(a *Application, text string) error {
		a.doc.Buffer().Find(text)
		return nil
	})
	return nil
}

func (a *Application) promptReplace() error {
	a.prompt = newPrompt("Replace /find/replace/flags: ", "", func(a *Application, text string) error {
		a.doc.Buffer().FindReplace(text)
		return nil
	})
	return nil
}

func (a *Application) promptScript() error {
	a.prompt = newPrompt("Lua: ", "", func(a *Application, text string) error {
		if err := a.script.DoString(context.Background(), text); err != nil {
			a.doc.SetMessage(err.Error())
		}
		return nil
	})
	return nil
}

// save writes the document, asking before overwriting a file that changed
// on disk.
func (a *Application) save() error {
	err := a.doc.Save()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrFileChanged):
		a.prompt = newConfirm("File changed on disk. Overwrite? (y/n) ", func(a *Application, yes bool) error {
			if yes {
				a.saveForce()
			}
			return nil
		})
	case errors.Is(err, engine.ErrNoPath):
		a.doc.SetMessage("No file name")
	default:
		a.logger.Error("save failed", "path", a.doc.Path(), "error", err)
	}
	return nil
}

func (a *Application) saveForce() {
	if err := a.doc.SaveForce(); err != nil {
		a.logger.Error("save failed", "path", a.doc.Path(), "error", err)
	}
}

// quit exits, offering to save unsaved changes first.
func (a *Application) quit() error {
	if !a.doc.IsDirty() {
		return ErrQuit
	}
	a.prompt = newConfirm("Save changes before quitting? (y/n) ", func(a *Application, yes bool) error {
		if !yes {
			return ErrQuit
		}
		if err := a.doc.Save(); err != nil {
			a.logger.Warn("save before quit failed", "path", a.doc.Path(), "error", err)
			return nil
		}
		return ErrQuit
	})
	return nil
}
