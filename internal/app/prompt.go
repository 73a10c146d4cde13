package app

import (
	"github.com/gdamore/tcell/v2"
)

// prompt is a one-line input shown in place of the status line.
type prompt struct {
	label string
	text  []rune

	// confirm prompts finish on the first y or n.
	confirm bool
	done    func(a *Application, text string) error
}

func newPrompt(label, initial string, done func(a *Application, text string) error) *prompt {
	return &prompt{label: label, text: []rune(initial), done: done}
}

func newConfirm(label string, done func(a *Application, yes bool) error) *prompt {
	return &prompt{
		label:   label,
		confirm: true,
		done: func(a *Application, text string) error {
			return done(a, text == "y")
		},
	}
}

// handle processes a key while the prompt is open.
func (p *prompt) handle(a *Application, ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.prompt = nil
	case tcell.KeyEnter:
		if p.confirm {
			return nil
		}
		a.prompt = nil
		return p.finish(a, string(p.text))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.text) > 0 {
			p.text = p.text[:len(p.text)-1]
		}
	case tcell.KeyCtrlU:
		p.text = p.text[:0]
	case tcell.KeyRune:
		r := ev.Rune()
		if !p.confirm {
			p.text = append(p.text, r)
			return nil
		}
		switch r {
		case 'y', 'Y':
			a.prompt = nil
			return p.finish(a, "y")
		case 'n', 'N':
			a.prompt = nil
			return p.finish(a, "n")
		}
	}
	return nil
}

func (p *prompt) finish(a *Application, text string) error {
	err := p.done(a, text)
	a.doc.Buffer().UpdateScrollPosition()
	return err
}
