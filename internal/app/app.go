// Package app is the terminal front-end of the editor. It draws one document
// with tcell, maps keys and mouse input to buffer operations and relays file
// watcher events to the editor loop.
package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/cistorm/internal/engine"
	"github.com/dshills/cistorm/internal/script"
	"github.com/dshills/cistorm/internal/watcher"
)

// Application runs the editor loop for one document.
type Application struct {
	screen  tcell.Screen
	doc     *engine.Document
	watcher *watcher.Watcher
	script  *script.State
	logger  *slog.Logger

	keys        map[tcell.Key]command
	prompt      *prompt
	indentWidth int
	lineLimit   int
	initScript  string

	mouse   mouseState
	pasting bool
	pasted  strings.Builder

	running atomic.Bool
}

// Option configures an Application.
type Option func(*Application)

// WithScreen sets the screen. Without it a terminal screen is opened.
func WithScreen(s tcell.Screen) Option {
	return func(a *Application) {
		a.screen = s
	}
}

// WithWatcher reports changes made to the document's file by other programs.
func WithWatcher(w *watcher.Watcher) Option {
	return func(a *Application) {
		a.watcher = w
	}
}

// WithInitScript runs a Lua script before the first draw.
func WithInitScript(path string) Option {
	return func(a *Application) {
		a.initScript = path
	}
}

// WithIndentWidth sets the number of spaces Tab inserts.
func WithIndentWidth(n int) Option {
	return func(a *Application) {
		if n > 0 {
			a.indentWidth = n
		}
	}
}

// WithLineLimit marks a right margin column. Zero disables it.
func WithLineLimit(n int) Option {
	return func(a *Application) {
		a.lineLimit = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Application) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates the front-end for doc.
func New(doc *engine.Document, opts ...Option) (*Application, error) {
	a := &Application{
		doc:         doc,
		logger:      slog.New(slog.DiscardHandler),
		keys:        defaultKeys(),
		indentWidth: 2,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = WithComponent(a.logger, "app")

	if a.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		a.screen = s
	}
	a.script = script.New(doc,
		script.WithOutput(messageWriter{doc: doc}),
		script.WithLogger(a.logger))
	return a, nil
}

// Document returns the document being edited.
func (a *Application) Document() *engine.Document { return a.doc }

// Run draws the document and processes input until the user quits or ctx
// is canceled.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if err := a.init(); err != nil {
		return err
	}
	defer a.screen.Fini()
	defer a.script.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.startWatching(ctx)
	go func() {
		<-ctx.Done()
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(quitRequest{})) // best-effort; loop may have exited
	}()

	if a.initScript != "" {
		if err := a.script.DoFile(ctx, a.initScript); err != nil {
			a.logger.Warn("init script failed", "path", a.initScript, "error", err)
			a.doc.SetMessage(err.Error())
		}
	}

	a.logger.Info("editor started", "doc", a.doc.ID(), "path", a.doc.Path())
	for {
		a.draw()
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := a.handleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				a.logger.Info("editor stopped")
				return nil
			}
			return err
		}
	}
}

// init prepares the screen.
func (a *Application) init() error {
	if err := a.screen.Init(); err != nil {
		return err
	}
	a.screen.EnableMouse()
	a.screen.EnablePaste()
	a.resize()
	return nil
}

func (a *Application) resize() {
	w, h := a.screen.Size()
	buf := a.doc.Buffer()
	buf.SetViewSize(max(h-1, 1), max(w, 1))
	buf.UpdateScrollPosition()
}

// startWatching relays watcher events to the editor loop as interrupt
// events, so the document is only touched by the loop goroutine.
func (a *Application) startWatching(ctx context.Context) {
	if a.watcher == nil || a.doc.Path() == "" {
		return
	}
	if err := a.watcher.Watch(a.doc.Path()); err != nil {
		a.logger.Warn("cannot watch file", "path", a.doc.Path(), "error", err)
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-a.watcher.Events():
				if !ok {
					return
				}
				_ = a.screen.PostEvent(tcell.NewEventInterrupt(fileEvent{event: ev}))
			case err, ok := <-a.watcher.Errors():
				if !ok {
					return
				}
				a.logger.Warn("watcher error", "error", err)
			}
		}
	}()
}

type quitRequest struct{}

type fileEvent struct {
	event watcher.Event
}

// handleEvent processes one screen event. It returns ErrQuit when the
// editor should exit.
func (a *Application) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	case *tcell.EventKey:
		if a.pasting {
			a.collectPaste(ev)
			return nil
		}
		if a.prompt != nil {
			return a.prompt.handle(a, ev)
		}
		return a.handleKey(ev)
	case *tcell.EventMouse:
		if a.prompt == nil {
			a.handleMouse(ev)
		}
	case *tcell.EventPaste:
		a.handlePaste(ev)
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case quitRequest:
			return ErrQuit
		case fileEvent:
			a.handleFileEvent(data.event)
		}
	}
	return nil
}

func (a *Application) handleFileEvent(ev watcher.Event) {
	a.logger.Debug("file event", "path", ev.Path, "op", ev.Op.String())
	if !a.doc.IsSafeToWrite() {
		a.doc.SetMessage(engine.MsgFileChanged)
	}
}

func (a *Application) handlePaste(ev *tcell.EventPaste) {
	if ev.Start() {
		a.pasting = true
		a.pasted.Reset()
		return
	}
	a.pasting = false
	if a.pasted.Len() == 0 {
		return
	}
	buf := a.doc.Buffer()
	buf.PasteLines(buf.Decode([]byte(a.pasted.String())))
	buf.UpdateScrollPosition()
}

func (a *Application) collectPaste(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		a.pasted.WriteRune(ev.Rune())
	case tcell.KeyEnter:
		a.pasted.WriteByte('\n')
	case tcell.KeyTab:
		a.pasted.WriteByte('\t')
	}
}

// mouseState tracks the button for drags and repeated clicks.
type mouseState struct {
	down    bool
	dragged bool
	clicks  int
	lastX   int
	lastY   int
	lastAt  time.Time
}

const multiClickInterval = 400 * time.Millisecond

func (a *Application) handleMouse(ev *tcell.EventMouse) {
	buf := a.doc.Buffer()
	x, y := ev.Position()
	rows, _ := buf.ViewSize()
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		buf.MouseWheelUp(ev.Modifiers()&tcell.ModShift != 0)
		return
	case btn&tcell.WheelDown != 0:
		buf.MouseWheelDown(ev.Modifiers()&tcell.ModShift != 0)
		return
	}
	if y >= rows {
		a.mouse.down = false
		return
	}
	col := a.paneCol(y, x)

	switch {
	case btn&tcell.Button1 != 0 && !a.mouse.down:
		now := time.Now()
		if x == a.mouse.lastX && y == a.mouse.lastY && now.Sub(a.mouse.lastAt) < multiClickInterval {
			a.mouse.clicks++
		} else {
			a.mouse.clicks = 1
		}
		a.mouse.down, a.mouse.dragged = true, false
		a.mouse.lastX, a.mouse.lastY, a.mouse.lastAt = x, y, now
		switch a.mouse.clicks {
		case 1:
			buf.MouseClick(y, col, ev.Modifiers()&tcell.ModShift != 0)
		case 2:
			buf.MouseDoubleClick(y, col)
		default:
			buf.MouseTripleClick(y, col)
			a.mouse.clicks = 0
		}
	case btn&tcell.Button1 != 0:
		a.mouse.dragged = true
		buf.MouseMoved(y, col)
	case btn == tcell.ButtonNone && a.mouse.down:
		a.mouse.down = false
		if a.mouse.dragged {
			buf.MouseRelease(y, col)
		}
	}
	buf.UpdateScrollPosition()
}

// paneCol converts a screen column on a text row to a byte column relative
// to the horizontal scroll position.
func (a *Application) paneCol(y, x int) int {
	buf := a.doc.Buffer()
	scroll := buf.Scroll()
	line := buf.Line(scroll.Row + y)
	return byteOffsetAt(line, scroll.Col, x) - scroll.Col
}

// messageWriter shows script output as the document message.
type messageWriter struct {
	doc *engine.Document
}

func (w messageWriter) Write(p []byte) (int, error) {
	w.doc.SetMessage(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
