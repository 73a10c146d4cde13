// Package script runs Lua scripts against an open document.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. The document is exposed as the global table
// doc:
//
//	doc.insert(text)          insert text at the cursor
//	doc.backspace()           delete before the cursor
//	doc.delete()              delete at the cursor
//	doc.newline()             carriage return with auto-indent
//	doc.move(dir [, n])       move the cursor: left, right, up, down,
//	                          word_left, word_right, home, end
//	doc.select_all()          select the whole document
//	doc.find(pattern)         select the next match
//	doc.replace(cmd)          find and replace, e.g. "/old/new/g"
//	doc.undo() / doc.redo()
//	doc.lines()               table of all lines
//	doc.line(n)               line n, 1-based
//	doc.cursor()              row, col, both 1-based
//	doc.message([text])       get or set the status message
//	doc.grammar()             name of the root grammar
//	doc.path()                file path
//	doc.save()                true, or nil and an error message
//
// print writes to the configured output instead of stdout.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cistorm/internal/engine"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned when running a script on a closed State.
var ErrClosed = errors.New("script: state is closed")

// Option configures a State.
type Option func(*State)

// WithTimeout sets the time limit of one run.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithOutput sets where print writes.
func WithOutput(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// State is a Lua interpreter bound to one document. Like the document it is
// not safe for concurrent use.
type State struct {
	L       *lua.LState
	doc     *engine.Document
	timeout time.Duration
	out     io.Writer
	logger  *slog.Logger
	closed  bool
}

// New creates a sandboxed state whose doc table operates on d.
func New(d *engine.Document, opts ...Option) *State {
	s := &State{
		doc:     d,
		timeout: DefaultTimeout,
		out:     io.Discard,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.L.SetGlobal("print", s.L.NewFunction(s.print))
	s.L.SetGlobal("doc", s.L.SetFuncs(s.L.NewTable(), s.docFuncs()))
	return s
}

// openSafeLibraries opens only the libraries that cannot reach the file
// system or the process.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString runs Lua source.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error { return s.L.DoString(code) })
}

// DoFile runs the Lua file at path.
func (s *State) DoFile(ctx context.Context, path string) error {
	s.logger.Debug("running script", "path", path)
	return s.run(ctx, func() error { return s.L.DoFile(path) })
}

func (s *State) run(ctx context.Context, fn func() error) (err error) {
	if s.closed {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script: lua panic: %v", r)
		}
	}()
	if err := fn(); err != nil {
		s.logger.Warn("script failed", "error", err)
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// Close releases the interpreter.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}

func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.out, strings.Join(parts, "\t"))
	return 0
}

func (s *State) docFuncs() map[string]lua.LGFunction {
	buf := s.doc.Buffer()
	action := func(fn func()) lua.LGFunction {
		return func(*lua.LState) int {
			fn()
			return 0
		}
	}
	return map[string]lua.LGFunction{
		"insert": func(L *lua.LState) int {
			buf.Insert(L.CheckString(1))
			return 0
		},
		"backspace":  action(buf.Backspace),
		"delete":     action(buf.Delete),
		"newline":    action(buf.CarriageReturn),
		"select_all": action(buf.SelectionAll),
		"undo":       action(buf.Undo),
		"redo":       action(buf.Redo),
		"move":       s.move,
		"find": func(L *lua.LState) int {
			buf.Find(L.CheckString(1))
			return 0
		},
		"replace": func(L *lua.LState) int {
			buf.FindReplace(L.CheckString(1))
			L.Push(lua.LString(buf.Message()))
			return 1
		},
		"lines": func(L *lua.LState) int {
			t := L.CreateTable(buf.LineCount(), 0)
			for _, line := range buf.Lines() {
				t.Append(lua.LString(line))
			}
			L.Push(t)
			return 1
		},
		"line": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n < 1 || n > buf.LineCount() {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(buf.Line(n - 1)))
			return 1
		},
		"cursor": func(L *lua.LState) int {
			c := buf.Cursor()
			L.Push(lua.LNumber(c.Row + 1))
			L.Push(lua.LNumber(c.Col + 1))
			return 2
		},
		"message": func(L *lua.LState) int {
			if L.GetTop() >= 1 {
				s.doc.SetMessage(L.CheckString(1))
				return 0
			}
			L.Push(lua.LString(s.doc.Message()))
			return 1
		},
		"grammar": func(L *lua.LState) int {
			L.Push(lua.LString(s.doc.Grammar().Name))
			return 1
		},
		"path": func(L *lua.LState) int {
			L.Push(lua.LString(s.doc.Path()))
			return 1
		},
		"save": func(L *lua.LState) int {
			if err := s.doc.Save(); err != nil {
				L.Push(lua.LNil)
				L.Push(lua.LString(err.Error()))
				return 2
			}
			L.Push(lua.LTrue)
			return 1
		},
	}
}

func (s *State) move(L *lua.LState) int {
	buf := s.doc.Buffer()
	moves := map[string]func(){
		"left":       buf.CursorLeft,
		"right":      buf.CursorRight,
		"up":         buf.CursorUp,
		"down":       buf.CursorDown,
		"word_left":  buf.CursorWordLeft,
		"word_right": buf.CursorWordRight,
		"home":       buf.CursorStartOfLine,
		"end":        buf.CursorEndOfLine,
	}
	dir := L.CheckString(1)
	fn, ok := moves[dir]
	if !ok {
		L.ArgError(1, "unknown direction "+dir)
		return 0
	}
	for range L.OptInt(2, 1) {
		fn()
	}
	return 0
}
