package script

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cistorm/internal/engine"
)

func newState(t *testing.T, content string, opts ...Option) (*State, *engine.Document) {
	t.Helper()
	d, err := engine.New(engine.WithContent(content))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	s := New(d, opts...)
	t.Cleanup(s.Close)
	return s, d
}

func mustRun(t *testing.T, s *State, code string) {
	t.Helper()
	if err := s.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
}

func global(s *State, name string) string {
	return s.L.GetGlobal(name).String()
}

func TestEditing(t *testing.T) {
	s, d := newState(t, "")

	mustRun(t, s, `
		doc.insert("hi")
		doc.newline()
		doc.insert("there")
		doc.backspace()
		doc.move("home")
		doc.delete()
	`)

	got := d.Buffer().Lines()
	if len(got) != 2 || got[0] != "hi" || got[1] != "her" {
		t.Errorf("lines = %q, want [hi her]", got)
	}
}

func TestQueries(t *testing.T) {
	s, _ := newState(t, "a\nb")

	mustRun(t, s, `
		local t = doc.lines()
		count = #t .. ":" .. t[2]
		second = doc.line(2)
		missing = tostring(doc.line(3))
		doc.move("down")
		doc.move("right", 5)
		row, col = doc.cursor()
		grammar = doc.grammar()
	`)

	tests := map[string]string{
		"count":   "2:b",
		"second":  "b",
		"missing": "nil",
		"row":     "2",
		"col":     "2",
		"grammar": "text",
	}
	for name, want := range tests {
		if got := global(s, name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestUndoRedo(t *testing.T) {
	s, d := newState(t, "")

	mustRun(t, s, `doc.insert("abc"); doc.undo()`)
	if d.Buffer().Line(0) != "" {
		t.Errorf("after undo line = %q", d.Buffer().Line(0))
	}
	mustRun(t, s, `doc.redo()`)
	if d.Buffer().Line(0) != "abc" {
		t.Errorf("after redo line = %q", d.Buffer().Line(0))
	}
}

func TestInsertLineBreak(t *testing.T) {
	s, d := newState(t, "")

	mustRun(t, s, `doc.insert("a\nb")`)
	buf := d.Buffer()
	if buf.LineCount() != 2 || buf.Line(0) != "a" || buf.Line(1) != "b" {
		t.Fatalf("lines = %q, want [a b]", buf.Lines())
	}
	idx, err := d.SpanIndex(engine.ToEnd)
	if err != nil {
		t.Fatalf("SpanIndex() error = %v", err)
	}
	if idx.RowCount() != buf.LineCount() {
		t.Errorf("span index has %d rows, buffer has %d", idx.RowCount(), buf.LineCount())
	}
}

func TestReplace(t *testing.T) {
	s, d := newState(t, "aDog")

	mustRun(t, s, `msg = doc.replace([[/a(.*)/x\1\1/]])`)
	if got := d.Buffer().Line(0); got != "xDogDog" {
		t.Errorf("line = %q, want xDogDog", got)
	}

	mustRun(t, s, `msg = doc.replace("/zzz/y/")`)
	if got := global(s, "msg"); got == "" {
		t.Error("replace without matches should report a message")
	}
}

func TestFindAndSelectAll(t *testing.T) {
	s, d := newState(t, "one two")

	mustRun(t, s, `doc.find("two")`)
	if c := d.Buffer().Cursor(); c.Col != 4 {
		t.Errorf("cursor after find = %v", c)
	}
	mustRun(t, s, `doc.select_all()`)
	if d.Buffer().SelectionMode().String() != "all" {
		t.Errorf("selection mode = %v", d.Buffer().SelectionMode())
	}
}

func TestMessageAndSave(t *testing.T) {
	s, d := newState(t, "")

	mustRun(t, s, `doc.message("hello"); msg = doc.message()`)
	if global(s, "msg") != "hello" || d.Message() != "hello" {
		t.Errorf("message = %q", d.Message())
	}

	mustRun(t, s, `ok, err = doc.save()`)
	if global(s, "ok") != "nil" || !strings.Contains(global(s, "err"), "no file path") {
		t.Errorf("save without path: ok = %s, err = %s", global(s, "ok"), global(s, "err"))
	}

	path := filepath.Join(t.TempDir(), "out.txt")
	if err := d.Load(path); err != nil {
		t.Fatal(err)
	}
	mustRun(t, s, `doc.insert("saved"); ok = doc.save(); p = doc.path()`)
	if global(s, "ok") != "true" || global(s, "p") != path {
		t.Errorf("ok = %s, path = %s", global(s, "ok"), global(s, "p"))
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "saved" {
		t.Errorf("file = %q, %v", data, err)
	}
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	s, _ := newState(t, "", WithOutput(&out))

	mustRun(t, s, `print("a", 1, true)`)
	if got := out.String(); got != "a\t1\ttrue\n" {
		t.Errorf("print output = %q", got)
	}
}

func TestSandbox(t *testing.T) {
	s, _ := newState(t, "")

	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "require"} {
		if v := s.L.GetGlobal(name); v != lua.LNil {
			t.Errorf("global %s is available", name)
		}
	}
	if err := s.DoString(context.Background(), `os.exit(1)`); err == nil {
		t.Error("expected error calling os.exit")
	}
	if err := s.DoString(context.Background(), `doc.move("sideways")`); err == nil {
		t.Error("expected error for unknown direction")
	}
}

func TestTimeout(t *testing.T) {
	s, _ := newState(t, "", WithTimeout(50*time.Millisecond))

	start := time.Now()
	if err := s.DoString(context.Background(), `while true do end`); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout not enforced")
	}
}

func TestDoFile(t *testing.T) {
	s, d := newState(t, "")
	path := filepath.Join(t.TempDir(), "init.lua")
	if err := os.WriteFile(path, []byte(`doc.insert("from file")`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.DoFile(context.Background(), path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if d.Buffer().Line(0) != "from file" {
		t.Errorf("line = %q", d.Buffer().Line(0))
	}
	if err := s.DoFile(context.Background(), filepath.Join(t.TempDir(), "none.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestClosed(t *testing.T) {
	s, _ := newState(t, "")
	s.Close()
	s.Close()
	if err := s.DoString(context.Background(), `x = 1`); err != ErrClosed {
		t.Errorf("DoString() error = %v, want ErrClosed", err)
	}
}
