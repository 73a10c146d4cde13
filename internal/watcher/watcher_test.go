package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite | OpRemove, "WRITE|REMOVE"},
		{OpChmod, "CHMOD"},
		{0, "UNKNOWN"},
	}
	for _, tc := range tests {
		if got := tc.op.String(); got != tc.want {
			t.Errorf("Op(%d).String() = %q, want %q", tc.op, got, tc.want)
		}
	}
	if !(OpWrite | OpCreate).Has(OpWrite) || OpWrite.Has(OpCreate) {
		t.Error("Has() is wrong")
	}
}

func TestWatchUnwatch(t *testing.T) {
	w := newWatcher(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if !w.IsWatching(a) || w.dirs[dir] != 2 {
		t.Errorf("IsWatching = %v, dir refs = %d", w.IsWatching(a), w.dirs[dir])
	}
	if err := w.Watch(a); err != ErrAlreadyWatching {
		t.Errorf("Watch again error = %v, want ErrAlreadyWatching", err)
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if w.IsWatching(a) || w.dirs[dir] != 1 {
		t.Errorf("after Unwatch: IsWatching = %v, dir refs = %d", w.IsWatching(a), w.dirs[dir])
	}
	if err := w.Unwatch(a); err != ErrNotWatching {
		t.Errorf("Unwatch again error = %v, want ErrNotWatching", err)
	}
	if err := w.Unwatch(b); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if _, ok := w.dirs[dir]; ok {
		t.Error("directory still watched after last file removed")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := newWatcher(t)
	if err := w.Watch(filepath.Join(t.TempDir(), "nope", "a.txt")); err != ErrPathNotExist {
		t.Errorf("Watch error = %v, want ErrPathNotExist", err)
	}
}

func TestEventsForWatchedFileOnly(t *testing.T) {
	w := newWatcher(t, WithDelay(0))
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(a, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(a, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := waitEvent(t, w)
	if ev.Path != a {
		t.Errorf("event path = %q, want %q", ev.Path, a)
	}
	if !ev.Op.Has(OpWrite) && !ev.Op.Has(OpCreate) {
		t.Errorf("event op = %v, want a write", ev.Op)
	}
}

func TestDebounceCoalesces(t *testing.T) {
	w := newWatcher(t, WithDelay(200*time.Millisecond))
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	if err := w.Watch(a); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(a, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(a); err != nil {
		t.Fatal(err)
	}

	ev := waitEvent(t, w)
	if ev.Path != a || !ev.Op.Has(OpRemove) || !ev.Op.Has(OpCreate) {
		t.Errorf("event = %+v, want create and remove coalesced", ev)
	}
	select {
	case extra := <-w.Events():
		t.Errorf("unexpected second event %+v", extra)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrWatcherClosed {
		t.Errorf("Watch after Close error = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("events channel still open")
	}
}
