// Package watcher reports changes made by other processes to the files open
// in the editor.
//
// A Watcher watches the parent directory of each file so that atomic saves
// (write to a temporary file, then rename) are seen as well as plain writes.
// Rapid changes to the same file are coalesced into one event.
package watcher

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// DefaultDelay is the default debounce window.
const DefaultDelay = 100 * time.Millisecond

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file was removed.
	OpRemove
	// OpRename indicates a file was renamed.
	OpRename
	// OpChmod indicates file permissions were changed.
	OpChmod
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
	{OpChmod, "CHMOD"},
}

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	var names []string
	for _, n := range opNames {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event represents a change to a watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op is every operation seen within the debounce window.
	Op Op

	// Timestamp is when the last operation occurred.
	Timestamp time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce window. Zero delivers every event at once.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.delay = d
		}
	}
}

// WithBufferSize sets the capacity of the event channel.
func WithBufferSize(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.bufSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// Watcher watches individual files for external changes.
type Watcher struct {
	mu sync.Mutex

	fsw *fsnotify.Watcher

	// Tracked files and the reference count of their directories.
	files map[string]bool
	dirs  map[string]int

	delay   time.Duration
	bufSize int
	pending map[string]*pendingEvent

	events chan Event
	errors chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup

	logger *slog.Logger
}

// New creates a watcher with no files.
func New(opts ...Option) (*Watcher, error) {
	w := &Watcher{
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		delay:   DefaultDelay,
		bufSize: 16,
		pending: make(map[string]*pendingEvent),
		closeCh: make(chan struct{}),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw
	w.events = make(chan Event, w.bufSize)
	w.errors = make(chan error, w.bufSize)

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch starts watching a file. The file need not exist yet, but its
// directory must.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if w.files[absPath] {
		return ErrAlreadyWatching
	}

	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = true
	return nil
}

// Unwatch stops watching a file.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !w.files[absPath] {
		return ErrNotWatching
	}

	delete(w.files, absPath)
	if p, ok := w.pending[absPath]; ok {
		p.timer.Stop()
		delete(w.pending, absPath)
	}
	dir := filepath.Dir(absPath)
	if w.dirs[dir]--; w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// IsWatching returns true if the file is being watched.
func (w *Watcher) IsWatching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.files[absPath]
}

// Events returns the event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	close(w.closeCh)
	w.mu.Unlock()

	// Wait for processLoop to finish
	w.closedWg.Wait()

	w.mu.Lock()
	close(w.events)
	close(w.errors)
	w.mu.Unlock()

	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
			w.sendError(err)
		}
	}
}

// handleFSEvent converts an fsnotify event for a watched file and schedules
// its delivery.
func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 || op == OpChmod {
		return
	}
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.files[path] {
		return
	}
	event := Event{Path: path, Op: op, Timestamp: time.Now()}
	if w.delay == 0 {
		w.sendLocked(event)
		return
	}
	if p, ok := w.pending[path]; ok {
		p.event.Op |= op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(w.delay)
		return
	}
	w.pending[path] = &pendingEvent{
		event: event,
		timer: time.AfterFunc(w.delay, func() { w.flush(path) }),
	}
}

// flush delivers the pending event for path once its window has passed.
func (w *Watcher) flush(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.pending[path]
	if !ok || w.closed {
		return
	}
	delete(w.pending, path)
	w.sendLocked(p.event)
}

// sendLocked sends an event without blocking. Callers hold w.mu.
func (w *Watcher) sendLocked(event Event) {
	select {
	case w.events <- event:
	default:
		w.logger.Warn("event channel full, dropping event", "path", event.Path, "op", event.Op)
	}
}

func (w *Watcher) sendError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// convertOp converts fsnotify.Op to watcher.Op.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	if fsOp.Has(fsnotify.Chmod) {
		op |= OpChmod
	}
	return op
}
