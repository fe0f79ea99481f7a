// Package watcher reports changes to a single file for configuration live
// reload.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a temporary file and renaming it over the original
// are seen as a create of the watched path. Bursts of events are merged and
// delivered once the file has been quiet for the debounce period.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Op is the kind of change seen on the watched file.
type Op uint8

const (
	// OpWrite indicates the file was modified in place.
	OpWrite Op = iota

	// OpCreate indicates the file appeared, including rename-over saves.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was moved away.
	OpRename
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is a settled change to the watched file.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives settled events. It runs on the watcher's timer
// goroutine; a panic is recovered and reported as an error.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before an event is delivered.
// Zero delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives errors from the OS watcher and recovered
// handler panics. Without it they are only kept for LastError.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher follows one file until Stop is called.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	handler  Handler
	onError  func(error)
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending Event
	queued  bool
	stopped bool
	lastErr error

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New starts watching path. The file need not exist yet but its directory
// must.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		handler:  handler,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Pending reports whether an event is waiting for the quiet period to end.
func (w *Watcher) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queued
}

// LastError returns the most recent error seen by the watcher.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Stop releases the OS watcher and drops any pending event. Handlers
// already running are not waited for. Stop is idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.queued = false
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		close(w.done)
		w.wg.Wait()
		_ = w.fsw.Close()
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.observe(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.fail(err)
		}
	}
}

// observe filters directory events down to the watched file.
func (w *Watcher) observe(ev fsnotify.Event) {
	op, ok := convertOp(ev.Op)
	if !ok {
		return
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.path {
		return
	}
	w.schedule(Event{Path: w.path, Op: op, Time: time.Now()})
}

// schedule merges ev into the pending event and restarts the quiet period.
func (w *Watcher) schedule(ev Event) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	if w.queued {
		ev.Op = merge(w.pending.Op, ev.Op)
	}
	w.pending = ev
	w.queued = true

	if w.debounce == 0 {
		w.mu.Unlock()
		w.fire()
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.fire)
	} else {
		w.timer.Reset(w.debounce)
	}
	w.mu.Unlock()
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if !w.queued || w.stopped {
		w.mu.Unlock()
		return
	}
	ev := w.pending
	w.queued = false
	w.mu.Unlock()

	w.deliver(ev)
}

func (w *Watcher) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.fail(fmt.Errorf("watch handler panic: %v", r))
		}
	}()
	w.handler(ev)
}

func (w *Watcher) fail(err error) {
	w.mu.Lock()
	w.lastErr = err
	fn := w.onError
	w.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

// merge folds a burst into one operation. A write never hides a create or
// remove; anything else takes the latest operation.
func merge(prev, next Op) Op {
	if next == OpWrite && (prev == OpCreate || prev == OpRemove) {
		return prev
	}
	return next
}

func convertOp(op fsnotify.Op) (Op, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}
