// Package autosave persists a document and its undo history in the
// background.
//
// A Saver subscribes to document changes and writes the settled document
// once edits have been quiet for the debounce delay. An optional interval
// forces pending changes out during long editing bursts. Saves whose
// content digest matches the last successful save are skipped.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/drawstorm/internal/codec"
	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/storage"
	"github.com/dshills/drawstorm/internal/store"
)

// Defaults.
const (
	DefaultDebounce = 2 * time.Second
	DefaultInterval = 30 * time.Second
)

var (
	// ErrAlreadyStarted is returned by Start on a running saver.
	ErrAlreadyStarted = errors.New("autosave already started")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("autosave closed")
	// ErrBusy indicates the source is mid-edit and the save should be retried.
	ErrBusy = errors.New("source busy")
)

// Source is the editable state being saved.
type Source interface {
	// Checkpoint returns the document and the matching history JSON.
	Checkpoint() (diagram.Document, []byte, error)
	Subscribe(fn store.Observer) func()
}

// Logger receives autosave diagnostics.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Stats reports saver activity.
type Stats struct {
	Saves     int
	Skipped   int
	Failures  int
	LastSaved time.Time
	LastError error
}

// Option configures a Saver.
type Option func(*Saver)

// WithDebounce sets the quiet period before a save. Non-positive values
// select DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithInterval sets how often pending changes are flushed regardless of
// the debounce. Zero disables the interval.
func WithInterval(d time.Duration) Option {
	return func(s *Saver) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Saver) {
		if l != nil {
			s.logger = l
		}
	}
}

// Saver writes a Source to a storage.Store.
type Saver struct {
	src      Source
	store    storage.Store
	debounce time.Duration
	interval time.Duration
	logger   Logger
	deb      *debouncer

	// saveMu serializes saves and guards the fields below.
	saveMu   sync.Mutex
	lastDoc  codec.Digest
	lastHist codec.Digest
	stats    Stats

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
	started     bool
	closed      bool
}

// New creates a stopped saver.
func New(src Source, st storage.Store, opts ...Option) *Saver {
	s := &Saver{
		src:      src,
		store:    st,
		debounce: DefaultDebounce,
		interval: DefaultInterval,
		logger:   nopLogger{},
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.deb = newDebouncer(s.debounce, s.flushPending)
	return s
}

// MarkClean records the current state as already persisted, e.g. right
// after it was loaded from the store.
func (s *Saver) MarkClean() error {
	doc, hist, err := s.src.Checkpoint()
	if err != nil {
		return err
	}
	docDigest, err := codec.DigestDocument(doc)
	if err != nil {
		return fmt.Errorf("digest document: %w", err)
	}
	s.saveMu.Lock()
	s.lastDoc, s.lastHist = docDigest, codec.Sum(hist)
	s.saveMu.Unlock()
	return nil
}

// Start subscribes to changes and begins background saving. Canceling
// ctx stops background saving; Close still performs the final flush.
func (s *Saver) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.unsubscribe = s.src.Subscribe(func(store.Change) {
		// Runs under the store's write lock; only schedule here.
		s.deb.call()
	})

	if s.interval > 0 {
		s.wg.Add(1)
		go s.intervalLoop(s.ctx)
	}
	s.logger.Debug("autosave started (debounce %s, interval %s)", s.debounce, s.interval)
	return nil
}

func (s *Saver) intervalLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.deb.callImmediate()
		}
	}
}

// flushPending is the debounced save.
func (s *Saver) flushPending() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	err := s.Flush(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrBusy):
		// Try again once the edit in progress settles.
		s.deb.call()
	default:
		s.logger.Warn("autosave failed: %v", err)
	}
}

// Pending reports whether a change is waiting to be saved.
func (s *Saver) Pending() bool {
	return s.deb.isPending()
}

// Flush saves the current state now unless it matches the last save.
// It returns ErrBusy when the source cannot produce a consistent state yet.
func (s *Saver) Flush(ctx context.Context) error {
	doc, hist, err := s.src.Checkpoint()
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrBusy, err))
	}
	docDigest, err := codec.DigestDocument(doc)
	if err != nil {
		return s.fail(fmt.Errorf("digest document: %w", err))
	}
	histDigest := codec.Sum(hist)

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if docDigest == s.lastDoc && histDigest == s.lastHist {
		s.stats.Skipped++
		s.logger.Debug("autosave skipped, %s unchanged", doc.ID)
		return nil
	}

	if docDigest != s.lastDoc {
		if _, err := s.store.SaveDocument(ctx, doc); err != nil {
			return s.failLocked(fmt.Errorf("save document: %w", err))
		}
		s.lastDoc = docDigest
	}
	if err := s.store.SaveHistory(ctx, doc.ID, hist); err != nil {
		return s.failLocked(fmt.Errorf("save history: %w", err))
	}
	s.lastHist = histDigest

	s.stats.Saves++
	s.stats.LastSaved = time.Now()
	s.stats.LastError = nil
	s.logger.Debug("autosaved %s (%s)", doc.ID, docDigest)
	return nil
}

func (s *Saver) fail(err error) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.failLocked(err)
}

func (s *Saver) failLocked(err error) error {
	s.stats.Failures++
	s.stats.LastError = err
	return err
}

// Stats returns a copy of the saver's counters.
func (s *Saver) Stats() Stats {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.stats
}

// Close stops background saving and flushes any unsaved state.
func (s *Saver) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.deb.cancel()

	if err := s.Flush(context.Background()); err != nil {
		return fmt.Errorf("final autosave: %w", err)
	}
	return nil
}
