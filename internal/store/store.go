// Package store holds the authoritative diagram document.
//
// All writes go through Update, which applies a pure updater function and
// swaps the whole document. Readers call Snapshot and always receive a fully
// settled document; there is no window in which a partially applied update
// is visible.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/dshills/drawstorm/internal/diagram"
)

// Updater derives a new document from the current one.
type Updater func(diagram.Document) diagram.Document

// Change describes a completed update.
type Change struct {
	Revision uint64
	Document diagram.Document
}

// Observer is notified after each update.
type Observer func(Change)

type state struct {
	doc      diagram.Document
	revision uint64
}

// Store owns the current document.
//
// Updates are serialized. Observers run synchronously on the updating
// goroutine while the write lock is held, so they must not call Update.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[state]

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObsID int
}

// New creates a store holding doc.
func New(doc diagram.Document) *Store {
	s := &Store{observers: make(map[int]Observer)}
	s.current.Store(&state{doc: doc})
	return s
}

// Snapshot returns the current document.
func (s *Store) Snapshot() diagram.Document {
	return s.current.Load().doc
}

// Revision returns the number of updates applied since creation.
func (s *Store) Revision() uint64 {
	return s.current.Load().revision
}

// Update applies fn to the current document and notifies observers.
func (s *Store) Update(fn func(diagram.Document) diagram.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	next := &state{doc: fn(prev.doc), revision: prev.revision + 1}
	s.current.Store(next)

	s.notify(Change{Revision: next.revision, Document: next.doc})
}

// Replace swaps in an unrelated document, e.g. after opening a file.
func (s *Store) Replace(doc diagram.Document) {
	s.Update(func(diagram.Document) diagram.Document { return doc })
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) notify(c Change) {
	s.obsMu.RLock()
	observers := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.RUnlock()

	for _, fn := range observers {
		fn(c)
	}
}
