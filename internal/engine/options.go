package engine

import (
	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/engine/history"
)

// DefaultMaxHistorySize is the default number of undo entries kept.
const DefaultMaxHistorySize = history.DefaultMaxHistorySize

// Option configures an Engine during creation.
type Option func(*Engine)

// WithDocument sets the initial document. Without it the engine starts with
// an empty single-sheet document.
func WithDocument(doc diagram.Document) Option {
	return func(e *Engine) {
		e.initDoc = &doc
	}
}

// WithMaxHistorySize sets the maximum number of undo entries.
func WithMaxHistorySize(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxHistory = max
		}
	}
}

// WithLogger sets the logger used by the engine and its history.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithReadOnly creates a read-only engine.
// Edits return ErrReadOnly; undo and redo do nothing.
func WithReadOnly() Option {
	return func(e *Engine) {
		e.readOnly = true
	}
}
