// Package storage defines persistence contracts for diagram documents and
// their undo history.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/drawstorm/internal/diagram"
)

var (
	// ErrNotFound indicates a requested document is missing.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID indicates an empty document ID.
	ErrInvalidID = errors.New("document id is required")
)

// DocumentInfo describes one stored document without its content.
type DocumentInfo struct {
	ID        string
	Name      string
	Size      int
	Digest    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists documents and their serialized history.
type Store interface {
	// SaveDocument inserts or replaces a document.
	SaveDocument(ctx context.Context, doc diagram.Document) (DocumentInfo, error)
	// LoadDocument returns a document by ID or ErrNotFound.
	LoadDocument(ctx context.Context, id string) (diagram.Document, error)
	// ListDocuments returns all documents, most recently updated first.
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	// DeleteDocument removes a document and its history.
	DeleteDocument(ctx context.Context, id string) error
	// SaveHistory stores the JSON history of an existing document.
	SaveHistory(ctx context.Context, id string, history []byte) error
	// LoadHistory returns the stored history, or nil when none was saved.
	// It returns ErrNotFound when the document itself is missing.
	LoadHistory(ctx context.Context, id string) ([]byte, error)
	// Close releases resources.
	Close() error
}
