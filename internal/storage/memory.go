package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dshills/drawstorm/internal/codec"
	"github.com/dshills/drawstorm/internal/diagram"
)

// Memory is an in-process Store. Documents are kept in their encoded form,
// so loads return independent copies just like a database would.
type Memory struct {
	mu      sync.RWMutex
	docs    map[string]memoryDoc
	history map[string][]byte
	now     func() time.Time
}

type memoryDoc struct {
	info DocumentInfo
	body []byte
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:    make(map[string]memoryDoc),
		history: make(map[string][]byte),
		now:     time.Now,
	}
}

// SaveDocument implements Store.
func (m *Memory) SaveDocument(ctx context.Context, doc diagram.Document) (DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return DocumentInfo{}, err
	}
	if strings.TrimSpace(doc.ID) == "" {
		return DocumentInfo{}, ErrInvalidID
	}
	body, err := codec.EncodeDocument(doc)
	if err != nil {
		return DocumentInfo{}, err
	}
	digest, err := codec.DigestDocument(doc)
	if err != nil {
		return DocumentInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	info := DocumentInfo{
		ID:        doc.ID,
		Name:      doc.Name,
		Size:      len(body),
		Digest:    digest.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, ok := m.docs[doc.ID]; ok {
		info.CreatedAt = prev.info.CreatedAt
	}
	m.docs[doc.ID] = memoryDoc{info: info, body: body}
	return info, nil
}

// LoadDocument implements Store.
func (m *Memory) LoadDocument(ctx context.Context, id string) (diagram.Document, error) {
	if err := ctx.Err(); err != nil {
		return diagram.Document{}, err
	}
	m.mu.RLock()
	d, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return diagram.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return codec.DecodeDocument(d.body)
}

// ListDocuments implements Store.
func (m *Memory) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]DocumentInfo, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d.info)
	}
	slices.SortFunc(out, func(a, b DocumentInfo) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteDocument implements Store.
func (m *Memory) DeleteDocument(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.docs, id)
	delete(m.history, id)
	return nil
}

// SaveHistory implements Store.
func (m *Memory) SaveHistory(ctx context.Context, id string, history []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.history[id] = slices.Clone(history)
	return nil
}

// LoadHistory implements Store.
func (m *Memory) LoadHistory(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.docs[id]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return slices.Clone(m.history[id]), nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
