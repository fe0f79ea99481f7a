// Package sqlite implements storage.Store on an embedded SQLite database.
//
// Documents are stored as compressed CBOR blobs alongside their BLAKE3
// digest. History is stored as its JSON wire form so it stays inspectable
// with the sqlite3 shell.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/drawstorm/internal/codec"
	"github.com/dshills/drawstorm/internal/diagram"
	"github.com/dshills/drawstorm/internal/storage"
	"github.com/dshills/drawstorm/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store provides SQLite-backed document persistence.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Store = (*Store)(nil)

// connPragmas run on every new connection. modernc.org/sqlite reads them
// from repeated _pragma query parameters.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

func dataSourceName(path string) string {
	query := url.Values{"_pragma": connPragmas}
	return filepath.Clean(path) + "?" + query.Encode()
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	sqlDB, err := sql.Open("sqlite", dataSourceName(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// SaveDocument inserts or replaces a document, keeping its creation time.
func (s *Store) SaveDocument(ctx context.Context, doc diagram.Document) (storage.DocumentInfo, error) {
	if err := s.check(ctx); err != nil {
		return storage.DocumentInfo{}, err
	}
	if strings.TrimSpace(doc.ID) == "" {
		return storage.DocumentInfo{}, storage.ErrInvalidID
	}

	body, err := codec.EncodeDocument(doc)
	if err != nil {
		return storage.DocumentInfo{}, fmt.Errorf("encode document: %w", err)
	}
	digest, err := codec.DigestDocument(doc)
	if err != nil {
		return storage.DocumentInfo{}, fmt.Errorf("digest document: %w", err)
	}

	now := toMillis(s.now())
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO documents (id, name, body, size, digest, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    body = excluded.body,
    size = excluded.size,
    digest = excluded.digest,
    updated_at = excluded.updated_at`,
		doc.ID, doc.Name, body, len(body), digest.String(), now, now,
	)
	if err != nil {
		return storage.DocumentInfo{}, fmt.Errorf("save document: %w", err)
	}
	return s.documentInfo(ctx, doc.ID)
}

func (s *Store) documentInfo(ctx context.Context, id string) (storage.DocumentInfo, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, size, digest, created_at, updated_at FROM documents WHERE id = ?`, id)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.DocumentInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return storage.DocumentInfo{}, fmt.Errorf("get document info: %w", err)
	}
	return info, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInfo(row rowScanner) (storage.DocumentInfo, error) {
	var (
		info             storage.DocumentInfo
		created, updated int64
	)
	if err := row.Scan(&info.ID, &info.Name, &info.Size, &info.Digest, &created, &updated); err != nil {
		return storage.DocumentInfo{}, err
	}
	info.CreatedAt = fromMillis(created)
	info.UpdatedAt = fromMillis(updated)
	return info, nil
}

// LoadDocument returns a document by ID.
func (s *Store) LoadDocument(ctx context.Context, id string) (diagram.Document, error) {
	if err := s.check(ctx); err != nil {
		return diagram.Document{}, err
	}

	var body []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return diagram.Document{}, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return diagram.Document{}, fmt.Errorf("load document: %w", err)
	}
	doc, err := codec.DecodeDocument(body)
	if err != nil {
		return diagram.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns all documents, most recently updated first.
func (s *Store) ListDocuments(ctx context.Context) ([]storage.DocumentInfo, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, size, digest, created_at, updated_at
FROM documents
ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []storage.DocumentInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// DeleteDocument removes a document. Its history is removed by cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

// SaveHistory stores the JSON history of an existing document.
func (s *Store) SaveHistory(ctx context.Context, id string, history []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save history: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var found int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO document_history (document_id, body, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(document_id) DO UPDATE SET
    body = excluded.body,
    updated_at = excluded.updated_at`,
		id, string(history), toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// LoadHistory returns the stored history, or nil when none was saved.
func (s *Store) LoadHistory(ctx context.Context, id string) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var body sql.NullString
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT h.body
FROM documents d
LEFT JOIN document_history h ON h.document_id = d.id
WHERE d.id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !body.Valid {
		return nil, nil
	}
	return []byte(body.String), nil
}
