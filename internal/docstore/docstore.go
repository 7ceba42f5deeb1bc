// Package docstore keeps the registry of uploaded documents: the original
// extracted text plus upload metadata. The vector index only holds derived
// chunks; the registry is the source of truth for what exists and enables
// reprocessing without re-uploading.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a document does not exist in the registry.
var ErrNotFound = errors.New("document not found")

// Document is one uploaded file with its extracted text.
type Document struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Text        string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store wraps the SQLite document registry.
type Store struct {
	db *sql.DB
}

// Open creates or opens the registry database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// OpenMemory creates an in-memory registry (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    filename     TEXT PRIMARY KEY,
    content_type TEXT NOT NULL DEFAULT '',
    size         INTEGER NOT NULL DEFAULT 0,
    text_content TEXT NOT NULL DEFAULT '',
    uploaded_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at);
`

// Save inserts or replaces a document. Re-uploading a filename replaces
// the previous registry entry.
func (s *Store) Save(ctx context.Context, doc Document) error {
	uploadedAt := doc.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (filename, content_type, size, text_content, uploaded_at)
		VALUES (?, ?, ?, ?, ?)`,
		doc.Filename, doc.ContentType, doc.Size, doc.Text, uploadedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", doc.Filename, err)
	}
	return nil
}

// Get returns one document including its extracted text.
func (s *Store) Get(ctx context.Context, filename string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT filename, content_type, size, text_content, uploaded_at
		FROM documents WHERE filename = ?`, filename)

	var doc Document
	var uploadedAt string
	err := row.Scan(&doc.Filename, &doc.ContentType, &doc.Size, &doc.Text, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", filename, err)
	}

	doc.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
	return &doc, nil
}

// Exists reports whether a document with the given filename is registered.
func (s *Store) Exists(ctx context.Context, filename string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM documents WHERE filename = ?`, filename).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking document %s: %w", filename, err)
	}
	return true, nil
}

// List returns all documents without their text, newest upload first.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT filename, content_type, size, uploaded_at
		FROM documents ORDER BY uploaded_at DESC, filename ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var uploadedAt string
		if err := rows.Scan(&doc.Filename, &doc.ContentType, &doc.Size, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document from the registry. Deleting a missing
// document returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, filename string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", filename, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", filename, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
