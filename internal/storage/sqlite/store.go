// Package sqlite provides a storage port backed by SQLite, the embedded
// relational backend for single-node deployments. Documents live in one
// table; List is answered by collection scan plus the shared in-memory
// filter and sort helpers, so ordering matches every other backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pathwayhq/pathway/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	expires_at DATETIME,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
`

// Store implements storage.Port on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates a SQLite-backed store with WAL mode enabled and the document
// table ensured.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Single-writer SQLite.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns a stored document, honoring expiry.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM documents
		WHERE collection = ? AND id = ?
		  AND (expires_at IS NULL OR expires_at > ?)`,
		collection, id, time.Now().UTC()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return data, nil
}

// Save upserts a document. A positive TTL sets expires_at; otherwise any
// previous expiry is cleared.
func (s *Store) Save(ctx context.Context, collection, id string, data []byte, opts storage.SaveOptions) error {
	var expires *time.Time
	if opts.TTL > 0 {
		t := time.Now().UTC().Add(opts.TTL)
		expires = &t
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at`,
		collection, id, string(data), expires)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List scans the collection and applies filter, order, and pagination
// through the shared helpers.
func (s *Store) List(ctx context.Context, collection string, opts storage.ListOptions) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM documents
		WHERE collection = ?
		  AND (expires_at IS NULL OR expires_at > ?)`,
		collection, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return storage.ApplyList(docs, opts), nil
}

// Exists reports whether a live document is present.
func (s *Store) Exists(ctx context.Context, collection, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM documents
		WHERE collection = ? AND id = ?
		  AND (expires_at IS NULL OR expires_at > ?)`,
		collection, id, time.Now().UTC()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check document: %w", err)
	}
	return true, nil
}

var _ storage.Port = (*Store)(nil)
