// Package postgres provides a storage port backed by PostgreSQL. Documents
// live in one JSONB table; List filters and ordering are pushed into native
// queries rather than scanned in memory.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathwayhq/pathway/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	expires_at TIMESTAMPTZ,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data);
`

// Store implements storage.Port on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to PostgreSQL and ensures the document table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithPool wraps an existing pool; the schema must already exist or
// EnsureSchema must be called by the owner.
func NewStoreWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the document table and index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error { return s.ensureSchema(ctx) }

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Get returns a stored document, honoring expiry.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
		  AND (expires_at IS NULL OR expires_at > now())`,
		collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		t := time.Now().Add(opts.TTL)
		expires = &t
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at`,
		collection, id, data, expires)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List translates the filter into a JSONB containment query and the ordering
// into a jsonb ORDER BY, so results match the scan backends exactly.
func (s *Store) List(ctx context.Context, collection string, opts storage.ListOptions) ([][]byte, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT data FROM documents WHERE collection = $1
		AND (expires_at IS NULL OR expires_at > now())`)
	args := []any{collection}

	if len(opts.Filter) > 0 {
		filter, err := json.Marshal(opts.Filter)
		if err != nil {
			return nil, fmt.Errorf("marshal filter: %w", err)
		}
		args = append(args, filter)
		fmt.Fprintf(&sb, " AND data @> $%d::jsonb", len(args))
	}

	if opts.OrderBy != "" {
		args = append(args, opts.OrderBy)
		// Documents without the key sort lowest, matching storage.Compare.
		dir := "ASC NULLS FIRST"
		if opts.OrderDirection == storage.Descending {
			dir = "DESC NULLS LAST"
		}
		fmt.Fprintf(&sb, " ORDER BY data -> $%d::text %s, id ASC", len(args), dir)
	} else {
		sb.WriteString(" ORDER BY id ASC")
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
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
	return docs, nil
}

// Exists reports whether a live document is present.
func (s *Store) Exists(ctx context.Context, collection, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE collection = $1 AND id = $2
			  AND (expires_at IS NULL OR expires_at > now())
		)`, collection, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return exists, nil
}

var _ storage.Port = (*Store)(nil)
