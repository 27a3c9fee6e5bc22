// Package storage defines the narrow port every persistence backend
// implements. Entities are stored as JSON documents addressed by
// (collection, id); backends absorb all backend-specific query mechanics and
// never leak their own types above this boundary.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Direction orders List results.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ListOptions narrows and orders a List call. Filter is equality on
// top-level JSON fields. Results are filtered, then sorted, then paged, in
// that order, identically on every backend; OrderBy comparisons follow
// Postgres jsonb ordering (see Compare). The document id is always the final
// ascending tiebreak.
type ListOptions struct {
	Filter         map[string]any
	OrderBy        string
	OrderDirection Direction
	Limit          int // 0 means no limit
	Offset         int
}

// SaveOptions carries optional metadata for a Save call.
type SaveOptions struct {
	// TTL expires the document after the given duration. Zero means no
	// expiry. Backends without expiry support document it as a no-op.
	TTL time.Duration
}

// Port is the storage primitive the repository layer builds on. Documents
// are opaque JSON; Save overwrites unconditionally (last write wins).
type Port interface {
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Save(ctx context.Context, collection, id string, data []byte, opts SaveOptions) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, opts ListOptions) ([][]byte, error)
	Exists(ctx context.Context, collection, id string) (bool, error)
}
