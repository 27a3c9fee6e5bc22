// Package memory provides an in-memory storage port, used as the test
// double and for ephemeral single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pathwayhq/pathway/internal/storage"
)

// Store is a thread-safe in-memory document store with TTL support.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]entry
	now         func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]entry),
		now:         time.Now,
	}
}

// Get returns a stored document, honoring expiry.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.collections[collection][id]
	if !ok || s.expired(e) {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, nil
}

// Save stores a document, overwriting any previous version.
func (s *Store) Save(ctx context.Context, collection, id string, data []byte, opts storage.SaveOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]entry)
		s.collections[collection] = coll
	}

	e := entry{data: make([]byte, len(data))}
	copy(e.data, data)
	if opts.TTL > 0 {
		e.expiresAt = s.now().Add(opts.TTL)
	}
	coll[id] = e
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if _, exists := coll[id]; !ok || !exists {
		return storage.ErrNotFound
	}
	delete(coll, id)
	return nil
}

// List returns documents matching opts, filtered, sorted, and paged.
func (s *Store) List(ctx context.Context, collection string, opts storage.ListOptions) ([][]byte, error) {
	s.mu.RLock()
	docs := make([][]byte, 0, len(s.collections[collection]))
	for _, e := range s.collections[collection] {
		if s.expired(e) {
			continue
		}
		docs = append(docs, e.data)
	}
	s.mu.RUnlock()

	return storage.ApplyList(docs, opts), nil
}

// Exists reports whether a live document is present.
func (s *Store) Exists(ctx context.Context, collection, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.collections[collection][id]
	return ok && !s.expired(e), nil
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}

var _ storage.Port = (*Store)(nil)
