package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-process cache store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the entry for key, or nil once the retention window passed.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	me, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !me.expiresAt.IsZero() && s.now().After(me.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, nil
	}
	entry := me.entry
	return &entry, nil
}

// Set stores an entry, retained for maxAge.
func (s *MemoryStore) Set(ctx context.Context, key string, entry Entry, maxAge time.Duration) error {
	me := memoryEntry{entry: entry}
	if maxAge > 0 {
		me.expiresAt = s.now().Add(maxAge)
	}
	s.mu.Lock()
	s.entries[key] = me
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
