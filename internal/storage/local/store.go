// Package local provides a storage port backed by JSON files on disk, one
// directory per collection. It is the object-store backend for single-node
// deployments; documents stay human-readable for debugging.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pathwayhq/pathway/internal/storage"
)

// Store provides thread-safe JSON file storage implementing storage.Port.
// TTL metadata is a documented no-op for this backend: files persist until
// deleted.
type Store struct {
	basePath string
	mu       sync.RWMutex
}

// NewStore creates a local JSON store rooted at basePath.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Get reads a document from disk.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(collection, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Save persists a document to a JSON file, overwriting any previous version.
func (s *Store) Save(ctx context.Context, collection, id string, data []byte, opts storage.SaveOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, collection)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create collection directory: %w", err)
	}

	// Re-indent so stored files stay readable.
	var buf any
	if err := json.Unmarshal(data, &buf); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	if err := os.WriteFile(s.path(collection, id), append(pretty, '\n'), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Delete removes a document file.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(collection, id)); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// List scans the collection directory and applies filter, order, and
// pagination in memory.
func (s *Store) List(ctx context.Context, collection string, opts storage.ListOptions) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.basePath, collection)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return [][]byte{}, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var docs [][]byte
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		docs = append(docs, data)
	}

	return storage.ApplyList(docs, opts), nil
}

// Exists checks if a document file exists.
func (s *Store) Exists(ctx context.Context, collection, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.path(collection, id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat file: %w", err)
	}
	return true, nil
}

func (s *Store) path(collection, id string) string {
	return filepath.Join(s.basePath, collection, id+".json")
}

var _ storage.Port = (*Store)(nil)
