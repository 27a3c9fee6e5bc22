package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pathwayhq/pathway/internal/storage"
)

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "programs", "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("save and get", func(t *testing.T) {
		doc := []byte(`{"id":"p1","userId":"u1"}`)
		if err := s.Save(ctx, "programs", "p1", doc, storage.SaveOptions{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		got, err := s.Get(ctx, "programs", "p1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != string(doc) {
			t.Errorf("Get() = %s, want %s", got, doc)
		}
	})

	t.Run("stored copy is isolated", func(t *testing.T) {
		doc := []byte(`{"id":"p2"}`)
		if err := s.Save(ctx, "programs", "p2", doc, storage.SaveOptions{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		doc[2] = 'X'
		got, err := s.Get(ctx, "programs", "p2")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `{"id":"p2"}` {
			t.Errorf("Get() = %s, caller mutation leaked into store", got)
		}
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := s.Exists(ctx, "programs", "p1")
		if err != nil || !ok {
			t.Errorf("Exists(p1) = %v, %v, want true, nil", ok, err)
		}
		ok, err = s.Exists(ctx, "programs", "missing")
		if err != nil || ok {
			t.Errorf("Exists(missing) = %v, %v, want false, nil", ok, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "programs", "p1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := s.Delete(ctx, "programs", "p1"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Delete() second call error = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	doc := []byte(`{"id":"k1"}`)
	if err := s.Save(ctx, "cache", "k1", doc, storage.SaveOptions{TTL: time.Minute}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := s.Get(ctx, "cache", "k1"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := s.Get(ctx, "cache", "k1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
	if ok, _ := s.Exists(ctx, "cache", "k1"); ok {
		t.Error("Exists() after expiry = true, want false")
	}

	listed, err := s.List(ctx, "cache", storage.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("List() after expiry returned %d docs, want 0", len(listed))
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	seed := map[string]string{
		"a": `{"id":"a","status":"active","startedAt":"2026-08-01T10:00:00Z"}`,
		"b": `{"id":"b","status":"completed","startedAt":"2026-08-02T10:00:00Z"}`,
		"c": `{"id":"c","status":"active","startedAt":"2026-08-03T10:00:00Z"}`,
	}
	for id, doc := range seed {
		if err := s.Save(ctx, "programs", id, []byte(doc), storage.SaveOptions{}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	got, err := s.List(ctx, "programs", storage.ListOptions{
		Filter:         map[string]any{"status": "active"},
		OrderBy:        "startedAt",
		OrderDirection: storage.Descending,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() returned %d docs, want 2", len(got))
	}
	if string(got[0]) != seed["c"] || string(got[1]) != seed["a"] {
		t.Errorf("List() order wrong: got %s then %s", got[0], got[1])
	}
}
