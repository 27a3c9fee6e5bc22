//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/pathwayhq/pathway/internal/storage"
	"github.com/pathwayhq/pathway/internal/storage/postgres"
)

// setupPostgres creates a PostgreSQL container for testing
func jsonUnmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func setupPostgres(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pathway"),
		tcpostgres.WithUsername("pathway"),
		tcpostgres.WithPassword("pathway"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return dsn, cleanup
}

func TestIntegration_Store_RoundTrip(t *testing.T) {
	dsn, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	s, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer s.Close()

	doc := []byte(`{"id":"p1","userId":"u1","score":80}`)
	if err := s.Save(ctx, "programs", "p1", doc, storage.SaveOptions{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "programs", "p1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("Get() returned empty document")
	}

	ok, err := s.Exists(ctx, "programs", "p1")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v, want true, nil", ok, err)
	}

	if err := s.Delete(ctx, "programs", "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "programs", "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestIntegration_Store_ListMatchesScanBackends(t *testing.T) {
	dsn, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	s, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer s.Close()

	// "e" carries no scenarioTaskIndex at all; the absent key must rank
	// lowest on both backends, first ascending and last descending.
	seed := map[string]string{
		"a": `{"id":"a","programId":"p1","scenarioTaskIndex":2}`,
		"b": `{"id":"b","programId":"p1","scenarioTaskIndex":0}`,
		"c": `{"id":"c","programId":"p1","scenarioTaskIndex":10}`,
		"d": `{"id":"d","programId":"p2","scenarioTaskIndex":1}`,
		"e": `{"id":"e","programId":"p1"}`,
	}
	for id, doc := range seed {
		if err := s.Save(ctx, "tasks", id, []byte(doc), storage.SaveOptions{}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	p1 := [][]byte{[]byte(seed["a"]), []byte(seed["b"]), []byte(seed["c"]), []byte(seed["e"])}

	for _, dir := range []storage.Direction{storage.Ascending, storage.Descending} {
		docs, err := s.List(ctx, "tasks", storage.ListOptions{
			Filter:         map[string]any{"programId": "p1"},
			OrderBy:        "scenarioTaskIndex",
			OrderDirection: dir,
		})
		if err != nil {
			t.Fatalf("List(%s) error = %v", dir, err)
		}
		if len(docs) != 4 {
			t.Fatalf("List(%s) returned %d docs, want 4", dir, len(docs))
		}

		// jsonb numeric ordering with the missing key ranked lowest. The
		// sqlite and memory backends return the same order through
		// storage.ApplyList.
		ref := storage.ApplyList(p1, storage.ListOptions{OrderBy: "scenarioTaskIndex", OrderDirection: dir})
		for i := range docs {
			var a, b struct {
				ID string `json:"id"`
			}
			if err := jsonUnmarshal(docs[i], &a); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if err := jsonUnmarshal(ref[i], &b); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if a.ID != b.ID {
				t.Errorf("%s position %d: postgres = %s, scan backends = %s", dir, i, a.ID, b.ID)
			}
		}
	}
}
