package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Dir:        t.TempDir(),
		Collection: "test_posts",
		Dimensions: 3,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedEntries() []Entry {
	return []Entry{
		{ID: "a", Vector: []float32{1, 0, 0}, Document: "post a", Metadata: map[string]any{"caption": "a"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Document: "post b", Metadata: map[string]any{"caption": "b"}},
		{ID: "c", Vector: []float32{0.9, 0.1, 0}, Document: "post c", Metadata: map[string]any{"caption": "c"}},
	}
}

func TestQueryOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, seedEntries()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := store.Query(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ID != "a" {
		t.Fatalf("expected exact match first, got %s", results[0].ID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Fatalf("distances not ascending: %v then %v", results[i-1].Distance, results[i].Distance)
		}
	}
	if results[0].Distance < 0 {
		t.Fatalf("distance must be non-negative, got %v", results[0].Distance)
	}
}

func TestQueryKLargerThanCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, seedEntries()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	results, err := store.Query(ctx, []float32{1, 0, 0}, 50)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected exactly count() results, got %d", len(results))
	}
}

func TestQueryEmptyIndex(t *testing.T) {
	store := openTestStore(t)

	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestUpsertLastWriteWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := Entry{ID: "a", Vector: []float32{1, 0, 0}, Document: "old", Metadata: map[string]any{"caption": "old"}}
	second := Entry{ID: "a", Vector: []float32{0, 1, 0}, Document: "new", Metadata: map[string]any{"caption": "new"}}
	if err := store.Add(ctx, []Entry{first}); err != nil {
		t.Fatalf("Add first: %v", err)
	}
	if err := store.Add(ctx, []Entry{second}); err != nil {
		t.Fatalf("Add second: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 entry after upsert, got %d", n)
	}

	got, ok, err := store.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Document != "new" {
		t.Fatalf("expected second write to win, got %q", got.Document)
	}
}

func TestGetAbsent(t *testing.T) {
	store := openTestStore(t)
	_, ok, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected absence, got a hit")
	}
}

func TestDimensionMismatchRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []Entry{{ID: "x", Vector: []float32{1, 2}, Document: "d"}})
	if err == nil {
		t.Fatal("expected dimension mismatch error on Add")
	}
	if _, err := store.Query(ctx, []float32{1, 2}, 1); err == nil {
		t.Fatal("expected dimension mismatch error on Query")
	}
}

func TestResetDestroysCollection(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Add(ctx, seedEntries()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count after reset: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty collection after reset, got %d", n)
	}
	// The collection is usable again after reset.
	if err := store.Add(ctx, seedEntries()[:1]); err != nil {
		t.Fatalf("Add after reset: %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, Collection: "persist", Dimensions: 3}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(context.Background(), seedEntries()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	store.Close()

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 entries after reopen, got %d", n)
	}
}

func TestOpenRejectsDimensionChange(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(Config{Dir: dir, Collection: "posts", Dimensions: 3})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(context.Background(), seedEntries()[:1]); err != nil {
		t.Fatalf("Add: %v", err)
	}
	store.Close()

	// A new embedding model with a different dimension must fail at
	// open, not panic or rank garbage on the first query.
	_, err = Open(Config{Dir: dir, Collection: "posts", Dimensions: 4})
	if err == nil {
		t.Fatal("expected open to fail against a 3-dimension collection")
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestOpenRebuildClearsDimensionChange(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(Config{Dir: dir, Collection: "posts", Dimensions: 3})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Add(context.Background(), seedEntries()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	store.Close()

	rebuilt, err := Open(Config{Dir: dir, Collection: "posts", Dimensions: 4, Rebuild: true})
	if err != nil {
		t.Fatalf("Open with rebuild: %v", err)
	}
	defer rebuilt.Close()

	n, err := rebuilt.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty collection after rebuild, got %d", n)
	}
	if err := rebuilt.Add(context.Background(), []Entry{{ID: "a", Vector: []float32{1, 0, 0, 0}, Document: "d"}}); err != nil {
		t.Fatalf("Add after rebuild: %v", err)
	}
}

func TestQueryErrorIsNotEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, embedding, document, metadata FROM entries").
		WillReturnError(errors.New("disk I/O error"))

	store := NewWithDB(db, 3)
	results, err := store.Query(context.Background(), []float32{1, 0, 0}, 2)
	if err == nil {
		t.Fatal("expected query failure to surface as an error")
	}
	if results != nil {
		t.Fatalf("failed query must not return results, got %v", results)
	}
}
