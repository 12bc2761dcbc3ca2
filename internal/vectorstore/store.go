// Package vectorstore persists embedding vectors with their documents
// and flat metadata in a local SQLite database and serves
// nearest-neighbor queries over them.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// ErrDimensionMismatch marks a persisted collection whose vectors were
// built with a different embedding dimension than the one configured.
// The collection must be rebuilt before it can serve queries.
var ErrDimensionMismatch = errors.New("vectorstore: collection dimensions mismatch")

// Config holds vector store settings.
type Config struct {
	// Dir is the directory holding the collection database files.
	Dir string
	// Collection names the on-disk collection.
	Collection string
	// Dimensions is the required embedding vector length.
	Dimensions int
	// Rebuild drops an existing collection at open. Set under forced
	// reloads, where the index is about to be re-created anyway.
	Rebuild bool
}

// Entry is the persisted unit: id, vector, the exact document text that
// was embedded, and the flattened metadata.
type Entry struct {
	ID       string
	Vector   []float32
	Document string
	Metadata map[string]any
}

// Result is one query hit. Distance is cosine distance (1 minus cosine
// similarity), non-negative, lower means more similar.
type Result struct {
	ID       string
	Distance float64
	Document string
	Metadata map[string]any
}

// Store is a SQLite-backed vector index. The corpus is small and fixed
// per account, so queries scan the collection and rank in memory.
type Store struct {
	db   *sql.DB
	dims int
}

// Open opens or creates the collection database under cfg.Dir.
func Open(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, errors.New("vectorstore: collection name is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, errors.New("vectorstore: dimensions must be positive")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("vectorstore: create data dir: %w", err)
	}

	path := filepath.Join(cfg.Dir, cfg.Collection+".db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorstore: enable WAL: %w", err)
	}

	store := &Store{db: db, dims: cfg.Dimensions}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.Rebuild {
		if err := store.Reset(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := store.checkDimensions(cfg.Collection); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// checkDimensions verifies persisted vectors against the configured
// dimension. An embedding-model change shows up here at startup with an
// actionable error instead of corrupting query results later.
func (s *Store) checkDimensions(collection string) error {
	var blob []byte
	err := s.db.QueryRow("SELECT embedding FROM entries LIMIT 1").Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("vectorstore: inspect collection %s: %w", collection, err)
	}
	if got := len(blob) / 4; got != s.dims {
		return fmt.Errorf("%w: collection %s was built with %d dimensions, configured for %d; force a reload to rebuild the index",
			ErrDimensionMismatch, collection, got, s.dims)
	}
	return nil
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB, dimensions int) *Store {
	return &Store{db: db, dims: dimensions}
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			id        TEXT PRIMARY KEY,
			embedding BLOB NOT NULL,
			document  TEXT NOT NULL,
			metadata  TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("vectorstore: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dimensions returns the configured vector length.
func (s *Store) Dimensions() int {
	return s.dims
}

// DB exposes the underlying handle for connectivity health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Add upserts entries. A duplicate id replaces the existing row, last
// write wins.
func (s *Store) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: begin add: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, embedding, document, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			embedding = excluded.embedding,
			document  = excluded.document,
			metadata  = excluded.metadata`)
	if err != nil {
		return fmt.Errorf("vectorstore: prepare add: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if entry.ID == "" {
			return errors.New("vectorstore: entry id is required")
		}
		if len(entry.Vector) != s.dims {
			return fmt.Errorf("vectorstore: entry %s has %d dimensions, store expects %d",
				entry.ID, len(entry.Vector), s.dims)
		}
		metaJSON, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("vectorstore: encode metadata for %s: %w", entry.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, entry.ID, encodeVector(entry.Vector), entry.Document, string(metaJSON)); err != nil {
			return fmt.Errorf("vectorstore: insert %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vectorstore: commit add: %w", err)
	}
	return nil
}

// Query returns up to k entries nearest to vector in ascending cosine
// distance. An empty collection yields an empty slice, not an error;
// scan failures are surfaced so callers can tell the two apart.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	if k < 1 {
		return nil, fmt.Errorf("vectorstore: k must be at least 1, got %d", k)
	}
	if len(vector) != s.dims {
		return nil, fmt.Errorf("vectorstore: query vector has %d dimensions, store expects %d",
			len(vector), s.dims)
	}

	all, err := s.scan(ctx, "SELECT id, embedding, document, metadata FROM entries")
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(all))
	for _, row := range all {
		results = append(results, Result{
			ID:       row.ID,
			Distance: cosineDistance(vector, row.Vector),
			Document: row.Document,
			Metadata: row.Metadata,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Get returns the entry for id, reporting absence without error.
func (s *Store) Get(ctx context.Context, id string) (Result, bool, error) {
	rows, err := s.scan(ctx, "SELECT id, embedding, document, metadata FROM entries WHERE id = ?", id)
	if err != nil {
		return Result{}, false, err
	}
	if len(rows) == 0 {
		return Result{}, false, nil
	}
	entry := rows[0]
	return Result{ID: entry.ID, Document: entry.Document, Metadata: entry.Metadata}, true, nil
}

// GetAll returns every entry, used for whole-corpus scans such as
// finding the most recent post.
func (s *Store) GetAll(ctx context.Context) ([]Result, error) {
	rows, err := s.scan(ctx, "SELECT id, embedding, document, metadata FROM entries ORDER BY id")
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(rows))
	for _, entry := range rows {
		results = append(results, Result{ID: entry.ID, Document: entry.Document, Metadata: entry.Metadata})
	}
	return results, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("vectorstore: count: %w", err)
	}
	return n, nil
}

// Reset destroys and recreates the collection. Used only under
// explicit force reload.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS entries"); err != nil {
		return fmt.Errorf("vectorstore: drop collection: %w", err)
	}
	return s.migrate()
}

func (s *Store) scan(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			blob     []byte
			metaJSON string
		)
		if err := rows.Scan(&entry.ID, &blob, &entry.Document, &metaJSON); err != nil {
			return nil, fmt.Errorf("vectorstore: scan entry: %w", err)
		}
		vector, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("vectorstore: decode vector for %s: %w", entry.ID, err)
		}
		entry.Vector = vector
		if err := json.Unmarshal([]byte(metaJSON), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("vectorstore: decode metadata for %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorstore: iterate entries: %w", err)
	}
	return entries, nil
}
