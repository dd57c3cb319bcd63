// Package store persists compiled Blocks artifacts in SQLite, keyed by
// the SHA-256 of the source text. A warm cache hit skips the front end
// entirely; the artifact bytes are the dist CBOR encoding.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("blocks.store")

// ErrNotFound indicates no artifact exists for the requested source.
var ErrNotFound = errors.New("artifact not found")

// Store is a SQLite-backed artifact cache.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the cache database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		source_hash TEXT UNIQUE NOT NULL,
		data BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating artifacts table: %w", err)
	}

	log.Debugf("opened artifact cache at %s", dbPath)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashSource returns the cache key for a source text.
func HashSource(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// Put stores artifact bytes for a source hash, replacing any previous
// row, and returns the artifact row id.
func (s *Store) Put(sourceHash string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO artifacts (id, source_hash, data, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(source_hash) DO UPDATE SET id = excluded.id, data = excluded.data, created_at = excluded.created_at`,
		id, sourceHash, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("storing artifact: %w", err)
	}

	log.Debugf("stored artifact %s for source %s", id, sourceHash[:12])
	return id, nil
}

// Get fetches the artifact bytes for a source hash. Returns ErrNotFound
// on a cache miss.
func (s *Store) Get(sourceHash string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow(`SELECT data FROM artifacts WHERE source_hash = ?`, sourceHash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching artifact: %w", err)
	}
	return data, nil
}

// Delete removes the artifact for a source hash. Deleting a missing
// row is not an error.
func (s *Store) Delete(sourceHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM artifacts WHERE source_hash = ?`, sourceHash); err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	return nil
}

// Count returns the number of cached artifacts.
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting artifacts: %w", err)
	}
	return n, nil
}
