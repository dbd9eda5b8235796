// Package cache stores decompiled block summaries in SQLite, keyed by the
// content hash of the instruction listing.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/pyrecon/decompiler"
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/wire"
)

// ErrNotFound indicates no summary is stored for the requested hash.
var ErrNotFound = errors.New("summary not found")

// Store handles SQLite storage for summaries.
type Store struct {
	db   *sql.DB
	path string
	log  commonlog.Logger
	mu   sync.Mutex
}

// Open opens or creates the cache database at path. Parent directories
// are created as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS summaries (
		hash BLOB PRIMARY KEY,
		version INTEGER NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	s := &Store{db: db, path: path, log: commonlog.GetLogger("pyrecon.cache")}
	s.log.Debugf("opened %s", path)
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put stores a summary, replacing any previous entry for its hash.
func (s *Store) Put(ctx context.Context, sum *wire.Summary) error {
	data, err := wire.MarshalSummary(sum)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO summaries (hash, version, data) VALUES (?, ?, ?)",
		sum.Hash[:], sum.Version, data,
	)
	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// Get retrieves the summary stored for hash.
func (s *Store) Get(ctx context.Context, hash [32]byte) (*wire.Summary, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM summaries WHERE hash = ? AND version = ?", hash[:], wire.Version,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying summary: %w", err)
	}

	sum, err := wire.UnmarshalSummary(data)
	if err != nil {
		return nil, err
	}
	if sum.Hash != hash {
		return nil, fmt.Errorf("summary %x stored under %x", sum.Hash, hash)
	}
	return sum, nil
}

// Delete removes the summary stored for hash. Deleting a missing entry is
// not an error.
func (s *Store) Delete(ctx context.Context, hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM summaries WHERE hash = ?", hash[:]); err != nil {
		return fmt.Errorf("deleting summary: %w", err)
	}
	return nil
}

// Len returns the number of stored summaries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM summaries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting summaries: %w", err)
	}
	return n, nil
}

// Summarize returns the cached summary of instrs, decompiling and storing
// it on a miss. The boolean reports a cache hit. Decompilation failures
// are returned as they are and nothing is stored.
func (s *Store) Summarize(ctx context.Context, d *decompiler.Decompiler, instrs []bytecode.Instruction) (*wire.Summary, bool, error) {
	hash, err := wire.Hash(instrs)
	if err != nil {
		return nil, false, err
	}

	sum, err := s.Get(ctx, hash)
	switch {
	case err == nil:
		s.log.Debugf("hit %x", hash[:8])
		return sum, true, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	res, err := d.Decompile(instrs)
	if err != nil {
		return nil, false, err
	}
	sum = wire.Summarize(hash, res)
	if err := s.Put(ctx, sum); err != nil {
		return nil, false, err
	}
	s.log.Debugf("stored %x", hash[:8])
	return sum, false, nil
}
