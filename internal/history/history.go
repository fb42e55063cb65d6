// Package history keeps a record of reorganize runs in a local SQLite
// database so they can be listed later with 'teamsort history' or the API.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Nomadcxx/teamsort/internal/paths"
	_ "modernc.org/sqlite"
)

// Store is the handle for the run history database
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the database at the default location
func Open() (*Store, error) {
	path, err := paths.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history path: %w", err)
	}
	return OpenPath(path)
}

// OpenPath opens or creates the database at a specific path
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// WAL lets 'teamsort history' read while a watcher is writing
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	return open(db, path)
}

// OpenInMemory opens an in-memory database for testing
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	return open(db, ":memory:")
}

func open(db *sql.DB, path string) (*Store, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path to the database file
func (s *Store) Path() string {
	return s.path
}
