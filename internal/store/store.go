package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo
)

// Store is the Findings Store. One Store owns exactly one logical
// connection to its embedded database file; it must be closed explicitly on
// orchestrator teardown.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists. path's parent directory is created if absent so
// a fresh per-user configuration directory works without a separate setup
// step.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: failed to create directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: failed to create schema: %w", err)
	}
	for _, stmt := range indexStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: failed to create index: %w", err)
		}
	}
	return nil
}

// Close releases the store's database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Compact reclaims space from deleted/updated rows via VACUUM.
func (s *Store) Compact() error {
	_, err := s.db.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("store: vacuum failed: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
