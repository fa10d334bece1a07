// Package catalog implements the Catalog Store: a transactional,
// single-writer embedded database for speeches, workflows, curated
// models, key validation cache, events, and feedback.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps a single SQLite connection. SQLite's own file lock already
// serializes writers. UpsertSpeeches commits its whole batch in one
// transaction; the other mutating methods each issue a single statement,
// so a workflow update and a following event append are not atomic
// together.
type Store struct {
	db *sql.DB
}

// Config configures the on-disk location of the database file.
type Config struct {
	Path        string
	JournalMode string
	BusyTimeout int
}

// Open creates the parent directory if needed, opens the database, and
// runs idempotent schema migrations. Safe to call against a fresh path
// or an existing database file.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = "./data/archive.db"
	}
	if cfg.JournalMode == "" {
		cfg.JournalMode = "WAL"
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5000
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=%s&_busy_timeout=%d&_foreign_keys=ON",
		cfg.Path, cfg.JournalMode, cfg.BusyTimeout)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1) // single writer; sqlite3 driver serializes anyway

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
