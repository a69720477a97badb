// Package jobstore persists visualization jobs and their per-day progress
// events in SQLite, so long pipeline runs can be inspected and resumed
// audits survive restarts.
package jobstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the SQLite database at path and
// applies the pragmas the pipeline needs: WAL journaling for concurrent
// readers and a busy timeout so writers queue instead of failing.
//
// The pool is capped at a single connection. modernc.org/sqlite serializes
// writes anyway, and one connection keeps transactions simple.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("jobstore: database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jobstore: failed to create database directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("jobstore: failed to open database %q: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("jobstore: failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("jobstore: database ping failed: %w", err)
	}
	return db, nil
}
