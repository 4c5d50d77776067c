// Package sqlite implements the snapshot store on an embedded SQLite
// database. A single file next to the binary is all the cache needs; use
// ":memory:" in tests.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps a sql.DB connection pool and implements
// repository.SnapshotStore.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the cache database at dbPath and runs
// migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets renders read the cache while a refresh writes it.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the connection pool. Defer this wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the snapshots table. CREATE TABLE IF NOT EXISTS keeps
// restarts idempotent; the key column is unique because one cache key
// maps to exactly one snapshot.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id         TEXT PRIMARY KEY,
			key        TEXT NOT NULL UNIQUE,
			payload    TEXT NOT NULL,
			row_count  INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating snapshots table: %w", err)
	}
	return nil
}
