package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Database locates the embedded SQLite file. Connections are opened per
// logical operation and closed after it, so no long-lived lock is held on
// the file; repositories hold a *Database, not an open handle.
type Database struct {
	path string
}

// New creates a Database for the SQLite file at path and runs migrations.
func New(path string) (*Database, error) {
	d := &Database{path: path}

	db, err := d.Conn()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = db.Close()
	}()

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return d, nil
}

// Conn opens a fresh connection to the database.
// The caller must close it when the logical operation completes.
func (d *Database) Conn() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", d.path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// migrate creates the required tables. It is idempotent and can be run
// multiple times safely.
func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS embeddings (
			entity_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			total_chunks INTEGER NOT NULL,
			chunk_start INTEGER NOT NULL,
			chunk_end INTEGER NOT NULL,
			chunk_text TEXT NOT NULL,
			embedding BLOB NOT NULL,
			PRIMARY KEY (entity_id, chunk_index)
		);`,
		`CREATE TABLE IF NOT EXISTS embedding_queue (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			note_id TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_queue_created_at ON embedding_queue(created_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
