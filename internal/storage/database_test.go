package storage

import (
	"os"
	"testing"
)

func TestNew_CreatesFileAndSchema(t *testing.T) {
	dbPath := t.TempDir() + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	conn, err := db.Conn()
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	for _, table := range []string{"embeddings", "embedding_queue"} {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestNew_Idempotent(t *testing.T) {
	dbPath := t.TempDir() + "/test.db"

	if _, err := New(dbPath); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	// Migrations run again on reopen and must not fail.
	if _, err := New(dbPath); err != nil {
		t.Fatalf("New() on existing database error = %v", err)
	}
}

func TestConn_IndependentConnections(t *testing.T) {
	dbPath := t.TempDir() + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := db.Conn()
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	if _, err := first.Exec("INSERT INTO embedding_queue (note_id) VALUES ('a')"); err != nil {
		t.Fatalf("insert error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// A fresh connection sees data written by the closed one.
	second, err := db.Conn()
	if err != nil {
		t.Fatalf("Conn() error = %v", err)
	}
	defer func() {
		_ = second.Close()
	}()

	var n int
	if err := second.QueryRow("SELECT COUNT(*) FROM embedding_queue").Scan(&n); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
