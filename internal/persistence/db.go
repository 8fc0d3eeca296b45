// Package persistence provides SQLite-based snapshot storage. The
// engine's state document is flat key/value JSON, so the table mirrors
// it: one row per store.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshot (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot writes the full state document (replace, transactional).
func (db *DB) SaveSnapshot(doc map[string]json.RawMessage) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snapshot"); err != nil {
		return err
	}
	stmt, err := tx.Preparex("INSERT INTO snapshot (key, value) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for key, value := range doc {
		if _, err := stmt.Exec(key, string(value)); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("snapshot saved", "keys", len(doc))
	return nil
}

// LoadSnapshot reads the stored document. An empty database returns an
// empty map, not an error.
func (db *DB) LoadSnapshot() (map[string]json.RawMessage, error) {
	rows, err := db.conn.Queryx("SELECT key, value FROM snapshot")
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	doc := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		doc[key] = json.RawMessage(value)
	}
	return doc, rows.Err()
}

// HasSnapshot reports whether a saved state document exists.
func (db *DB) HasSnapshot() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM snapshot"); err != nil {
		return false
	}
	return n > 0
}

// SaveMeta stores a key/value pair outside the state document (run id,
// save stamps).
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value; missing keys return "".
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
