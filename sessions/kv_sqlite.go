package sessions

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var _ KV = (*SQLiteKV)(nil)

const kvSchema = `CREATE TABLE IF NOT EXISTS console_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteKV persists keys in a SQLite database
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV opens (and creates if needed) the database at dbPath
func NewSQLiteKV(dbPath string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteKV New] failed to open SQLite database: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[SQLiteKV New] failed to create schema: %w", err)
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM console_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[SQLiteKV Get] %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO console_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("[SQLiteKV Set] %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Delete(keys ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("[SQLiteKV Delete] begin: %w", err)
	}
	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM console_kv WHERE key = ?`, k); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("[SQLiteKV Delete] %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[SQLiteKV Delete] commit: %w", err)
	}
	return nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
