package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SlotStore manages SQLite persistence for named value slots.
type SlotStore struct {
	db *sql.DB
}

// DefaultDBPath returns the database location under $XDG_DATA_HOME,
// creating the directory if needed.
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "dailytask")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "dailytask.db"), nil
}

// Open opens (or creates) the SQLite database and ensures the schema exists.
func Open(dbPath string) (*SlotStore, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("determine db path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if err := migrateUpdatedAt(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate updated_at: %w", err)
	}

	return &SlotStore{db: db}, nil
}

// migrateUpdatedAt upgrades databases created before slots recorded their
// write time.
func migrateUpdatedAt(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(kv)")
	if err != nil {
		return err
	}
	defer rows.Close()

	hasUpdatedAt := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == "updated_at" {
			hasUpdatedAt = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !hasUpdatedAt {
		_, err := db.Exec("ALTER TABLE kv ADD COLUMN updated_at TEXT")
		return err
	}
	return nil
}

// Load returns the value stored under key. ok is false if the slot is empty.
func (s *SlotStore) Load(key string) (data []byte, ok bool, err error) {
	var value string
	err = s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load slot %q: %w", key, err)
	}
	return []byte(value), true, nil
}

// Save replaces the value stored under key.
func (s *SlotStore) Save(key string, data []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	return nil
}

// Delete removes the slot. Deleting an empty slot is not an error.
func (s *SlotStore) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("delete slot %q: %w", key, err)
	}
	return nil
}

// UpdatedAt reports when the slot was last written.
func (s *SlotStore) UpdatedAt(key string) (time.Time, bool, error) {
	var updated sql.NullString
	err := s.db.QueryRow("SELECT updated_at FROM kv WHERE key = ?", key).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get updated_at of %q: %w", key, err)
	}
	if !updated.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, updated.String)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// Close closes the database connection.
func (s *SlotStore) Close() error {
	return s.db.Close()
}
