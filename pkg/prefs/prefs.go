package prefs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store persists small device-local preferences, such as column visibility,
// in a SQLite file. Values are JSON documents keyed by name.
type Store struct {
	db *sql.DB
}

// Open creates or opens the preference database at the given path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("prefs: path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prefs: creating directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("prefs: opening database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("prefs: initializing schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get unmarshals the stored value for key into out. Missing keys report
// ok=false and leave out untouched.
func (s *Store) Get(key string, out any) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prefs: reading %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("prefs: decoding %q: %w", key, err)
	}
	return true, nil
}

// Set stores value under key, replacing any previous entry.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("prefs: encoding %q: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, string(raw))
	if err != nil {
		return fmt.Errorf("prefs: writing %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("prefs: deleting %q: %w", key, err)
	}
	return nil
}

// LoadVisibility returns the persisted column visibility map for key, nil
// when none was stored yet.
func (s *Store) LoadVisibility(key string) (map[string]bool, error) {
	var visibility map[string]bool
	ok, err := s.Get(key, &visibility)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return visibility, nil
}

// SaveVisibility persists the column visibility map under key.
func (s *Store) SaveVisibility(key string, visibility map[string]bool) error {
	return s.Set(key, visibility)
}
