// Package store implements the persisted session store: the durable,
// browser-profile-scoped mirror of session facts (bearer token, active role,
// cached user snapshot, role-upgrade token) plus the shopping cart. Entries
// are independent named values, not one blob; the store enforces no expiry of
// its own - callers remove stale entries explicitly.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"farmgate/internal/logging"

	_ "github.com/mattn/go-sqlite3"
)

// Persisted entry names. These are a stable contract: the session manager and
// access layer address entries by these keys.
const (
	KeyAuthToken    = "auth_token"
	KeyCurrentRole  = "current_role"
	KeyUserData     = "user_data"
	KeyUpgradeToken = "upgrade_token"
)

// LocalStore is a SQLite-backed key/value store with a dedicated cart table.
// All operations are synchronous. Concurrent processes share the file (WAL +
// busy_timeout); live cross-process invalidation is out of scope.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore initializes the SQLite database at the given path.
func NewLocalStore(path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewLocalStore")
	defer timer.Stop()

	logging.Store("Initializing LocalStore at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to create directory %s: %v", dir, err)
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}

	logging.Store("LocalStore initialization complete")
	return store, nil
}

// initialize creates the required tables.
func (s *LocalStore) initialize() error {
	kvTable := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	cartTable := `
	CREATE TABLE IF NOT EXISTS cart_items (
		product_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		unit_price REAL NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		farmer TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		harvested_at DATETIME,
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	for _, stmt := range []string{kvTable, cartTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the value for key and whether it was present.
func (s *LocalStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			logging.Get(logging.CategoryStore).Error("Failed to read key %s: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// Set writes the value for key, replacing any previous value.
func (s *LocalStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logging.StoreDebug("Setting key %s (%d bytes)", key, len(value))

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		key, value,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to set key %s: %v", key, err)
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the entry for key. Removing an absent key is a no-op.
func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to remove key %s: %v", key, err)
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
