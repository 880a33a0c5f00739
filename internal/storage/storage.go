// Package storage provides the durable string key-value store that user
// state (wishlist, search preferences) persists into.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"
)

// KeyValue is a string-valued durable store.
type KeyValue interface {
	// GetItem returns the value for key and whether it exists.
	GetItem(key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error
}

// SQLiteStore is a KeyValue backed by a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ KeyValue = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// SQLite serialises writers; one connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to store database: %w", err), closeErr)
	}

	if _, err := db.Exec(KeyValueSchema); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to create store table: %w", err), closeErr)
	}

	slog.Debug("Opened key-value store", "path", dbPath)
	return &SQLiteStore{db: db}, nil
}

// GetItem retrieves a stored value.
func (s *SQLiteStore) GetItem(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE storage_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query store: %w", err)
	}
	return value, true, nil
}

// SetItem stores a value.
func (s *SQLiteStore) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO kv_store (storage_key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	return nil
}

// RemoveItem deletes a stored value.
func (s *SQLiteStore) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM kv_store WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete from store: %w", err)
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (s *SQLiteStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT storage_key FROM kv_store ORDER BY storage_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list store keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan store key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// MemoryStore is an in-process KeyValue. It is used when the database cannot
// be opened, so user state lasts for the session only.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ KeyValue = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
