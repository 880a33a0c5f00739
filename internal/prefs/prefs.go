// Package prefs persists the last used search text and genre filter.
package prefs

import (
	"encoding/json"
	"log/slog"
	"sync"

	apperrors "github.com/lepinkainen/folio/internal/errors"
	"github.com/lepinkainen/folio/internal/storage"
)

// StorageKey is where the preferences are persisted.
const StorageKey = "book-search-preferences"

// Preferences is the persisted search state.
type Preferences struct {
	SearchQuery   string `json:"searchQuery"`
	SelectedGenre string `json:"selectedGenre"`
}

// Store holds the session's preferences. They are read once when the Store is
// created and written in full on every change.
type Store struct {
	kv      storage.KeyValue
	mu      sync.Mutex
	current Preferences
}

// Load creates a Store and reads any persisted preferences. Unreadable or
// malformed content yields the defaults.
func Load(kv storage.KeyValue) *Store {
	s := &Store{kv: kv}

	raw, ok, err := kv.GetItem(StorageKey)
	switch {
	case err != nil:
		logStorageError(apperrors.NewStorageError("read", StorageKey, err))
	case ok && raw != "":
		var p Preferences
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			logStorageError(apperrors.NewStorageError("decode", StorageKey, err))
		} else {
			s.current = p
		}
	}
	return s
}

// Get returns the current preferences.
func (s *Store) Get() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetSearchQuery records the search text.
func (s *Store) SetSearchQuery(query string) {
	s.update(func(p *Preferences) { p.SearchQuery = query })
}

// SetSelectedGenre records the genre filter.
func (s *Store) SetSelectedGenre(genre string) {
	s.update(func(p *Preferences) { p.SelectedGenre = genre })
}

// Clear resets both fields.
func (s *Store) Clear() {
	s.update(func(p *Preferences) { *p = Preferences{} })
}

func (s *Store) update(change func(*Preferences)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change(&s.current)

	data, err := json.Marshal(s.current)
	if err != nil {
		logStorageError(apperrors.NewStorageError("encode", StorageKey, err))
		return
	}
	if err := s.kv.SetItem(StorageKey, string(data)); err != nil {
		logStorageError(apperrors.NewStorageError("write", StorageKey, err))
	}
}

func logStorageError(err error) {
	slog.Warn("Search preferences storage unavailable, using defaults", "error", err)
}
