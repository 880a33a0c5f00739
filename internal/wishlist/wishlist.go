// Package wishlist keeps the user's saved books in durable storage.
package wishlist

import (
	"encoding/json"
	"log/slog"
	"sync"

	apperrors "github.com/lepinkainen/folio/internal/errors"
	"github.com/lepinkainen/folio/internal/gutendex"
	"github.com/lepinkainen/folio/internal/storage"
)

// StorageKey is where the wishlist is persisted.
const StorageKey = "bookWishlist"

// Item is a snapshot of a book taken when it was saved. It does not follow
// later catalog changes.
type Item struct {
	ID         int               `json:"id"`
	Title      string            `json:"title"`
	Authors    []gutendex.Person `json:"authors"`
	CoverImage string            `json:"coverImage"`
	Subjects   []string          `json:"subjects"`
}

// ItemFromBook snapshots a catalog book into a wishlist item.
func ItemFromBook(book *gutendex.Book) Item {
	return Item{
		ID:         book.ID,
		Title:      book.Title,
		Authors:    append([]gutendex.Person(nil), book.Authors...),
		CoverImage: book.CoverImage(),
		Subjects:   append([]string(nil), book.Subjects...),
	}
}

// Store is a set of Items keyed by id, kept in insertion order.
//
// Storage failures never reach the caller: they are logged and the wishlist
// behaves as empty (reads) or unchanged (writes).
type Store struct {
	kv storage.KeyValue
	mu sync.Mutex
}

// New creates a Store persisting into kv.
func New(kv storage.KeyValue) *Store {
	return &Store{kv: kv}
}

// List returns the saved items in insertion order.
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Contains reports whether a book is saved.
func (s *Store) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.load(), id) >= 0
}

// Add saves item unless an item with the same id is already present.
func (s *Store) Add(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	if indexOf(items, item.ID) >= 0 {
		return
	}
	s.save(append(items, item))
}

// Remove deletes the item with id. Removing an absent id is a no-op.
func (s *Store) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	i := indexOf(items, id)
	if i < 0 {
		return
	}
	s.save(append(items[:i], items[i+1:]...))
}

// Toggle removes item if saved and adds it otherwise. It reports whether the
// item is saved afterwards.
func (s *Store) Toggle(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	if i := indexOf(items, item.ID); i >= 0 {
		s.save(append(items[:i], items[i+1:]...))
		return false
	}
	s.save(append(items, item))
	return true
}

// Clear removes every item.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.RemoveItem(StorageKey); err != nil {
		logStorageError(apperrors.NewStorageError("remove", StorageKey, err))
	}
}

func (s *Store) load() []Item {
	raw, ok, err := s.kv.GetItem(StorageKey)
	if err != nil {
		logStorageError(apperrors.NewStorageError("read", StorageKey, err))
		return []Item{}
	}
	if !ok || raw == "" {
		return []Item{}
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logStorageError(apperrors.NewStorageError("decode", StorageKey, err))
		return []Item{}
	}
	if items == nil {
		items = []Item{}
	}
	return items
}

func (s *Store) save(items []Item) {
	data, err := json.Marshal(items)
	if err != nil {
		logStorageError(apperrors.NewStorageError("encode", StorageKey, err))
		return
	}
	if err := s.kv.SetItem(StorageKey, string(data)); err != nil {
		logStorageError(apperrors.NewStorageError("write", StorageKey, err))
	}
}

func indexOf(items []Item, id int) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func logStorageError(err error) {
	slog.Warn("Wishlist storage unavailable, continuing without it", "error", err)
}
