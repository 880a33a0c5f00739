package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// StubBook is the JSON shape of a catalog book served by StubCatalog.
type StubBook struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []StubAuthor      `json:"authors"`
	Translators   []StubAuthor      `json:"translators"`
	Subjects      []string          `json:"subjects"`
	Bookshelves   []string          `json:"bookshelves"`
	Languages     []string          `json:"languages"`
	Copyright     *bool             `json:"copyright,omitempty"`
	MediaType     string            `json:"media_type"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

// StubAuthor is the JSON shape of an author served by StubCatalog.
type StubAuthor struct {
	Name string `json:"name"`
}

// StubCatalog is an httptest server speaking the subset of the Gutendex API
// the client uses. Books are filtered by case-insensitive substring match on
// title/author (search) and subject (topic), then paginated.
type StubCatalog struct {
	Server   *httptest.Server
	PageSize int

	mu       sync.Mutex
	books    []StubBook
	requests []string
	failures int
}

// NewStubCatalog starts a stub catalog serving books.
func NewStubCatalog(t *testing.T, books ...StubBook) *StubCatalog {
	t.Helper()

	s := &StubCatalog{PageSize: 32, books: books}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

// URL returns the base URL of the stub.
func (s *StubCatalog) URL() string {
	return s.Server.URL
}

// Requests returns the request URIs received so far.
func (s *StubCatalog) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// FailNext makes the next n requests answer 500.
func (s *StubCatalog) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
}

// SetBooks replaces the served books.
func (s *StubCatalog) SetBooks(books ...StubBook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = books
}

func (s *StubCatalog) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		http.Error(w, "stub failure", http.StatusInternalServerError)
		return
	}
	books := append([]StubBook(nil), s.books...)
	pageSize := s.PageSize
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if idStr, ok := strings.CutPrefix(r.URL.Path, "/books/"); ok && idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		for _, b := range books {
			if b.ID == id {
				_ = json.NewEncoder(w).Encode(b)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		return
	}

	if r.URL.Path != "/books" && r.URL.Path != "/books/" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	search := strings.ToLower(q.Get("search"))
	topic := strings.ToLower(q.Get("topic"))
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	var matched []StubBook
	for _, b := range books {
		if search != "" && !matchesSearch(b, search) {
			continue
		}
		if topic != "" && !matchesTopic(b, topic) {
			continue
		}
		matched = append(matched, b)
	}

	start := (page - 1) * pageSize
	if start > len(matched) && len(matched) > 0 {
		http.NotFound(w, r)
		return
	}
	end := min(start+pageSize, len(matched))
	results := []StubBook{}
	if start < end {
		results = matched[start:end]
	}

	resp := map[string]any{
		"count":    len(matched),
		"next":     nil,
		"previous": nil,
		"results":  results,
	}
	if end < len(matched) {
		resp["next"] = fmt.Sprintf("%s/books/?page=%d", s.Server.URL, page+1)
	}
	if page > 1 {
		resp["previous"] = fmt.Sprintf("%s/books/?page=%d", s.Server.URL, page-1)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func matchesSearch(b StubBook, search string) bool {
	if strings.Contains(strings.ToLower(b.Title), search) {
		return true
	}
	for _, a := range b.Authors {
		if strings.Contains(strings.ToLower(a.Name), search) {
			return true
		}
	}
	return false
}

func matchesTopic(b StubBook, topic string) bool {
	for _, list := range [][]string{b.Subjects, b.Bookshelves} {
		for _, s := range list {
			if strings.Contains(strings.ToLower(s), topic) {
				return true
			}
		}
	}
	return false
}
