// Package catalog is what the views use to read books: it puts the query
// cache in front of the remote catalog client.
package catalog

import (
	"context"
	"fmt"

	"github.com/lepinkainen/folio/internal/cachekey"
	"github.com/lepinkainen/folio/internal/gutendex"
	"github.com/lepinkainen/folio/internal/query"
)

// DefaultPageSize is the number of books Gutendex returns per page.
const DefaultPageSize = 32

// Fetcher is the remote side of the catalog.
type Fetcher interface {
	FetchPage(ctx context.Context, page int, search, topic string) (*gutendex.Page, error)
	FetchByID(ctx context.Context, id int) (*gutendex.Book, error)
}

// Catalog serves list and detail queries through per-kind caches.
type Catalog struct {
	client   Fetcher
	pages    *query.Cache[*gutendex.Page]
	books    *query.Cache[*gutendex.Book]
	listOpts query.Options
	itemOpts query.Options
	pageSize int
}

// Option configures a Catalog.
type Option func(*config)

type config struct {
	listOpts  query.Options
	itemOpts  query.Options
	pageSize  int
	cacheOpts []query.CacheOption
}

// WithListOptions overrides the cache options for list queries.
func WithListOptions(opts query.Options) Option {
	return func(c *config) { c.listOpts = opts }
}

// WithItemOptions overrides the cache options for single-book queries.
func WithItemOptions(opts query.Options) Option {
	return func(c *config) { c.itemOpts = opts }
}

// WithPageSize sets the page size used to compute total pages.
func WithPageSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithCacheOptions passes options to both underlying caches.
func WithCacheOptions(opts ...query.CacheOption) Option {
	return func(c *config) { c.cacheOpts = append(c.cacheOpts, opts...) }
}

// New creates a Catalog backed by client.
func New(client Fetcher, opts ...Option) *Catalog {
	cfg := config{
		listOpts: query.ListOptions(),
		itemOpts: query.ItemOptions(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Catalog{
		client:   client,
		pages:    query.New[*gutendex.Page]("books", cfg.cacheOpts...),
		books:    query.New[*gutendex.Book]("book", cfg.cacheOpts...),
		listOpts: cfg.listOpts,
		itemOpts: cfg.itemOpts,
		pageSize: cfg.pageSize,
	}
}

// BooksResult is what a list view renders.
type BooksResult struct {
	Books       []gutendex.Book
	TotalCount  int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
	IsLoading   bool
	Err         error
}

// BookResult is what a detail view renders.
type BookResult struct {
	Book      *gutendex.Book
	IsLoading bool
	Err       error
}

// Books returns a page of books. Pages below 1 are treated as page 1.
func (c *Catalog) Books(ctx context.Context, page int, search, topic string) BooksResult {
	key := cachekey.ForList(max(page, 1), search, topic)
	return c.booksResult(c.pages.Get(ctx, key, c.fetchPage(key), c.listOpts))
}

// RefreshBooks refetches a page regardless of how recently it was loaded.
func (c *Catalog) RefreshBooks(ctx context.Context, page int, search, topic string) BooksResult {
	key := cachekey.ForList(max(page, 1), search, topic)
	return c.booksResult(c.pages.Revalidate(ctx, key, c.fetchPage(key), c.listOpts))
}

// PeekBooks returns what is cached for a page without fetching.
func (c *Catalog) PeekBooks(page int, search, topic string) BooksResult {
	return c.booksResult(c.pages.Peek(cachekey.ForList(max(page, 1), search, topic)))
}

// Book returns a single book. A non-positive id is not fetched.
func (c *Catalog) Book(ctx context.Context, id int) BookResult {
	if id <= 0 {
		return BookResult{}
	}
	key := cachekey.ForItem(id)
	return bookResult(c.books.Get(ctx, key, c.fetchBook(key), c.itemOpts))
}

// RefreshBook refetches a single book.
func (c *Catalog) RefreshBook(ctx context.Context, id int) BookResult {
	if id <= 0 {
		return BookResult{}
	}
	key := cachekey.ForItem(id)
	return bookResult(c.books.Revalidate(ctx, key, c.fetchBook(key), c.itemOpts))
}

// PageSize returns the page size used for TotalPages.
func (c *Catalog) PageSize() int {
	return c.pageSize
}

func (c *Catalog) fetchPage(key cachekey.Key) query.FetchFunc[*gutendex.Page] {
	return func(ctx context.Context) (*gutendex.Page, error) {
		params, ok := cachekey.ParseList(key)
		if !ok {
			return nil, fmt.Errorf("invalid list key %q", key)
		}
		return c.client.FetchPage(ctx, params.Page, params.Search, params.Topic)
	}
}

func (c *Catalog) fetchBook(key cachekey.Key) query.FetchFunc[*gutendex.Book] {
	return func(ctx context.Context) (*gutendex.Book, error) {
		id, ok := cachekey.ParseItem(key)
		if !ok {
			return nil, fmt.Errorf("invalid item key %q", key)
		}
		return c.client.FetchByID(ctx, id)
	}
}

func (c *Catalog) booksResult(st query.State[*gutendex.Page]) BooksResult {
	res := BooksResult{
		Books:     []gutendex.Book{},
		IsLoading: st.IsLoading,
		Err:       st.Err,
	}
	if page := st.Value; st.HasValue && page != nil {
		if page.Results != nil {
			res.Books = page.Results
		}
		res.TotalCount = page.Count
		res.TotalPages = page.TotalPages(c.pageSize)
		res.HasNext = page.HasNext()
		res.HasPrevious = page.HasPrevious()
	}
	return res
}

func bookResult(st query.State[*gutendex.Book]) BookResult {
	res := BookResult{IsLoading: st.IsLoading, Err: st.Err}
	if st.HasValue {
		res.Book = st.Value
	}
	return res
}
