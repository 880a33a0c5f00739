package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lepinkainen/folio/internal/errors"
	"github.com/lepinkainen/folio/internal/testutil"
	"github.com/lepinkainen/folio/internal/tui"
)

func TestBooksCommand_ListsPage(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "books"))

	text := out.String()
	assert.Contains(t, text, "ID")
	assert.Contains(t, text, "Frankenstein; Or, The Modern Prometheus")
	assert.Contains(t, text, "Austen, Jane")
	assert.Contains(t, text, "Page 1 of 1 (3 books)")
	assert.NotContains(t, text, "[next]")
	assert.Equal(t, []string{"/books?page=1"}, stub.Requests())
}

func TestBooksCommand_SearchAndSavedPreferences(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "books", "--search", "dune", "--remember"))
	assert.Contains(t, out.String(), "Dune Road")
	assert.NotContains(t, out.String(), "Pride and Prejudice")
	assert.Equal(t, "dune", app.Prefs.Get().SearchQuery)

	// The saved search applies when no flag is given.
	out.Reset()
	require.NoError(t, execCLI(t, app, "books"))
	assert.Contains(t, out.String(), "Dune Road")
	assert.Len(t, stub.Requests(), 1, "same query is served from cache")

	out.Reset()
	require.NoError(t, execCLI(t, app, "books", "--no-prefs"))
	assert.Contains(t, out.String(), "Pride and Prejudice")
}

func TestBooksCommand_TopicAndEmpty(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "books", "--topic", "love"))
	assert.Contains(t, out.String(), "Pride and Prejudice")
	assert.NotContains(t, out.String(), "Frankenstein")

	out.Reset()
	require.NoError(t, execCLI(t, app, "books", "--search", "zzz"))
	assert.Contains(t, out.String(), "No books found.")
}

func TestBooksCommand_MarksWishlist(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "wishlist", "add", "1342"))
	out.Reset()
	require.NoError(t, execCLI(t, app, "books"))
	assert.Regexp(t, `(?m)^\*\s+1342\s+Pride and Prejudice`, out.String())
}

func TestBooksCommand_TransportError(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	stub.FailNext(100)
	app, _ := newTestApp(t, stub)

	err := execCLI(t, app, "books")
	require.Error(t, err)
	assert.True(t, apperrors.IsTransportError(err))
	assert.Contains(t, err.Error(), "Could not reach the book catalog")
	assert.Len(t, stub.Requests(), 4, "first attempt plus three retries")
}

func TestShowCommand(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "show", "84"))
	text := out.String()
	assert.Contains(t, text, "Frankenstein; Or, The Modern Prometheus")
	assert.Contains(t, text, "Shelley, Mary Wollstonecraft")
	assert.Contains(t, text, "https://www.gutenberg.org/cache/epub/84/pg84.cover.medium.jpg")
	assert.Contains(t, text, "https://www.gutenberg.org/ebooks/84.html.images")
	assert.Contains(t, text, "12000")
	assert.Regexp(t, `Wishlist:\s+no`, text)

	_, section, found := strings.Cut(text, "Download options:\n")
	require.True(t, found)
	lines := strings.Split(strings.TrimSpace(section), "\n")
	require.Len(t, lines, 4)
	assert.Regexp(t, `^EPUB\s+application/epub\+zip\s+https://www.gutenberg.org/ebooks/84.epub3.images$`, strings.TrimSpace(lines[0]))
	assert.Regexp(t, `^PDF\s+application/pdf\s+https://www.gutenberg.org/ebooks/84.pdf$`, strings.TrimSpace(lines[1]))
	assert.Regexp(t, `^Text\s+text/html\s+https://www.gutenberg.org/ebooks/84.html.images$`, strings.TrimSpace(lines[2]))
	assert.Regexp(t, `^Text\s+text/plain; charset=utf-8\s+https://www.gutenberg.org/ebooks/84.txt.utf-8$`, strings.TrimSpace(lines[3]))
	assert.NotContains(t, section, "pg84-h.zip")
}

func TestShowCommand_Refresh(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, _ := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "show", "84"))
	require.NoError(t, execCLI(t, app, "show", "84"))
	assert.Len(t, stub.Requests(), 1, "cached book is reused")

	require.NoError(t, execCLI(t, app, "show", "--refresh", "84"))
	assert.Len(t, stub.Requests(), 2)
}

func TestShowCommand_NoDownloadOptions(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "show", "1342"))
	assert.NotContains(t, out.String(), "Download options")
}

func TestShowCommand_NotFound(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, _ := newTestApp(t, stub)

	err := execCLI(t, app, "show", "999")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Len(t, stub.Requests(), 1)

	err = execCLI(t, app, "show", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid book id 0")
	assert.Len(t, stub.Requests(), 1)
}

func TestGenresCommand(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "genres"))
	assert.Equal(t, "Adventure stories\nEngland\nLove stories\nMonsters\nScience fiction\n", out.String())
}

func TestBrowseCommand(t *testing.T) {
	stub := testutil.NewStubCatalog(t)
	app, _ := newTestApp(t, stub)

	original := browse
	t.Cleanup(func() { browse = original })

	var got tui.Deps
	browse = func(_ context.Context, deps tui.Deps) error {
		got = deps
		return nil
	}

	require.NoError(t, execCLI(t, app))
	assert.Same(t, app.Catalog, got.Catalog)
	assert.Same(t, app.Wishlist, got.Wishlist)
	assert.Same(t, app.Prefs, got.Preferences)
	assert.Equal(t, app.Settings.SearchDebounce, got.SearchDebounce)
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b", oneLine("a\n  b", 10))
	assert.Equal(t, "abcdefg...", oneLine("abcdefghijklmnop", 10))
}
