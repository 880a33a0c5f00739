package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lepinkainen/folio/internal/errors"
	"github.com/lepinkainen/folio/internal/testutil"
)

func TestWishlistCommands(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)

	require.NoError(t, execCLI(t, app, "wishlist"))
	assert.Equal(t, "Your wishlist is empty.\n", out.String())

	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "add", "84"))
	require.NoError(t, execCLI(t, app, "wishlist", "add", "1342"))
	require.NoError(t, execCLI(t, app, "wishlist", "add", "84"))
	assert.Contains(t, out.String(), `Added "Pride and Prejudice" to your wishlist.`)

	items := app.Wishlist.List()
	require.Len(t, items, 2, "adding twice keeps one entry")
	assert.Equal(t, 84, items[0].ID)
	assert.Equal(t, "https://www.gutenberg.org/cache/epub/84/pg84.cover.medium.jpg", items[0].CoverImage)

	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "list"))
	assert.Contains(t, out.String(), "Frankenstein")
	assert.Contains(t, out.String(), "Pride and Prejudice")

	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "toggle", "84"))
	assert.Contains(t, out.String(), "Removed book 84")
	assert.False(t, app.Wishlist.Contains(84))

	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "toggle", "84"))
	assert.Contains(t, out.String(), "Added")
	assert.True(t, app.Wishlist.Contains(84))

	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "remove", "1342"))
	assert.Contains(t, out.String(), "Removed book 1342")
	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "remove", "1342"))
	assert.Contains(t, out.String(), "not on your wishlist")

	require.NoError(t, execCLI(t, app, "wishlist", "clear"))
	assert.Empty(t, app.Wishlist.List())
}

func TestWishlistAdd_UnknownBook(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, _ := newTestApp(t, stub)

	err := execCLI(t, app, "wishlist", "add", "999")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Empty(t, app.Wishlist.List())
}

func TestWishlistExport(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, out := newTestApp(t, stub)
	require.NoError(t, execCLI(t, app, "wishlist", "add", "1342"))

	dir := filepath.Join(t.TempDir(), "notes")
	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "export", "--dir", dir))
	assert.Contains(t, out.String(), "Exported 1 notes")
	assert.FileExists(t, filepath.Join(dir, "Pride and Prejudice.md"))

	out.Reset()
	require.NoError(t, execCLI(t, app, "wishlist", "export", "--dir", dir))
	assert.Contains(t, out.String(), "1 skipped")
}

func TestWishlistExport_DefaultDir(t *testing.T) {
	stub := testutil.NewStubCatalog(t, stubBooks()...)
	app, _ := newTestApp(t, stub)
	require.NoError(t, execCLI(t, app, "wishlist", "add", "84"))

	require.NoError(t, execCLI(t, app, "wishlist", "export"))
	assert.FileExists(t, filepath.Join(app.Settings.ExportDir, "Frankenstein; Or, The Modern Prometheus.md"))
}
