package obsidian

import (
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/folio/internal/fileutil"
	"github.com/lepinkainen/folio/internal/gutendex"
	"github.com/lepinkainen/folio/internal/wishlist"
)

func coverServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.jpg" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_ = png.Encode(w, image.NewRGBA(image.Rect(0, 0, 10, 15)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func frankenstein(cover string) wishlist.Item {
	return wishlist.Item{
		ID:         84,
		Title:      "Frankenstein; Or, The Modern Prometheus",
		Authors:    []gutendex.Person{{Name: "Shelley, Mary Wollstonecraft"}},
		CoverImage: cover,
		Subjects:   []string{"Science fiction", "Monsters -- Fiction", "Horror tales"},
	}
}

func readNote(t *testing.T, path string) *Note {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	note, err := ParseMarkdown(content)
	require.NoError(t, err)
	return note
}

func TestExportWishlist_WritesNotes(t *testing.T) {
	dir := t.TempDir()
	items := []wishlist.Item{
		frankenstein("https://www.gutenberg.org/cache/epub/84/pg84.cover.medium.jpg"),
		{ID: 1342, Title: "Pride and Prejudice", CoverImage: gutendex.PlaceholderCover},
	}

	res, err := ExportWishlist(context.Background(), items, ExportOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Covers)
	require.Len(t, res.Paths, 2)

	note := readNote(t, filepath.Join(dir, "Frankenstein; Or, The Modern Prometheus.md"))
	fm := note.Frontmatter
	assert.Equal(t, 84, fm.GetInt("gutenberg_id"))
	assert.Equal(t, "Frankenstein; Or, The Modern Prometheus", fm.GetString("title"))
	assert.Equal(t, []string{"Shelley, Mary Wollstonecraft"}, fm.GetStringArray("authors"))
	assert.Equal(t, "https://www.gutenberg.org/ebooks/84", fm.GetString("url"))
	assert.Equal(t, "https://www.gutenberg.org/cache/epub/84/pg84.cover.medium.jpg", fm.GetString("cover"))
	assert.Equal(t, []string{"book", "genre/Horror-tales", "genre/Monsters", "genre/Science-fiction", "gutenberg", "wishlist"},
		fm.GetStringArray("tags"))
	assert.Contains(t, note.Body, "# Frankenstein; Or, The Modern Prometheus")
	assert.Contains(t, note.Body, "**Authors:** Shelley, Mary Wollstonecraft")

	plain := readNote(t, filepath.Join(dir, "Pride and Prejudice.md"))
	_, hasCover := plain.Frontmatter.Get("cover")
	assert.False(t, hasCover, "placeholder covers are not exported")
	assert.Equal(t, []string{"Unknown Author"}, plain.Frontmatter.GetStringArray("authors"))
}

func TestExportWishlist_SkipsExistingUnlessOverwrite(t *testing.T) {
	dir := t.TempDir()
	item := frankenstein("")
	_, err := ExportWishlist(context.Background(), []wishlist.Item{item}, ExportOptions{Dir: dir})
	require.NoError(t, err)

	path := fileutil.MarkdownPath(item.Title, dir)
	edited := "---\ntitle: old\ntags: [favourite]\n---\nMy own review.\n"
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	res, err := ExportWishlist(context.Background(), []wishlist.Item{item}, ExportOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Written)

	res, err = ExportWishlist(context.Background(), []wishlist.Item{item}, ExportOptions{Dir: dir, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	note := readNote(t, path)
	assert.Equal(t, item.Title, note.Frontmatter.GetString("title"))
	assert.Contains(t, note.Frontmatter.GetStringArray("tags"), "favourite")
	assert.Contains(t, note.Frontmatter.GetStringArray("tags"), "wishlist")
	assert.Equal(t, "My own review.\n", note.Body)
}

func TestExportWishlist_DownloadsCovers(t *testing.T) {
	srv := coverServer(t)
	dir := t.TempDir()
	items := []wishlist.Item{
		frankenstein(srv.URL + "/84.jpg"),
		{ID: 345, Title: "Dracula", CoverImage: srv.URL + "/broken.jpg"},
	}

	res, err := ExportWishlist(context.Background(), items, ExportOptions{Dir: dir, Covers: true, HTTPClient: srv.Client()})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Covers)

	note := readNote(t, filepath.Join(dir, "Frankenstein; Or, The Modern Prometheus.md"))
	cover := note.Frontmatter.GetString("cover")
	assert.Equal(t, "attachments/Frankenstein; Or, The Modern Prometheus - cover.jpg", cover)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(cover)))
	assert.Contains(t, note.Body, "![["+cover+"|250]]")

	// A failed download falls back to the remote URL.
	dracula := readNote(t, filepath.Join(dir, "Dracula.md"))
	assert.Equal(t, srv.URL+"/broken.jpg", dracula.Frontmatter.GetString("cover"))
}

func TestExportWishlist_Errors(t *testing.T) {
	_, err := ExportWishlist(context.Background(), nil, ExportOptions{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := ExportWishlist(ctx, []wishlist.Item{frankenstein("")}, ExportOptions{Dir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Written)
}

func TestExportWishlist_UntitledItem(t *testing.T) {
	dir := t.TempDir()
	_, err := ExportWishlist(context.Background(), []wishlist.Item{{ID: 7}}, ExportOptions{Dir: dir})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "Gutenberg 7.md"))
}

func TestExportWishlist_SameTitleDifferentEditions(t *testing.T) {
	dir := t.TempDir()
	items := []wishlist.Item{
		{ID: 1524, Title: "Hamlet"},
		{ID: 27761, Title: "Hamlet"},
	}

	res, err := ExportWishlist(context.Background(), items, ExportOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 0, res.Skipped)

	assert.Equal(t, 1524, readNote(t, filepath.Join(dir, "Hamlet.md")).Frontmatter.GetInt("gutenberg_id"))
	assert.Equal(t, 27761, readNote(t, filepath.Join(dir, "Hamlet (27761).md")).Frontmatter.GetInt("gutenberg_id"))

	res, err = ExportWishlist(context.Background(), items, ExportOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written)
	assert.Equal(t, 2, res.Skipped)

	res, err = ExportWishlist(context.Background(), items, ExportOptions{Dir: dir, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1524, readNote(t, filepath.Join(dir, "Hamlet.md")).Frontmatter.GetInt("gutenberg_id"))
	assert.Equal(t, 27761, readNote(t, filepath.Join(dir, "Hamlet (27761).md")).Frontmatter.GetInt("gutenberg_id"))
}

func TestExportWishlist_LongTitles(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("A Very Long Collected Edition Title ", 10)
	items := []wishlist.Item{
		{ID: 1, Title: long},
		{ID: 2, Title: long},
		{ID: 3, Title: "Short"},
	}

	res, err := ExportWishlist(context.Background(), items, ExportOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Written)
	require.Len(t, res.Paths, 3)
	for _, path := range res.Paths {
		assert.LessOrEqual(t, len(filepath.Base(path)), fileutil.MaxFilenameBytes+len(".md"))
	}
	assert.True(t, strings.HasSuffix(res.Paths[1], " (2).md"))
	assert.Equal(t, long[:10], readNote(t, res.Paths[0]).Frontmatter.GetString("title")[:10])
	assert.FileExists(t, filepath.Join(dir, "Short.md"))
}
