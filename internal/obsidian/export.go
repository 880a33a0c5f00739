package obsidian

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lepinkainen/folio/internal/catalog"
	"github.com/lepinkainen/folio/internal/fileutil"
	"github.com/lepinkainen/folio/internal/wishlist"
)

// GutenbergURL is the public page for a book.
const GutenbergURL = "https://www.gutenberg.org/ebooks/%d"

// ExportOptions controls a wishlist export.
type ExportOptions struct {
	Dir string
	// Covers downloads cover images into Dir/attachments.
	Covers bool
	// Overwrite refreshes existing notes. Their body and extra tags are kept.
	Overwrite bool
	// HTTPClient is used for cover downloads. Defaults to a client with a 30s timeout.
	HTTPClient fileutil.HTTPDoer
}

// ExportResult counts what an export did.
type ExportResult struct {
	Written int
	Skipped int
	Covers  int
	Paths   []string
}

// ExportWishlist writes one note per item. A failed cover download is logged
// and the note is written without it.
func ExportWishlist(ctx context.Context, items []wishlist.Item, opts ExportOptions) (*ExportResult, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("export directory not set")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	result := &ExportResult{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := noteName(item)
		path := fileutil.MarkdownPath(name, opts.Dir)
		if owner, ok := noteOwner(path); ok && owner != item.ID {
			// Another edition already holds this title.
			name = idName(name, item.ID)
			path = fileutil.MarkdownPath(name, opts.Dir)
		}
		if fileutil.FileExists(path) && !opts.Overwrite {
			slog.Info("Note already exists, skipping", "path", path)
			result.Skipped++
			continue
		}

		cover := ""
		if opts.Covers && isRemote(item.CoverImage) {
			res, err := fileutil.DownloadCover(ctx, opts.HTTPClient, fileutil.CoverDownloadOptions{
				URL:          item.CoverImage,
				OutputDir:    opts.Dir,
				Filename:     fileutil.BuildCoverFilename(name),
				UpdateCovers: opts.Overwrite,
			})
			if err != nil {
				slog.Warn("Cover download failed", "id", item.ID, "url", item.CoverImage, "error", err)
			} else if res != nil {
				cover = res.RelativePath
				if res.Downloaded {
					result.Covers++
				}
			}
		}

		note, err := buildNote(item, cover, path)
		if err != nil {
			return result, err
		}
		data, err := note.Build()
		if err != nil {
			return result, fmt.Errorf("failed to build note for %d: %w", item.ID, err)
		}
		if _, err := fileutil.WriteFileWithOverwrite(path, data, 0o644, true); err != nil {
			return result, fmt.Errorf("failed to write %s: %w", path, err)
		}

		slog.Debug("Wrote note", "id", item.ID, "path", path)
		result.Written++
		result.Paths = append(result.Paths, path)
	}

	return result, nil
}

// buildNote renders item, folding in the tags and body of an existing note at path.
func buildNote(item wishlist.Item, localCover, path string) (*Note, error) {
	var existingTags []string
	body := ""
	if content, err := os.ReadFile(path); err == nil {
		prev, err := ParseMarkdown(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse existing note %s: %w", path, err)
		}
		existingTags = prev.Frontmatter.GetStringArray("tags")
		body = prev.Body
	}

	fm := NewFrontmatter()
	fm.Set("gutenberg_id", item.ID)
	fm.Set("title", item.Title)
	fm.Set("authors", authorNames(item))
	fm.Set("url", fmt.Sprintf(GutenbergURL, item.ID))
	if len(item.Subjects) > 0 {
		fm.Set("subjects", item.Subjects)
	}
	switch {
	case localCover != "":
		fm.Set("cover", localCover)
	case isRemote(item.CoverImage):
		fm.Set("cover", item.CoverImage)
	}
	fm.Set("tags", MergeTags(existingTags, itemTags(item)))

	if body == "" {
		body = noteBody(item, localCover)
	}
	return &Note{Frontmatter: fm, Body: body}, nil
}

func itemTags(item wishlist.Item) []string {
	tags := []string{"book", "gutenberg", "wishlist"}
	for _, subject := range item.Subjects {
		if genre := NormalizeTag(catalog.CleanSubject(subject)); genre != "" {
			tags = append(tags, "genre/"+genre)
		}
	}
	return tags
}

func noteBody(item wishlist.Item, localCover string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.Title)
	if localCover != "" {
		fmt.Fprintf(&b, "![[%s|250]]\n\n", localCover)
	}
	fmt.Fprintf(&b, "**Authors:** %s\n\n", strings.Join(authorNames(item), "; "))
	fmt.Fprintf(&b, "[Read on Project Gutenberg](%s)\n", fmt.Sprintf(GutenbergURL, item.ID))
	return b.String()
}

func authorNames(item wishlist.Item) []string {
	names := []string{}
	for _, a := range item.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		names = append(names, "Unknown Author")
	}
	return names
}

func noteName(item wishlist.Item) string {
	if name := fileutil.SanitizeFilename(item.Title); name != "" {
		return name
	}
	return fmt.Sprintf("Gutenberg %d", item.ID)
}

// idName appends the book id to name, shortening name so the id always fits.
func idName(name string, id int) string {
	suffix := fmt.Sprintf(" (%d)", id)
	return fileutil.TruncateFilename(name, fileutil.MaxFilenameBytes-len(suffix)) + suffix
}

// noteOwner returns the gutenberg_id recorded in the note at path, if any.
func noteOwner(path string) (int, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	note, err := ParseMarkdown(content)
	if err != nil {
		return 0, false
	}
	if _, ok := note.Frontmatter.Get("gutenberg_id"); !ok {
		return 0, false
	}
	return note.Frontmatter.GetInt("gutenberg_id"), true
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
