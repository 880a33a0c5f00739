package gutendex

import (
	"strings"
)

// PlaceholderCover is used when a book carries no image format.
const PlaceholderCover = "/placeholder-book.jpg"

var coverFormats = []string{"image/jpeg", "image/png", "image/gif"}

// CoverImage picks the cover URL from the book's formats, preferring JPEG.
func (b *Book) CoverImage() string {
	for _, mime := range coverFormats {
		if url := b.Formats[mime]; url != "" {
			return url
		}
	}
	return PlaceholderCover
}

// AuthorNames joins author names for display.
func (b *Book) AuthorNames() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return "Unknown Author"
	}
	return strings.Join(names, ", ")
}

// Genres returns the first three subjects, used as display genres.
func (b *Book) Genres() []string {
	if len(b.Subjects) <= 3 {
		return b.Subjects
	}
	return b.Subjects[:3]
}

// IsPublicDomain reports whether the API flags the book as out of copyright.
// A missing flag is treated as not public domain.
func (b *Book) IsPublicDomain() bool {
	return b.Copyright != nil && !*b.Copyright
}
