package catalog

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

var (
	leadingDashes  = regexp.MustCompile(`^--\s*`)
	trailingDashes = regexp.MustCompile(`\s*--.*$`)
)

// Genres derives a sorted genre list from the unfiltered first page.
func (c *Catalog) Genres(ctx context.Context) ([]string, error) {
	res := c.Books(ctx, 1, "", "")
	if res.Err != nil && len(res.Books) == 0 {
		return nil, res.Err
	}

	seen := make(map[string]bool)
	var genres []string
	for _, book := range res.Books {
		for _, subject := range book.Subjects {
			g := CleanSubject(subject)
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			genres = append(genres, g)
		}
	}
	sort.Strings(genres)
	return genres, nil
}

// CleanSubject reduces a Library of Congress style subject
// ("Science fiction -- Fiction") to its leading heading.
func CleanSubject(subject string) string {
	s := leadingDashes.ReplaceAllString(subject, "")
	s = trailingDashes.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
