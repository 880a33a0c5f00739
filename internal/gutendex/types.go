package gutendex

// Person is an author or translator.
type Person struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year,omitempty"`
	DeathYear *int   `json:"death_year,omitempty"`
}

// Book is a catalog entry as returned by the API. It is never mutated locally.
type Book struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Authors       []Person          `json:"authors"`
	Translators   []Person          `json:"translators"`
	Subjects      []string          `json:"subjects"`
	Bookshelves   []string          `json:"bookshelves"`
	Languages     []string          `json:"languages"`
	Copyright     *bool             `json:"copyright,omitempty"`
	MediaType     string            `json:"media_type"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int               `json:"download_count"`
}

// Page is one page of a list query.
type Page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Book  `json:"results"`
}

// HasNext reports whether the API advertises a following page.
func (p *Page) HasNext() bool {
	return p != nil && p.Next != nil && *p.Next != ""
}

// HasPrevious reports whether the API advertises a preceding page.
func (p *Page) HasPrevious() bool {
	return p != nil && p.Previous != nil && *p.Previous != ""
}

// TotalPages estimates the number of pages from the total count. The API does
// not report its page size, so the caller supplies it.
func (p *Page) TotalPages(pageSize int) int {
	if p == nil || pageSize <= 0 || p.Count <= 0 {
		return 0
	}
	return (p.Count + pageSize - 1) / pageSize
}
