package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/lepinkainen/folio/internal/catalog"
	"github.com/lepinkainen/folio/internal/gutendex"
	"github.com/lepinkainen/folio/internal/tui"
)

var browse = tui.Browse

// BooksCmd lists one page of the catalog.
type BooksCmd struct {
	Page     int    `short:"p" help:"Page number" default:"1"`
	Search   string `short:"s" help:"Search titles and authors (defaults to the saved search)"`
	Topic    string `short:"t" help:"Filter by subject or bookshelf (defaults to the saved genre)"`
	NoPrefs  bool   `help:"Ignore the saved search and genre"`
	Remember bool   `help:"Save --search and --topic as the new preferences"`
}

func (b *BooksCmd) Run(app *App) error {
	search, topic := b.Search, b.Topic
	if !b.NoPrefs {
		saved := app.Prefs.Get()
		if search == "" {
			search = saved.SearchQuery
		}
		if topic == "" {
			topic = saved.SelectedGenre
		}
	}
	if b.Remember {
		app.Prefs.SetSearchQuery(search)
		app.Prefs.SetSelectedGenre(topic)
	}

	res := app.Catalog.Books(app.Ctx, b.Page, search, topic)
	if res.Err != nil && len(res.Books) == 0 {
		return fmt.Errorf("%s: %w", catalog.Describe(res.Err), res.Err)
	}
	if len(res.Books) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No books found.")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tID\tTITLE\tAUTHORS")
	for _, book := range res.Books {
		mark := ""
		if app.Wishlist.Contains(book.ID) {
			mark = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", mark, book.ID, oneLine(book.Title, 60), oneLine(book.AuthorNames(), 40))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "\nPage %d of %d (%d books)", max(b.Page, 1), res.TotalPages, res.TotalCount)
	var nav []string
	if res.HasPrevious {
		nav = append(nav, "previous")
	}
	if res.HasNext {
		nav = append(nav, "next")
	}
	if len(nav) > 0 {
		_, _ = fmt.Fprintf(app.Out, " [%s]", strings.Join(nav, ", "))
	}
	_, _ = fmt.Fprintln(app.Out)
	return nil
}

// ShowCmd prints the details of one book.
type ShowCmd struct {
	ID      int  `arg:"" help:"Gutenberg book id"`
	Refresh bool `short:"r" help:"Fetch the book again even if it is cached"`
}

func (s *ShowCmd) Run(app *App) error {
	var res catalog.BookResult
	if s.Refresh {
		res = app.Catalog.RefreshBook(app.Ctx, s.ID)
	} else {
		res = app.Catalog.Book(app.Ctx, s.ID)
	}
	if res.Err != nil {
		return fmt.Errorf("%s: %w", catalog.Describe(res.Err), res.Err)
	}
	if res.Book == nil {
		return fmt.Errorf("invalid book id %d", s.ID)
	}
	printBook(app.Out, res.Book, app.Wishlist.Contains(res.Book.ID))
	return nil
}

func printBook(out io.Writer, book *gutendex.Book, saved bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			_, _ = fmt.Fprintf(w, "%s:\t%s\n", label, value)
		}
	}

	row("Title", book.Title)
	row("Authors", describePeople(book.Authors))
	row("Translators", describePeople(book.Translators))
	row("Languages", strings.Join(book.Languages, ", "))
	row("Subjects", strings.Join(book.Subjects, "; "))
	row("Bookshelves", strings.Join(book.Bookshelves, "; "))
	row("Downloads", fmt.Sprintf("%d", book.DownloadCount))
	row("Public domain", yesNo(book.IsPublicDomain()))
	row("Cover", book.CoverImage())
	row("Read online", readLink(book))
	row("Wishlist", yesNo(saved))
	_ = w.Flush()

	options := downloadOptions(book)
	if len(options) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out, "\nDownload options:")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, opt := range options {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", opt.label, opt.format, opt.url)
	}
	_ = w.Flush()
}

type downloadOption struct {
	label  string
	format string
	url    string
}

// downloadOptions lists the text, EPUB and PDF renditions of book, sorted by
// label and then MIME type.
func downloadOptions(book *gutendex.Book) []downloadOption {
	var options []downloadOption
	for format, url := range book.Formats {
		label := formatLabel(format)
		if label == "" || url == "" {
			continue
		}
		options = append(options, downloadOption{label: label, format: format, url: url})
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].label != options[j].label {
			return options[i].label < options[j].label
		}
		return options[i].format < options[j].format
	})
	return options
}

func formatLabel(format string) string {
	switch {
	case strings.Contains(format, "epub"):
		return "EPUB"
	case strings.Contains(format, "pdf"):
		return "PDF"
	case strings.Contains(format, "text"):
		return "Text"
	}
	return ""
}

func describePeople(people []gutendex.Person) string {
	parts := make([]string, 0, len(people))
	for _, p := range people {
		if p.Name == "" {
			continue
		}
		switch {
		case p.BirthYear != nil && p.DeathYear != nil:
			parts = append(parts, fmt.Sprintf("%s (%d-%d)", p.Name, *p.BirthYear, *p.DeathYear))
		case p.BirthYear != nil:
			parts = append(parts, fmt.Sprintf("%s (b. %d)", p.Name, *p.BirthYear))
		default:
			parts = append(parts, p.Name)
		}
	}
	return strings.Join(parts, "; ")
}

// readLink prefers an HTML rendition, then plain text.
func readLink(book *gutendex.Book) string {
	var html, text []string
	for mime, url := range book.Formats {
		switch {
		case strings.HasPrefix(mime, "text/html"):
			html = append(html, url)
		case strings.HasPrefix(mime, "text/plain"):
			text = append(text, url)
		}
	}
	for _, urls := range [][]string{html, text} {
		if len(urls) > 0 {
			sort.Strings(urls)
			return urls[0]
		}
	}
	return ""
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return s
}

// GenresCmd lists the genres offered as filters.
type GenresCmd struct{}

func (g *GenresCmd) Run(app *App) error {
	genres, err := app.Catalog.Genres(app.Ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", catalog.Describe(err), err)
	}
	for _, genre := range genres {
		_, _ = fmt.Fprintln(app.Out, genre)
	}
	return nil
}

// BrowseCmd starts the interactive browser.
type BrowseCmd struct{}

func (b *BrowseCmd) Run(app *App) error {
	return browse(app.Ctx, tui.Deps{
		Catalog:        app.Catalog,
		Wishlist:       app.Wishlist,
		Preferences:    app.Prefs,
		SearchDebounce: app.Settings.SearchDebounce,
	})
}
