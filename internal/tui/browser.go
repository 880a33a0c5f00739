// Package tui is the interactive terminal browser for the book catalog.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/folio/internal/catalog"
	"github.com/lepinkainen/folio/internal/debounce"
	"github.com/lepinkainen/folio/internal/gutendex"
	"github.com/lepinkainen/folio/internal/prefs"
	"github.com/lepinkainen/folio/internal/wishlist"
)

// pollInterval is how often a page served stale is checked for its refreshed value.
const pollInterval = 250 * time.Millisecond

// Catalog is the read side the browser needs.
type Catalog interface {
	Books(ctx context.Context, page int, search, topic string) catalog.BooksResult
	RefreshBooks(ctx context.Context, page int, search, topic string) catalog.BooksResult
	PeekBooks(page int, search, topic string) catalog.BooksResult
	Genres(ctx context.Context) ([]string, error)
}

// Wishlist is the subset of the wishlist store the browser uses.
type Wishlist interface {
	Contains(id int) bool
	Toggle(item wishlist.Item) bool
}

// Preferences is the subset of the preference store the browser uses.
type Preferences interface {
	Get() prefs.Preferences
	SetSearchQuery(query string)
	SetSelectedGenre(genre string)
}

type request struct {
	page   int
	search string
	topic  string
}

type booksLoadedMsg struct {
	req request
	res catalog.BooksResult
}

type pollMsg struct{ req request }

type genresLoadedMsg struct {
	genres []string
	err    error
}

type searchSettledMsg struct{ query string }

type model struct {
	ctx      context.Context
	catalog  Catalog
	wishlist Wishlist
	prefs    Preferences

	debouncer *debounce.Debouncer
	send      func(tea.Msg)

	input textinput.Model
	list  list.Model

	page   int
	search string
	topic  string
	genres []string

	books       []gutendex.Book
	totalCount  int
	totalPages  int
	hasNext     bool
	hasPrevious bool
	loading     bool
	err         error
	status      string
}

func newModel(ctx context.Context, deps Deps) *model {
	saved := deps.Preferences.Get()

	input := textinput.New()
	input.Prompt = "Search: "
	input.Placeholder = "title or author"
	input.CharLimit = 120
	input.SetValue(saved.SearchQuery)

	l := list.New(nil, newDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).PaddingLeft(2)

	delay := deps.SearchDebounce
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}

	return &model{
		ctx:       ctx,
		catalog:   deps.Catalog,
		wishlist:  deps.Wishlist,
		prefs:     deps.Preferences,
		debouncer: debounce.New(delay),
		send:      func(tea.Msg) {},
		input:     input,
		list:      l,
		page:      1,
		search:    saved.SearchQuery,
		topic:     saved.SelectedGenre,
	}
}

func (m *model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.fetchBooks(m.current(), false), m.fetchGenres())
}

func (m *model) current() request {
	return request{page: m.page, search: m.search, topic: m.topic}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(clamp(defaultListWidth, msg.Width-2, 40), clamp(defaultListHeight, msg.Height-8, 5))
		m.input.Width = clamp(60, msg.Width-len(m.input.Prompt)-4, 10)
		return m, nil

	case booksLoadedMsg:
		return m, m.applyBooks(msg.req, msg.res)

	case pollMsg:
		if msg.req != m.current() {
			return m, nil
		}
		req := msg.req
		return m, func() tea.Msg {
			return booksLoadedMsg{req: req, res: m.catalog.PeekBooks(req.page, req.search, req.topic)}
		}

	case genresLoadedMsg:
		if msg.err != nil {
			slog.Debug("Genre list unavailable", "error", msg.err)
			return m, nil
		}
		m.genres = msg.genres
		return m, nil

	case searchSettledMsg:
		return m, m.applySearch(msg.query)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		if m.input.Focused() {
			return m, m.updateInput(msg)
		}
		return m, m.updateList(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyTab:
		m.input.Blur()
		return nil
	case tea.KeyEnter:
		m.input.Blur()
		m.debouncer.Stop()
		return m.applySearch(m.input.Value())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		send := m.send
		m.debouncer.Trigger(func() { send(searchSettledMsg{query: value}) })
	}
	return cmd
}

func (m *model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return m.quit()
	case "/", "tab":
		return m.input.Focus()
	case "n", "right":
		if !m.hasNext {
			return nil
		}
		m.page++
		return m.load(false)
	case "p", "left":
		if m.page <= 1 {
			return nil
		}
		m.page--
		return m.load(false)
	case "g":
		m.topic = m.nextGenre()
		m.prefs.SetSelectedGenre(m.topic)
		m.page = 1
		return m.load(false)
	case "c":
		m.input.SetValue("")
		m.debouncer.Stop()
		m.search, m.topic, m.page = "", "", 1
		m.prefs.SetSearchQuery("")
		m.prefs.SetSelectedGenre("")
		return m.load(false)
	case "r":
		return m.load(true)
	case "enter", "w":
		m.toggleSelected()
		return nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *model) applySearch(query string) tea.Cmd {
	if query == m.search {
		return nil
	}
	m.search = query
	m.page = 1
	m.prefs.SetSearchQuery(query)
	return m.load(false)
}

func (m *model) load(refresh bool) tea.Cmd {
	m.loading = true
	m.err = nil
	m.status = ""
	return m.fetchBooks(m.current(), refresh)
}

func (m *model) fetchBooks(req request, refresh bool) tea.Cmd {
	cat, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		if refresh {
			return booksLoadedMsg{req: req, res: cat.RefreshBooks(ctx, req.page, req.search, req.topic)}
		}
		return booksLoadedMsg{req: req, res: cat.Books(ctx, req.page, req.search, req.topic)}
	}
}

func (m *model) fetchGenres() tea.Cmd {
	cat, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		genres, err := cat.Genres(ctx)
		return genresLoadedMsg{genres: genres, err: err}
	}
}

// applyBooks shows a result if it still matches the current query. Results
// for queries the user has moved away from are dropped.
func (m *model) applyBooks(req request, res catalog.BooksResult) tea.Cmd {
	if req != m.current() {
		return nil
	}

	m.loading = res.IsLoading
	m.err = res.Err
	m.books = res.Books
	m.totalCount = res.TotalCount
	m.totalPages = res.TotalPages
	m.hasNext = res.HasNext
	m.hasPrevious = res.HasPrevious

	cmds := []tea.Cmd{m.list.SetItems(m.items())}
	if res.IsLoading {
		cmds = append(cmds, tea.Tick(pollInterval, func(time.Time) tea.Msg { return pollMsg{req: req} }))
	}
	return tea.Batch(cmds...)
}

func (m *model) items() []list.Item {
	items := make([]list.Item, len(m.books))
	for i, b := range m.books {
		items[i] = bookItem{book: b, saved: m.wishlist.Contains(b.ID)}
	}
	return items
}

func (m *model) toggleSelected() {
	selected, ok := m.list.SelectedItem().(bookItem)
	if !ok {
		return
	}
	book := selected.book
	if m.wishlist.Toggle(wishlist.ItemFromBook(&book)) {
		m.status = fmt.Sprintf("Added %q to wishlist", book.Title)
	} else {
		m.status = fmt.Sprintf("Removed %q from wishlist", book.Title)
	}
	m.list.SetItem(m.list.Index(), bookItem{book: book, saved: m.wishlist.Contains(book.ID)})
}

// nextGenre cycles through "all genres" followed by the known genres.
func (m *model) nextGenre() string {
	options := append([]string{""}, m.genres...)
	for i, g := range options {
		if g == m.topic {
			return options[(i+1)%len(options)]
		}
	}
	return ""
}

func (m *model) quit() tea.Cmd {
	m.debouncer.Stop()
	return tea.Quit
}

func (m *model) View() string {
	header := headerStyle.Render("Project Gutenberg catalog")

	genre := "All genres"
	if m.topic != "" {
		genre = truncate(m.topic, maxGenreLabel)
	}
	filters := lipgloss.JoinVertical(lipgloss.Left,
		m.input.View(),
		labelStyle.Render("Genre: ")+genre,
	)

	var body string
	switch {
	case m.err != nil && len(m.books) == 0:
		body = errorStyle.Render(catalog.Describe(m.err) + " Press r to retry.")
	case m.loading && len(m.books) == 0:
		body = mutedStyle.Render("Loading books...")
	case len(m.books) == 0:
		body = mutedStyle.Render("No books found. Try adjusting your search or press c to clear the filters.")
	default:
		body = m.list.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filters, m.statusLine(), body, helpStyle.Render(m.help()))
}

func (m *model) statusLine() string {
	line := fmt.Sprintf("Page %d", m.page)
	if m.totalPages > 0 {
		line += fmt.Sprintf(" of %d", m.totalPages)
	}
	if m.totalCount > 0 {
		line += fmt.Sprintf(" | %d books", m.totalCount)
	}
	if m.loading && len(m.books) > 0 {
		line += " | refreshing..."
	}
	if m.err != nil && len(m.books) > 0 {
		line += " | " + errorStyle.Render(catalog.Describe(m.err))
	}
	if m.status != "" {
		line += " | " + statusStyle.Render(m.status)
	}
	return mutedStyle.Render(line)
}

func (m *model) help() string {
	if m.input.Focused() {
		return "type to search | enter apply | esc back to list"
	}
	return "/ search | n/p page | g genre | c clear | enter/w wishlist | r refresh | q quit"
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)
