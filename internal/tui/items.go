package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/folio/internal/gutendex"
)

const (
	defaultListWidth  = 80
	defaultListHeight = 20
	maxGenreLabel     = 40
)

type bookItem struct {
	book  gutendex.Book
	saved bool
}

func (i bookItem) Title() string {
	if i.saved {
		return "★ " + i.book.Title
	}
	return i.book.Title
}

func (i bookItem) FilterValue() string { return i.book.Title }

func (i bookItem) Description() string { return i.book.AuthorNames() }

type itemStyles struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	title    lipgloss.Style
	saved    lipgloss.Style
	authors  lipgloss.Style
	genres   lipgloss.Style
}

func newItemStyles() itemStyles {
	base := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("62")).
		PaddingLeft(1)

	return itemStyles{
		normal: base,
		selected: base.Copy().
			BorderForeground(lipgloss.Color("214")).
			Background(lipgloss.Color("237")),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		saved: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),
		authors: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		genres: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
	}
}

type bookDelegate struct {
	styles itemStyles
}

func newDelegate() bookDelegate {
	return bookDelegate{styles: newItemStyles()}
}

func (d bookDelegate) Height() int                         { return 3 }
func (d bookDelegate) Spacing() int                        { return 1 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	bi, ok := item.(bookItem)
	if !ok {
		return
	}
	width := m.Width() - 4

	titleStyle := d.styles.title
	if bi.saved {
		titleStyle = d.styles.saved
	}
	genres := strings.Join(bi.book.Genres(), " · ")
	if genres == "" {
		genres = "No subjects"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(truncate(bi.Title(), width)),
		d.styles.authors.Render(truncate(bi.book.AuthorNames(), width)),
		d.styles.genres.Render(truncate(genres, width)),
	)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func clamp(defaultValue, available, minimum int) int {
	v := defaultValue
	if available > 0 && available < defaultValue {
		v = available
	}
	return max(v, minimum)
}
