package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultSearchDebounce is the quiet period before typed search text is applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// Deps are the stores the browser reads and writes.
type Deps struct {
	Catalog        Catalog
	Wishlist       Wishlist
	Preferences    Preferences
	SearchDebounce time.Duration
}

var runProgram = func(ctx context.Context, m *model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.send = p.Send
	return p.Run()
}

// Browse runs the interactive browser until the user quits.
func Browse(ctx context.Context, deps Deps) error {
	if deps.Catalog == nil || deps.Wishlist == nil || deps.Preferences == nil {
		return fmt.Errorf("browser dependencies not set")
	}

	m := newModel(ctx, deps)
	if _, err := runProgram(ctx, m); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
