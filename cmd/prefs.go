package cmd

import (
	"errors"
	"fmt"
)

// PrefsCmd groups the search preference subcommands.
type PrefsCmd struct {
	Show  PrefsShowCmd  `cmd:"" default:"1" help:"Print the saved search and genre"`
	Set   PrefsSetCmd   `cmd:"" help:"Change the saved search or genre"`
	Clear PrefsClearCmd `cmd:"" help:"Forget the saved search and genre"`
}

type PrefsShowCmd struct{}

func (s *PrefsShowCmd) Run(app *App) error {
	p := app.Prefs.Get()
	_, _ = fmt.Fprintf(app.Out, "search: %s\ngenre: %s\n", orNone(p.SearchQuery), orNone(p.SelectedGenre))
	return nil
}

type PrefsSetCmd struct {
	Search string `short:"s" help:"Search text to remember"`
	Genre  string `short:"g" help:"Genre to remember"`
}

func (s *PrefsSetCmd) Run(app *App) error {
	if s.Search == "" && s.Genre == "" {
		return errors.New("nothing to set: provide --search and/or --genre")
	}
	if s.Search != "" {
		app.Prefs.SetSearchQuery(s.Search)
	}
	if s.Genre != "" {
		app.Prefs.SetSelectedGenre(s.Genre)
	}
	return (&PrefsShowCmd{}).Run(app)
}

type PrefsClearCmd struct{}

func (c *PrefsClearCmd) Run(app *App) error {
	app.Prefs.Clear()
	_, _ = fmt.Fprintln(app.Out, "Search preferences cleared.")
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
