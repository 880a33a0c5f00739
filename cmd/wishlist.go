package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/lepinkainen/folio/internal/catalog"
	"github.com/lepinkainen/folio/internal/obsidian"
	"github.com/lepinkainen/folio/internal/wishlist"
)

// WishlistCmd groups the wishlist subcommands.
type WishlistCmd struct {
	List   WishlistListCmd   `cmd:"" default:"1" help:"List saved books"`
	Add    WishlistAddCmd    `cmd:"" help:"Save a book to the wishlist"`
	Remove WishlistRemoveCmd `cmd:"" help:"Remove a book from the wishlist"`
	Toggle WishlistToggleCmd `cmd:"" help:"Save a book, or remove it if already saved"`
	Clear  WishlistClearCmd  `cmd:"" help:"Remove every saved book"`
	Export WishlistExportCmd `cmd:"" help:"Write the wishlist as markdown notes"`
}

type WishlistListCmd struct{}

func (l *WishlistListCmd) Run(app *App) error {
	items := app.Wishlist.List()
	if len(items) == 0 {
		_, _ = fmt.Fprintln(app.Out, "Your wishlist is empty.")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tAUTHORS")
	for _, item := range items {
		names := make([]string, 0, len(item.Authors))
		for _, a := range item.Authors {
			names = append(names, a.Name)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", item.ID, oneLine(item.Title, 60), oneLine(strings.Join(names, ", "), 40))
	}
	return w.Flush()
}

type WishlistAddCmd struct {
	ID int `arg:"" help:"Gutenberg book id"`
}

func (a *WishlistAddCmd) Run(app *App) error {
	item, err := lookupItem(app, a.ID)
	if err != nil {
		return err
	}
	app.Wishlist.Add(item)
	_, _ = fmt.Fprintf(app.Out, "Added %q to your wishlist.\n", item.Title)
	return nil
}

type WishlistRemoveCmd struct {
	ID int `arg:"" help:"Gutenberg book id"`
}

func (r *WishlistRemoveCmd) Run(app *App) error {
	if !app.Wishlist.Contains(r.ID) {
		_, _ = fmt.Fprintf(app.Out, "Book %d is not on your wishlist.\n", r.ID)
		return nil
	}
	app.Wishlist.Remove(r.ID)
	_, _ = fmt.Fprintf(app.Out, "Removed book %d from your wishlist.\n", r.ID)
	return nil
}

type WishlistToggleCmd struct {
	ID int `arg:"" help:"Gutenberg book id"`
}

func (t *WishlistToggleCmd) Run(app *App) error {
	if app.Wishlist.Contains(t.ID) {
		app.Wishlist.Remove(t.ID)
		_, _ = fmt.Fprintf(app.Out, "Removed book %d from your wishlist.\n", t.ID)
		return nil
	}
	item, err := lookupItem(app, t.ID)
	if err != nil {
		return err
	}
	app.Wishlist.Toggle(item)
	_, _ = fmt.Fprintf(app.Out, "Added %q to your wishlist.\n", item.Title)
	return nil
}

type WishlistClearCmd struct{}

func (c *WishlistClearCmd) Run(app *App) error {
	app.Wishlist.Clear()
	_, _ = fmt.Fprintln(app.Out, "Wishlist cleared.")
	return nil
}

type WishlistExportCmd struct {
	Dir       string `short:"d" help:"Directory for the notes (defaults to export.dir)"`
	Covers    bool   `help:"Download cover images into the attachments directory"`
	Overwrite bool   `help:"Refresh notes that already exist"`
}

func (e *WishlistExportCmd) Run(app *App) error {
	dir := e.Dir
	if dir == "" {
		dir = app.Settings.ExportDir
	}

	res, err := obsidian.ExportWishlist(app.Ctx, app.Wishlist.List(), obsidian.ExportOptions{
		Dir:       dir,
		Covers:    e.Covers,
		Overwrite: e.Overwrite,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.Out, "Exported %d notes to %s (%d skipped, %d covers downloaded).\n", res.Written, dir, res.Skipped, res.Covers)
	return nil
}

// lookupItem snapshots a book from the catalog for saving.
func lookupItem(app *App, id int) (wishlist.Item, error) {
	res := app.Catalog.Book(app.Ctx, id)
	if res.Err != nil {
		return wishlist.Item{}, fmt.Errorf("%s: %w", catalog.Describe(res.Err), res.Err)
	}
	if res.Book == nil {
		return wishlist.Item{}, fmt.Errorf("invalid book id %d", id)
	}
	return wishlist.ItemFromBook(res.Book), nil
}
