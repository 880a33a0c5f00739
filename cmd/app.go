package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lepinkainen/folio/internal/catalog"
	"github.com/lepinkainen/folio/internal/config"
	"github.com/lepinkainen/folio/internal/gutendex"
	"github.com/lepinkainen/folio/internal/prefs"
	"github.com/lepinkainen/folio/internal/query"
	"github.com/lepinkainen/folio/internal/ratelimit"
	"github.com/lepinkainen/folio/internal/storage"
	"github.com/lepinkainen/folio/internal/wishlist"
)

// App is the composition root handed to every command's Run method.
type App struct {
	Ctx      context.Context
	Settings config.Settings
	Out      io.Writer

	Catalog  *catalog.Catalog
	Wishlist *wishlist.Store
	Prefs    *prefs.Store

	store storage.KeyValue
}

func newApp(ctx context.Context, settings config.Settings, out io.Writer) *App {
	client := gutendex.NewClient(
		gutendex.WithBaseURL(settings.BaseURL),
		gutendex.WithUserAgent(settings.UserAgent),
		gutendex.WithHTTPClient(&http.Client{Timeout: settings.Timeout}),
		gutendex.WithRateLimiter(ratelimit.New("Gutendex", settings.RatePerSecond)),
	)

	store := openStore(settings.StoreDBFile)

	return &App{
		Ctx:      ctx,
		Settings: settings,
		Out:      out,
		Catalog: catalog.New(client,
			catalog.WithListOptions(cacheOptions(settings, settings.ListDedupe)),
			catalog.WithItemOptions(cacheOptions(settings, settings.ItemDedupe)),
			catalog.WithPageSize(settings.PageSize),
		),
		Wishlist: wishlist.New(store),
		Prefs:    prefs.Load(store),
		store:    store,
	}
}

func cacheOptions(settings config.Settings, window time.Duration) query.Options {
	return query.Options{
		DedupeWindow:               window,
		MaxRetries:                 settings.MaxRetries,
		RetryDelay:                 settings.RetryDelay,
		KeepStaleWhileRevalidating: settings.KeepStale,
	}
}

// openStore opens the SQLite store, falling back to memory so the session
// still works (without persistence) when the file cannot be used.
func openStore(path string) storage.KeyValue {
	if path == "" {
		slog.Warn("No store database configured, wishlist and preferences will not be saved")
		return storage.NewMemoryStore()
	}
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		slog.Warn("Store database unavailable, wishlist and preferences will not be saved", "path", path, "error", err)
		return storage.NewMemoryStore()
	}
	return store
}

// Close releases the store.
func (a *App) Close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
