package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/folio/internal/config"
)

// CLI represents the complete command structure for the folio application
type CLI struct {
	// Global flags
	BaseURL string `name:"base-url" help:"Gutendex API base URL (default from api.baseurl)"`
	StoreDB string `name:"store-db" help:"Path to the SQLite file holding the wishlist and search preferences (default from store.dbfile)"`
	Debug   bool   `help:"Enable debug logging"`

	Books    BooksCmd    `cmd:"" help:"List a page of books"`
	Show     ShowCmd     `cmd:"" help:"Show details for a single book"`
	Genres   GenresCmd   `cmd:"" help:"List genres found on the first catalog page"`
	Browse   BrowseCmd   `cmd:"" default:"1" help:"Browse the catalog interactively"`
	Wishlist WishlistCmd `cmd:"" help:"Manage the wishlist"`
	Prefs    PrefsCmd    `cmd:"" help:"Show or change the saved search preferences"`
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("folio"),
		kong.Description("Browse the Project Gutenberg catalog and keep a wishlist."),
		kong.UsageOnError(),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(false)
	if err := initConfig(); err != nil {
		slog.Error("Fatal error in config file", "error", err)
		os.Exit(1)
	}

	var cli CLI
	kctx := kong.Parse(&cli, kongOptions()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, kctx, &cli); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run applies the global flags, builds the App and executes the selected command.
func run(ctx context.Context, kctx *kong.Context, cli *CLI) error {
	if cli.Debug {
		initLogging(true)
	}
	updateGlobalConfig(cli)

	app := newApp(ctx, config.Load(), os.Stdout)
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("Failed to close store", "error", err)
		}
	}()

	return kctx.Run(app)
}

// initConfig registers defaults and reads an optional config.yaml from the
// working directory or ~/.config/folio. FOLIO_* environment variables
// override file values, e.g. FOLIO_API_BASEURL.
func initConfig() error {
	config.SetDefaults()

	viper.SetEnvPrefix("folio")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.config/folio")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("No config file found, using defaults")
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	slog.Debug("Loaded config file", "path", viper.ConfigFileUsed())
	return nil
}

func updateGlobalConfig(cli *CLI) {
	if cli.BaseURL != "" {
		viper.Set("api.baseurl", cli.BaseURL)
	}
	if cli.StoreDB != "" {
		viper.Set("store.dbfile", cli.StoreDB)
	}
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	// Logs go to stderr so command output stays machine readable.
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
