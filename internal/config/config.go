package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Settings is a snapshot of the resolved configuration. It is built once by
// the command layer and handed to the components that need it.
type Settings struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	RatePerSecond int

	ListDedupe time.Duration
	ItemDedupe time.Duration
	MaxRetries int
	RetryDelay time.Duration
	KeepStale  bool

	PageSize       int
	StoreDBFile    string
	SearchDebounce time.Duration
	ExportDir      string
}

// SetDefaults registers default values for every key.
func SetDefaults() {
	viper.SetDefault("api.baseurl", "https://gutendex.com")
	viper.SetDefault("api.useragent", "folio/1.0")
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("api.ratelimit", 4)

	viper.SetDefault("cache.list_dedupe", "5s")
	viper.SetDefault("cache.item_dedupe", "30s")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.retry_delay", "1s")
	viper.SetDefault("cache.keep_stale", true)

	// Gutendex serves 32 books per page; the API does not report it.
	viper.SetDefault("catalog.page_size", 32)
	viper.SetDefault("store.dbfile", "./folio.db")
	viper.SetDefault("search.debounce", "300ms")
	viper.SetDefault("export.dir", "./wishlist")
}

// Load resolves the current viper state into Settings.
func Load() Settings {
	SetDefaults()

	return Settings{
		BaseURL:       viper.GetString("api.baseurl"),
		UserAgent:     viper.GetString("api.useragent"),
		Timeout:       duration("api.timeout", 10*time.Second),
		RatePerSecond: viper.GetInt("api.ratelimit"),

		ListDedupe: duration("cache.list_dedupe", 5*time.Second),
		ItemDedupe: duration("cache.item_dedupe", 30*time.Second),
		MaxRetries: max(viper.GetInt("cache.max_retries"), 0),
		RetryDelay: duration("cache.retry_delay", time.Second),
		KeepStale:  viper.GetBool("cache.keep_stale"),

		PageSize:       positive(viper.GetInt("catalog.page_size"), 32),
		StoreDBFile:    viper.GetString("store.dbfile"),
		SearchDebounce: duration("search.debounce", 300*time.Millisecond),
		ExportDir:      viper.GetString("export.dir"),
	}
}

func duration(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration in config, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
