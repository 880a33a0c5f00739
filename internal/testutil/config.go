package testutil

import (
	"testing"

	"github.com/spf13/viper"
)

// ResetConfig resets viper now and again when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)
}

// SetTestConfig resets viper and points the persistent store and export
// directory into the test environment.
func SetTestConfig(t *testing.T, env *TestEnv) {
	t.Helper()

	ResetConfig(t)
	viper.Set("store.dbfile", env.Path("folio.db"))
	viper.Set("export.dir", env.Path("wishlist"))
	viper.Set("api.ratelimit", 0)
	viper.Set("cache.retry_delay", "1ms")
}
