package query

import (
	"time"

	apperrors "github.com/lepinkainen/folio/internal/errors"
)

const (
	// DefaultListDedupeWindow applies to list queries.
	DefaultListDedupeWindow = 5 * time.Second
	// DefaultItemDedupeWindow applies to single-book queries, which change far less often.
	DefaultItemDedupeWindow = 30 * time.Second
	// DefaultMaxRetries is the number of retries after the first failed attempt.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed pause between attempts.
	DefaultRetryDelay = time.Second
)

// Options controls how a key is fetched and how long a result is reused.
type Options struct {
	// DedupeWindow is how long after a successful fetch the cached value is
	// served without contacting the network.
	DedupeWindow time.Duration
	// MaxRetries is how many times a failed fetch is retried before the error is surfaced.
	MaxRetries int
	// RetryDelay is the uniform pause between attempts.
	RetryDelay time.Duration
	// KeepStaleWhileRevalidating keeps the previous value visible while a new fetch runs.
	KeepStaleWhileRevalidating bool
	// ShouldRetry decides whether an error is worth another attempt.
	// nil retries everything except not-found errors.
	ShouldRetry func(error) bool
}

// ListOptions returns the defaults for paginated list queries.
func ListOptions() Options {
	return Options{
		DedupeWindow:               DefaultListDedupeWindow,
		MaxRetries:                 DefaultMaxRetries,
		RetryDelay:                 DefaultRetryDelay,
		KeepStaleWhileRevalidating: true,
	}
}

// ItemOptions returns the defaults for single-book queries.
func ItemOptions() Options {
	opts := ListOptions()
	opts.DedupeWindow = DefaultItemDedupeWindow
	return opts
}

func (o Options) shouldRetry(err error) bool {
	if o.ShouldRetry != nil {
		return o.ShouldRetry(err)
	}
	return !apperrors.IsNotFoundError(err)
}
