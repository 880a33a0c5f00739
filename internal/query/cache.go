// Package query provides a keyed, single-flight cache with
// stale-while-revalidate semantics for remote catalog reads.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lepinkainen/folio/internal/cachekey"
)

// FetchFunc loads the value for a key from its source.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// State is a snapshot of a key as seen by a consumer.
type State[T any] struct {
	Value     T
	HasValue  bool
	IsLoading bool
	Err       error
	UpdatedAt time.Time
	// Retries counts failed attempts of the current or most recent fetch.
	Retries int
}

type entry[T any] struct {
	value     T
	hasValue  bool
	updatedAt time.Time
	err       error
	inFlight  bool
	hideStale bool
	retries   int
}

func (e *entry[T]) state() State[T] {
	st := State[T]{
		IsLoading: e.inFlight,
		Err:       e.err,
		Retries:   e.retries,
	}
	if e.hasValue && !(e.inFlight && e.hideStale) {
		st.Value = e.value
		st.HasValue = true
		st.UpdatedAt = e.updatedAt
	}
	return st
}

// Cache holds the latest resolved value per key. At most one fetch per key is
// outstanding at a time; concurrent callers attach to it. Entries live for the
// lifetime of the Cache.
type Cache[T any] struct {
	name    string
	mu      sync.Mutex
	entries map[cachekey.Key]*entry[T]
	group   singleflight.Group
	now     func() time.Time
	sleep   func(time.Duration)
}

// CacheOption configures a Cache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	now   func() time.Time
	sleep func(time.Duration)
}

// WithClock overrides the time source used for dedupe windows.
func WithClock(now func() time.Time) CacheOption {
	return func(c *cacheConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSleep overrides how the cache waits between retry attempts.
func WithSleep(sleep func(time.Duration)) CacheOption {
	return func(c *cacheConfig) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates an empty cache. name is used in log output.
func New[T any](name string, opts ...CacheOption) *Cache[T] {
	cfg := cacheConfig{now: time.Now, sleep: time.Sleep}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[T]{
		name:    name,
		entries: make(map[cachekey.Key]*entry[T]),
		now:     cfg.now,
		sleep:   cfg.sleep,
	}
}

// Get returns the value for key.
//
// A value younger than the dedupe window is returned without a fetch. An older
// value is returned immediately with IsLoading set while a background fetch
// refreshes it, unless stale values are not kept, in which case Get waits like
// it does when nothing is cached yet.
func (c *Cache[T]) Get(ctx context.Context, key cachekey.Key, fetch FetchFunc[T], opts Options) State[T] {
	c.mu.Lock()
	e := c.entryLocked(key)

	if e.hasValue && c.now().Sub(e.updatedAt) < opts.DedupeWindow {
		st := e.state()
		c.mu.Unlock()
		slog.Debug("Cache hit", "cache", c.name, "key", key)
		return st
	}

	if e.hasValue && opts.KeepStaleWhileRevalidating {
		c.startLocked(ctx, key, e, fetch, opts)
		st := e.state()
		c.mu.Unlock()
		slog.Debug("Serving stale value while revalidating", "cache", c.name, "key", key)
		return st
	}

	ch := c.startLocked(ctx, key, e, fetch, opts)
	c.mu.Unlock()
	slog.Debug("Cache miss, waiting for fetch", "cache", c.name, "key", key)
	return c.wait(ctx, key, ch)
}

// Revalidate fetches key again regardless of the dedupe window and waits for
// the outcome. If a fetch is already running it is joined instead.
func (c *Cache[T]) Revalidate(ctx context.Context, key cachekey.Key, fetch FetchFunc[T], opts Options) State[T] {
	c.mu.Lock()
	e := c.entryLocked(key)
	ch := c.startLocked(ctx, key, e, fetch, opts)
	c.mu.Unlock()
	return c.wait(ctx, key, ch)
}

// Peek returns the current state of key without triggering a fetch.
func (c *Cache[T]) Peek(key cachekey.Key) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State[T]{}
	}
	return e.state()
}

func (c *Cache[T]) entryLocked(key cachekey.Key) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	return e
}

// startLocked joins the in-flight fetch for key or starts a new one.
// c.mu must be held. The flight is forgotten under c.mu when it finishes, so
// inFlight and the singleflight group never disagree about an active call.
func (c *Cache[T]) startLocked(ctx context.Context, key cachekey.Key, e *entry[T], fetch FetchFunc[T], opts Options) <-chan singleflight.Result {
	if !e.inFlight {
		// A new attempt supersedes the previous outcome.
		e.inFlight = true
		e.hideStale = !opts.KeepStaleWhileRevalidating
		e.retries = 0
		e.err = nil
	}
	// Fetches run to completion even if the caller that started them goes away.
	fetchCtx := context.WithoutCancel(ctx)
	return c.group.DoChan(string(key), func() (any, error) {
		return c.run(fetchCtx, key, e, fetch, opts), nil
	})
}

func (c *Cache[T]) run(ctx context.Context, key cachekey.Key, e *entry[T], fetch FetchFunc[T], opts Options) State[T] {
	var lastErr error
	for attempt := 0; ; attempt++ {
		value, err := fetch(ctx)
		if err == nil {
			return c.finish(key, e, func() {
				e.value = value
				e.hasValue = true
				e.updatedAt = c.now()
				e.err = nil
			})
		}

		lastErr = err
		c.mu.Lock()
		e.retries++
		c.mu.Unlock()

		if attempt >= opts.MaxRetries || !opts.shouldRetry(err) {
			break
		}
		slog.Debug("Fetch failed, retrying", "cache", c.name, "key", key, "attempt", attempt+1, "delay", opts.RetryDelay, "error", err)
		if opts.RetryDelay > 0 {
			c.sleep(opts.RetryDelay)
		}
	}

	slog.Warn("Fetch failed", "cache", c.name, "key", key, "error", lastErr)
	return c.finish(key, e, func() {
		e.err = lastErr
	})
}

func (c *Cache[T]) finish(key cachekey.Key, e *entry[T], apply func()) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply()
	e.inFlight = false
	e.hideStale = false
	c.group.Forget(string(key))
	return e.state()
}

func (c *Cache[T]) wait(ctx context.Context, key cachekey.Key, ch <-chan singleflight.Result) State[T] {
	select {
	case res := <-ch:
		return res.Val.(State[T])
	case <-ctx.Done():
		st := c.Peek(key)
		st.Err = ctx.Err()
		return st
	}
}
