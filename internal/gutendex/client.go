// Package gutendex provides a read-only client for the Gutendex book catalog API.
package gutendex

import (
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/folio/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Gutendex instance.
	DefaultBaseURL       = "https://gutendex.com"
	defaultTimeout       = 10 * time.Second
	defaultRatePerSecond = 4
	defaultUserAgent     = "folio/1.0"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues catalog requests. It never retries; reliability is the
// caller's concern.
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
}

// NewClient creates a new Gutendex API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:     DefaultBaseURL,
		userAgent:   defaultUserAgent,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("Gutendex", defaultRatePerSecond),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRateLimiter sets the limiter consulted before every request. nil disables limiting.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		client.rateLimiter = limiter
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}
