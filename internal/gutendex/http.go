package gutendex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/lepinkainen/folio/internal/errors"
)

// errNotFound marks a 404 so FetchByID can translate it with the requested id.
var errNotFound = errors.New("not found")

// FetchPage retrieves one page of the book list. Search and topic are sent
// only when non-empty after trimming.
func (c *Client) FetchPage(ctx context.Context, page int, search, topic string) (*Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if s := strings.TrimSpace(search); s != "" {
		params.Set("search", s)
	}
	if t := strings.TrimSpace(topic); t != "" {
		params.Set("topic", t)
	}
	endpoint := fmt.Sprintf("%s/books?%s", c.baseURL, params.Encode())

	var result Page
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		if errors.Is(err, errNotFound) {
			// A list endpoint answering 404 (e.g. page out of range) is a transport failure.
			return nil, apperrors.NewTransportError(endpoint, http.StatusNotFound, nil)
		}
		return nil, err
	}

	slog.Debug("Fetched catalog page", "page", page, "count", result.Count, "results", len(result.Results))
	return &result, nil
}

// FetchByID retrieves a single book. A 404 yields a NotFoundError.
func (c *Client) FetchByID(ctx context.Context, id int) (*Book, error) {
	endpoint := fmt.Sprintf("%s/books/%d", c.baseURL, id)

	var book Book
	if err := c.getJSON(ctx, endpoint, &book); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, apperrors.NewNotFoundError(id)
		}
		return nil, err
	}

	slog.Debug("Fetched book", "id", id, "title", book.Title)
	return &book, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return apperrors.NewTransportError(endpoint, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewTransportError(endpoint, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportError(endpoint, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var cause error
		if msg := strings.TrimSpace(string(body)); msg != "" {
			cause = errors.New(msg)
		}
		return apperrors.NewTransportError(endpoint, resp.StatusCode, cause)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.NewTransportError(endpoint, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
