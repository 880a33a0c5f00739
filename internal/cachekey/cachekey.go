// Package cachekey derives stable cache identities for catalog queries.
package cachekey

import (
	"net/url"
	"strconv"
	"strings"
)

// Key identifies a cached query result.
type Key string

const (
	listPrefix = "books?"
	itemPrefix = "book/"
)

// ForList returns the key for a page of the book list. Search and topic are
// trimmed; an empty result is treated as absent.
func ForList(page int, search, topic string) Key {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if s := strings.TrimSpace(search); s != "" {
		params.Set("search", s)
	}
	if t := strings.TrimSpace(topic); t != "" {
		params.Set("topic", t)
	}
	// Encode sorts by parameter name, so the key does not depend on insertion order.
	return Key(listPrefix + params.Encode())
}

// ForItem returns the key for a single book.
func ForItem(id int) Key {
	return Key(itemPrefix + strconv.Itoa(id))
}

// ListParams are the normalized parameters recovered from a list key.
type ListParams struct {
	Page   int
	Search string
	Topic  string
}

// ParseList recovers the list parameters encoded by ForList.
func ParseList(k Key) (ListParams, bool) {
	raw, ok := strings.CutPrefix(string(k), listPrefix)
	if !ok {
		return ListParams{}, false
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return ListParams{}, false
	}
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil {
		return ListParams{}, false
	}
	return ListParams{
		Page:   page,
		Search: values.Get("search"),
		Topic:  values.Get("topic"),
	}, true
}

// ParseItem recovers the book id encoded by ForItem.
func ParseItem(k Key) (int, bool) {
	raw, ok := strings.CutPrefix(string(k), itemPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (k Key) String() string {
	return string(k)
}
