package obsidian

import (
	"regexp"
	"slices"
	"strings"
)

var (
	tagWhitespace = regexp.MustCompile(`\s+`)
	tagHyphens    = regexp.MustCompile(`-{2,}`)
	tagDisallowed = regexp.MustCompile(`[^\p{L}\p{N}_/-]`)
)

// NormalizeTag turns free text into an Obsidian tag. Case is preserved and
// "/" is kept for nested tags. Returns "" when nothing usable remains.
func NormalizeTag(tag string) string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	tag = strings.ReplaceAll(tag, "&", "and")
	tag = tagWhitespace.ReplaceAllString(strings.TrimSpace(tag), "-")
	tag = tagDisallowed.ReplaceAllString(tag, "")
	tag = tagHyphens.ReplaceAllString(tag, "-")
	return strings.Trim(tag, "-/")
}

// MergeTags normalizes and deduplicates both lists into one sorted list.
func MergeTags(lists ...[]string) []string {
	seen := make(map[string]bool)
	merged := []string{}
	for _, list := range lists {
		for _, tag := range list {
			if n := NormalizeTag(tag); n != "" && !seen[n] {
				seen[n] = true
				merged = append(merged, n)
			}
		}
	}
	slices.Sort(merged)
	return merged
}

// TagsFromAny reads a string list from a value decoded from YAML.
func TagsFromAny(val any) []string {
	out := []string{}
	switch v := val.(type) {
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
