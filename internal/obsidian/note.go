// Package obsidian renders wishlist books as Obsidian-style markdown notes.
package obsidian

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Note is a markdown document with YAML frontmatter.
type Note struct {
	Frontmatter *Frontmatter
	Body        string
}

// Frontmatter keeps its keys sorted so notes are written deterministically.
type Frontmatter struct {
	fields map[string]any
}

// NewFrontmatter creates an empty Frontmatter.
func NewFrontmatter() *Frontmatter {
	return &Frontmatter{fields: make(map[string]any)}
}

// ParseMarkdown splits content into frontmatter and body. Content without a
// complete frontmatter block is all body.
func ParseMarkdown(content []byte) (*Note, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	note := &Note{Frontmatter: NewFrontmatter(), Body: text}

	rest, ok := strings.CutPrefix(text, delimiter+"\n")
	if !ok {
		return note, nil
	}
	header, body, ok := strings.Cut(rest, "\n"+delimiter+"\n")
	if !ok {
		return note, nil
	}

	var data map[string]any
	if err := yaml.Unmarshal([]byte(header), &data); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	for k, v := range data {
		note.Frontmatter.Set(k, v)
	}
	note.Body = strings.TrimPrefix(body, "\n")
	return note, nil
}

// Build renders the note. Empty frontmatter is omitted.
func (n *Note) Build() ([]byte, error) {
	var buf bytes.Buffer
	if n.Frontmatter != nil && n.Frontmatter.Len() > 0 {
		header, err := yaml.Marshal(n.Frontmatter)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
		}
		buf.WriteString(delimiter + "\n")
		buf.Write(header)
		buf.WriteString(delimiter + "\n")
	}
	buf.WriteString(n.Body)
	return buf.Bytes(), nil
}

func (f *Frontmatter) Get(key string) (any, bool) {
	v, ok := f.fields[key]
	return v, ok
}

func (f *Frontmatter) Set(key string, value any) {
	f.fields[key] = value
}

func (f *Frontmatter) Delete(key string) {
	delete(f.fields, key)
}

func (f *Frontmatter) Len() int {
	return len(f.fields)
}

// GetString returns the value for key if it is a string.
func (f *Frontmatter) GetString(key string) string {
	s, _ := f.fields[key].(string)
	return s
}

// GetInt returns the value for key if it is an int.
func (f *Frontmatter) GetInt(key string) int {
	i, _ := f.fields[key].(int)
	return i
}

// GetStringArray returns the value for key as strings, whether it was set
// from Go or decoded from YAML.
func (f *Frontmatter) GetStringArray(key string) []string {
	return TagsFromAny(f.fields[key])
}

// Keys returns the keys in output order.
func (f *Frontmatter) Keys() []string {
	keys := make([]string, 0, len(f.fields))
	for k := range f.fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MarshalYAML writes keys in sorted order with tags as a flow sequence.
func (f *Frontmatter) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range f.Keys() {
		value := &yaml.Node{}
		if key == "tags" {
			value.Kind = yaml.SequenceNode
			value.Style = yaml.FlowStyle
			for _, tag := range TagsFromAny(f.fields[key]) {
				value.Content = append(value.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: tag})
			}
		} else if err := value.Encode(f.fields[key]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	return node, nil
}
