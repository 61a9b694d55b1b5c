package links

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"

	"gopkg.in/yaml.v3"
)

// Links is an insertion-ordered mapping from key to Entry. Order is the
// display order. The zero value is an empty mapping ready to use.
type Links struct {
	keys    []string
	entries map[string]Entry
}

// Len returns the number of entries.
func (l Links) Len() int { return len(l.keys) }

// Keys returns the keys in display order.
func (l Links) Keys() []string {
	keys := make([]string, len(l.keys))
	copy(keys, l.keys)
	return keys
}

// Get looks up an entry by key.
func (l Links) Get(key string) (Entry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// All iterates over the entries in display order.
func (l Links) All() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		for _, k := range l.keys {
			if !yield(k, l.entries[k]) {
				return
			}
		}
	}
}

// Set adds or replaces an entry. A replaced key keeps its original position.
func (l *Links) Set(key string, e Entry) {
	if l.entries == nil {
		l.entries = make(map[string]Entry)
	}
	if _, exists := l.entries[key]; !exists {
		l.keys = append(l.keys, key)
	}
	l.entries[key] = e
}

// Of builds a Links mapping from alternating key/entry pairs, mostly for
// defaults and tests.
func Of(pairs ...KeyEntry) Links {
	var l Links
	for _, p := range pairs {
		l.Set(p.Key, p.Entry)
	}
	return l
}

// KeyEntry pairs a key with its entry.
type KeyEntry struct {
	Key   string
	Entry Entry
}

// flatten demotes sub-page entries to rich links. Used for the pages of a
// sub-page, which cannot nest further.
func (l Links) flatten() Links {
	var out Links
	for k, e := range l.All() {
		if sub, ok := e.SubPage(); ok {
			e = RichLink(Link{
				Title:        sub.Title,
				Description:  sub.Description,
				Icon:         sub.Icon,
				Color:        sub.Color,
				BgColor:      sub.BgColor,
				BgImage:      sub.BgImage,
				Featured:     sub.Featured,
				Hidden:       sub.Hidden,
				Size:         sub.Size,
				carriedPages: true,
				mistyped:     sub.mistyped,
			})
		}
		out.Set(k, e)
	}
	return out
}

// MarshalJSON writes the mapping as a JSON object in display order.
func (l Links) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range l.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(l.entries[k])
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order.
func (l *Links) UnmarshalJSON(data []byte) error {
	decoded, err := decodeLinks(data, true)
	if err != nil {
		return err
	}
	*l = decoded
	return nil
}

// MarshalYAML emits an ordered YAML mapping.
func (l Links) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, e := range l.All() {
		var value yaml.Node
		v, err := e.MarshalYAML()
		if err != nil {
			return nil, err
		}
		if err := value.Encode(v); err != nil {
			return nil, fmt.Errorf("link %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&value,
		)
	}
	return node, nil
}

func decodeLinks(data []byte, allowSubPages bool) (Links, error) {
	var out Links

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return out, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return out, fmt.Errorf("links must be an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out, err
		}
		key, ok := tok.(string)
		if !ok {
			return out, fmt.Errorf("unexpected token %v in links", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out, fmt.Errorf("link %q: %w", key, err)
		}

		entry, err := decodeEntry(raw, allowSubPages)
		if err != nil {
			return out, fmt.Errorf("link %q: %w", key, err)
		}
		out.Set(key, entry)
	}

	if _, err := dec.Token(); err != nil {
		return out, err
	}

	return out, nil
}
