// Package links models the entries of a profile's link list.
//
// An entry is one of three shapes, decided once while decoding JSON:
//
//	"github": "https://github.com/me"                       Simple
//	"blog":   {"title": "Blog", "url": "https://..."}       Rich link
//	"about":  {"title": "About", "pages": {...}}            Sub-page
//
// Sub-pages nest exactly one level: inside "pages" an object is always a
// rich link, even when it carries its own "pages" key.
package links

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the three entry shapes.
type Kind int

const (
	KindSimple Kind = iota
	KindLink
	KindSubPage
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindLink:
		return "link"
	case KindSubPage:
		return "subpage"
	default:
		return "unknown"
	}
}

// Size controls how much vertical room a card takes.
type Size string

const (
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra-large"
)

// Valid reports whether s is one of the known sizes.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

// Link is the rich link object form.
type Link struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	BgColor     string `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	BgImage     string `json:"bgImage,omitempty" yaml:"bgImage,omitempty"`
	Featured    bool   `json:"featured,omitempty" yaml:"featured,omitempty"`
	Hidden      bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Size        Size   `json:"size,omitempty" yaml:"size,omitempty"`

	// carriedPages is set when a nested object declared "pages" and was
	// demoted to a link. Only the linter looks at it.
	carriedPages bool
	mistyped     []string
}

// SubPage is a titled group of links rendered on its own route.
type SubPage struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	BgColor     string `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	BgImage     string `json:"bgImage,omitempty" yaml:"bgImage,omitempty"`
	Featured    bool   `json:"featured,omitempty" yaml:"featured,omitempty"`
	Hidden      bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Size        Size   `json:"size,omitempty" yaml:"size,omitempty"`
	Pages       Links  `json:"pages" yaml:"pages"`

	mistyped []string
}

// Entry is a single value of a Links mapping. The zero Entry is a Simple
// entry with an empty URL.
type Entry struct {
	kind Kind
	url  string
	link *Link
	sub  *SubPage
}

// Simple builds a bare-URL entry.
func Simple(url string) Entry {
	return Entry{kind: KindSimple, url: url}
}

// RichLink builds a rich link entry.
func RichLink(l Link) Entry {
	return Entry{kind: KindLink, link: &l}
}

// Page builds a sub-page entry. Nested sub-pages inside p.Pages are
// demoted to rich links.
func Page(p SubPage) Entry {
	p.Pages = p.Pages.flatten()
	return Entry{kind: KindSubPage, sub: &p}
}

// Kind returns the entry shape.
func (e Entry) Kind() Kind { return e.kind }

// URL returns the target of a Simple or rich link entry. Sub-pages have none.
func (e Entry) URL() string {
	switch e.kind {
	case KindSimple:
		return e.url
	case KindLink:
		return e.link.URL
	default:
		return ""
	}
}

// Link returns the rich link payload.
func (e Entry) Link() (Link, bool) {
	if e.kind != KindLink || e.link == nil {
		return Link{}, false
	}
	return *e.link, true
}

// SubPage returns the sub-page payload.
func (e Entry) SubPage() (SubPage, bool) {
	if e.kind != KindSubPage || e.sub == nil {
		return SubPage{}, false
	}
	return *e.sub, true
}

// Hidden reports whether the entry is soft-deleted from rendering.
func (e Entry) Hidden() bool {
	switch e.kind {
	case KindLink:
		return e.link.Hidden
	case KindSubPage:
		return e.sub.Hidden
	default:
		return false
	}
}

// MarshalJSON writes the entry back in the shape it was read.
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case KindLink:
		return json.Marshal(e.link)
	case KindSubPage:
		return json.Marshal(e.sub)
	default:
		return json.Marshal(e.url)
	}
}

// MarshalYAML mirrors MarshalJSON for yaml.v3 encoders.
func (e Entry) MarshalYAML() (interface{}, error) {
	switch e.kind {
	case KindLink:
		return e.link, nil
	case KindSubPage:
		return e.sub, nil
	default:
		return e.url, nil
	}
}

// UnmarshalJSON decodes a top-level entry, where sub-pages are allowed.
func (e *Entry) UnmarshalJSON(data []byte) error {
	decoded, err := decodeEntry(data, true)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

func decodeEntry(data []byte, allowSubPages bool) (Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Entry{}, fmt.Errorf("empty link entry")
	}

	switch data[0] {
	case '"':
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return Entry{}, err
		}
		return Simple(url), nil
	case '{':
	default:
		return Entry{}, fmt.Errorf("link entry must be a string or an object, got %s", describeJSON(data))
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return Entry{}, err
	}
	pages, hasPages := shape["pages"]
	hasPages = hasPages && isJSONObject(pages)

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return Entry{}, err
	}
	delete(fields, "pages")

	if !hasPages || !allowSubPages {
		var l Link
		l.mistyped = DecodeFields(fields, &l)
		l.carriedPages = hasPages
		return RichLink(l), nil
	}

	nested, err := decodeLinks(pages, false)
	if err != nil {
		return Entry{}, fmt.Errorf("pages: %w", err)
	}

	var sub SubPage
	sub.mistyped = DecodeFields(fields, &sub)
	sub.Pages = nested
	return Entry{kind: KindSubPage, sub: &sub}, nil
}

func isJSONObject(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func describeJSON(data []byte) string {
	switch data[0] {
	case '[':
		return "array"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}
