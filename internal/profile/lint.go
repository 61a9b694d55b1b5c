package profile

import (
	"fmt"

	"github.com/conneroisu/linkpage/internal/links"
	"github.com/conneroisu/linkpage/internal/validation"
)

// Issue is a leniency hazard found in a profile. Issues never prevent a
// profile from loading.
type Issue struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// String returns the string representation of the Issue
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// Lint reports fields that will load but probably not render as intended.
func Lint(p *Profile) []Issue {
	if p == nil {
		return nil
	}

	var issues []Issue
	add := func(field, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for _, key := range p.unknownKeys {
		add(key, "unknown top-level key is ignored")
	}
	issues = append(issues, p.mistyped...)

	if !p.Theme.ColorScheme.Valid() {
		add("theme.colorScheme", "unknown colour scheme %q, the default palette is used", p.Theme.ColorScheme)
	}
	if !p.Theme.BackgroundType.Valid() {
		add("theme.backgroundType", "unknown background type %q", p.Theme.BackgroundType)
	}
	if p.Theme.AccentColor != "" {
		if err := validation.ValidateCSSColor(p.Theme.AccentColor); err != nil {
			add("theme.accentColor", "%v, the palette colour is used", err)
		}
	}
	if p.Avatar != "" {
		if err := validation.ValidateImageName(p.Avatar); err != nil {
			add("avatar", "%v", err)
		}
	}

	for key, entry := range p.Links.All() {
		issues = append(issues, lintEntry("links."+key, entry, true)...)
	}

	return issues
}

func lintEntry(field string, e links.Entry, topLevel bool) []Issue {
	var issues []Issue
	add := func(suffix, format string, args ...interface{}) {
		issues = append(issues, Issue{Field: field + suffix, Message: fmt.Sprintf(format, args...)})
	}

	switch e.Kind() {
	case links.KindSimple:
		if err := validation.ValidateLinkURL(e.URL()); err != nil {
			add("", "%v", err)
		}
	case links.KindLink:
		l, _ := e.Link()
		if l.Title == "" {
			add(".title", "rich link has no title")
		}
		if l.URL == "" {
			add(".url", "rich link has no url and will not be rendered")
		} else if err := validation.ValidateLinkURL(l.URL); err != nil {
			add(".url", "%v", err)
		}
		if l.Size != "" && !l.Size.Valid() {
			add(".size", "unknown size %q", l.Size)
		}
		if l.CarriedPages() {
			add(".pages", "sub-pages cannot be nested, entry is treated as a link")
		}
		for _, msg := range l.MistypedFields() {
			add("", "%s, the field is left empty", msg)
		}
	case links.KindSubPage:
		sub, _ := e.SubPage()
		if sub.Title == "" {
			add(".title", "sub-page has no title")
		}
		if sub.Size != "" && !sub.Size.Valid() {
			add(".size", "unknown size %q", sub.Size)
		}
		for _, msg := range sub.MistypedFields() {
			add("", "%s, the field is left empty", msg)
		}
		if topLevel {
			for key, nested := range sub.Pages.All() {
				issues = append(issues, lintEntry(field+".pages."+key, nested, false)...)
			}
		}
	}

	return issues
}
