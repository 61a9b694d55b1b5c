// Package theme holds the colour palettes a profile can select and turns a
// palette plus an optional accent override into page CSS.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/linkpage/internal/validation"
)

// Scheme names a palette.
type Scheme string

const (
	SchemeDefault Scheme = "default"
	SchemeBlue    Scheme = "blue"
	SchemePurple  Scheme = "purple"
	SchemeGreen   Scheme = "green"
	SchemeCustom  Scheme = "custom"
)

// Background selects how the page body is painted.
type Background string

const (
	BackgroundSolid    Background = "solid"
	BackgroundGradient Background = "gradient"
	BackgroundImage    Background = "image"
	BackgroundPattern  Background = "pattern"
)

// Valid reports whether b is a known background type.
func (b Background) Valid() bool {
	switch b {
	case BackgroundSolid, BackgroundGradient, BackgroundImage, BackgroundPattern:
		return true
	}
	return false
}

// Valid reports whether s is a known scheme, custom included.
func (s Scheme) Valid() bool {
	if s == SchemeCustom {
		return true
	}
	_, ok := palettes[s]
	return ok
}

// Palette is a set of CSS custom property values.
type Palette struct {
	Name               string
	Primary            string
	PrimaryForeground  string
	Background         string
	Foreground         string
	Muted              string
	MutedForeground    string
	Accent             string
	AccentForeground   string
	OpenGraphHighlight string
}

var palettes = map[Scheme]Palette{
	SchemeDefault: {
		Name:               "Default",
		Primary:            "oklch(0.205 0 0)",
		PrimaryForeground:  "oklch(0.985 0 0)",
		Background:         "oklch(1 0 0)",
		Foreground:         "oklch(0.145 0 0)",
		Muted:              "oklch(0.97 0 0)",
		MutedForeground:    "oklch(0.556 0 0)",
		Accent:             "oklch(0.97 0 0)",
		AccentForeground:   "oklch(0.205 0 0)",
		OpenGraphHighlight: "#6366f1",
	},
	SchemeBlue: {
		Name:               "Ocean Blue",
		Primary:            "oklch(0.6 0.25 240)",
		PrimaryForeground:  "oklch(0.985 0 0)",
		Background:         "oklch(0.98 0.01 240)",
		Foreground:         "oklch(0.15 0.02 240)",
		Muted:              "oklch(0.95 0.02 240)",
		MutedForeground:    "oklch(0.5 0.05 240)",
		Accent:             "oklch(0.92 0.03 240)",
		AccentForeground:   "oklch(0.2 0.02 240)",
		OpenGraphHighlight: "#3b82f6",
	},
	SchemePurple: {
		Name:               "Royal Purple",
		Primary:            "oklch(0.55 0.25 280)",
		PrimaryForeground:  "oklch(0.985 0 0)",
		Background:         "oklch(0.98 0.01 280)",
		Foreground:         "oklch(0.15 0.02 280)",
		Muted:              "oklch(0.95 0.02 280)",
		MutedForeground:    "oklch(0.5 0.05 280)",
		Accent:             "oklch(0.92 0.03 280)",
		AccentForeground:   "oklch(0.2 0.02 280)",
		OpenGraphHighlight: "#8b5cf6",
	},
	SchemeGreen: {
		Name:               "Forest Green",
		Primary:            "oklch(0.5 0.2 140)",
		PrimaryForeground:  "oklch(0.985 0 0)",
		Background:         "oklch(0.98 0.01 140)",
		Foreground:         "oklch(0.15 0.02 140)",
		Muted:              "oklch(0.95 0.02 140)",
		MutedForeground:    "oklch(0.5 0.05 140)",
		Accent:             "oklch(0.92 0.03 140)",
		AccentForeground:   "oklch(0.2 0.02 140)",
		OpenGraphHighlight: "#10b981",
	},
}

// Lookup returns the palette for s. Custom and unknown schemes report false.
func Lookup(s Scheme) (Palette, bool) {
	p, ok := palettes[s]
	return p, ok
}

// Option pairs a scheme with its palette for pickers.
type Option struct {
	Scheme  Scheme
	Palette Palette
}

// Options lists the built-in palettes, default first then by name.
func Options() []Option {
	opts := make([]Option, 0, len(palettes))
	for s, p := range palettes {
		opts = append(opts, Option{Scheme: s, Palette: p})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Scheme == SchemeDefault || opts[j].Scheme == SchemeDefault {
			return opts[i].Scheme == SchemeDefault
		}
		return opts[i].Scheme < opts[j].Scheme
	})
	return opts
}

// CSS renders the :root custom properties for scheme. A valid accent
// replaces --primary. Custom and unknown schemes fall back to the default
// palette so the page always has its variables.
func CSS(scheme Scheme, accent string) string {
	p, ok := palettes[scheme]
	if !ok {
		p = palettes[SchemeDefault]
	}

	primary := p.Primary
	if accent != "" && validation.ValidateCSSColor(accent) == nil {
		primary = accent
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	writeVar(&b, "primary", primary)
	writeVar(&b, "primary-foreground", p.PrimaryForeground)
	writeVar(&b, "background", p.Background)
	writeVar(&b, "foreground", p.Foreground)
	writeVar(&b, "muted", p.Muted)
	writeVar(&b, "muted-foreground", p.MutedForeground)
	writeVar(&b, "accent", p.Accent)
	writeVar(&b, "accent-foreground", p.AccentForeground)
	b.WriteString("}\n")
	return b.String()
}

func writeVar(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  --%s: %s;\n", name, value)
}

// BodyBackground returns the CSS background declaration value for the page
// body. Pattern and an image without a source fall back to the solid colour.
func BodyBackground(bg Background, custom string) string {
	switch bg {
	case BackgroundGradient:
		return "linear-gradient(135deg, var(--background) 0%, var(--muted) 100%)"
	case BackgroundImage:
		if custom != "" && !strings.ContainsAny(custom, "();{}<>\"'\\") {
			return fmt.Sprintf("url(%s) center/cover fixed", custom)
		}
	}
	return "var(--background)"
}

// DefaultOpenGraphAccent is used when nothing else applies.
const DefaultOpenGraphAccent = "#6366f1"

// OpenGraphAccent picks the social card highlight: the explicit accent if it
// is a valid colour, else the scheme's highlight, else the default.
func OpenGraphAccent(scheme Scheme, accent string) string {
	if accent != "" && validation.ValidateCSSColor(accent) == nil {
		return accent
	}
	if p, ok := palettes[scheme]; ok {
		return p.OpenGraphHighlight
	}
	return DefaultOpenGraphAccent
}
