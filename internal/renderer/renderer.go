// Package renderer composes the profile pages and the social card.
//
// Pages are html/template files embedded in the binary and exposed as templ
// components through templ.FromGoHTML, so callers can render them into a
// response or into the render cache the same way. The renderer never reads
// the profile itself; it is handed a merged *profile.Profile per request.
package renderer

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"github.com/conneroisu/linkpage/internal/profile"
	"github.com/conneroisu/linkpage/internal/validation"
)

//go:embed templates/*.html templates/*.svg
var templateFiles embed.FS

// Content types of rendered output.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeSVG  = "image/svg+xml"
)

// Template names.
const (
	templateHome     = "home.html"
	templateSubPage  = "subpage.html"
	templateNotFound = "notfound.html"
	templateError    = "error.html"
	templateCard     = "opengraph.svg"
)

// Options configures a Renderer.
type Options struct {
	// Development enables the settings panel, the live reload script and
	// the sponsor link in the footer.
	Development bool
}

// Renderer builds page components from a profile.
type Renderer struct {
	templates   *template.Template
	development bool
}

// New parses the embedded templates.
func New(opts Options) (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFiles, "templates/*.html", "templates/*.svg")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	for _, name := range []string{templateHome, templateSubPage, templateNotFound, templateError, templateCard} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s not found", name)
		}
	}

	return &Renderer{
		templates:   tmpl,
		development: opts.Development,
	}, nil
}

// Development reports whether development extras are rendered.
func (r *Renderer) Development() bool {
	return r.development
}

// Home renders the main profile page.
func (r *Renderer) Home(p *profile.Profile) templ.Component {
	data := r.page(p)
	data.Heading = p.Name
	data.Subheading = p.Biography
	data.Cards = buildCards(p.Links)

	return r.component(templateHome, data)
}

// SubPage renders the page for the sub-page stored under slug. It reports
// false when slug is not a sub-page. Hidden sub-pages still render.
func (r *Renderer) SubPage(p *profile.Profile, slug string) (templ.Component, bool) {
	sub, ok := p.SubPage(slug)
	if !ok {
		return nil, false
	}

	data := r.page(p)
	data.IsSubPage = true
	data.Heading = sub.Title
	data.Subheading = sub.Description
	data.Cards = buildCards(sub.Pages)

	return r.component(templateSubPage, data), true
}

// NotFound renders the 404 page.
func (r *Renderer) NotFound() templ.Component {
	return r.component(templateNotFound, statusPage{Title: "Page Not Found"})
}

// Error renders the generic failure page.
func (r *Renderer) Error() templ.Component {
	return r.component(templateError, statusPage{Title: "Something went wrong"})
}

// OpenGraphImage renders the 1200x630 social card. avatar holds the raw
// avatar image or nil when it could not be read.
func (r *Renderer) OpenGraphImage(p *profile.Profile, avatar []byte) templ.Component {
	return r.component(templateCard, buildCard(p, avatar))
}

func (r *Renderer) component(name string, data any) templ.Component {
	return templ.FromGoHTML(r.templates.Lookup(name), data)
}

// Render renders c into memory.
func Render(ctx context.Context, c templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AvatarMIME returns the image type for an avatar file name.
func AvatarMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// avatarDataURI embeds an avatar image. The result is only ever built from
// base64 output so it is safe to mark as a URL.
func avatarDataURI(name string, data []byte) template.URL {
	if len(data) == 0 {
		return ""
	}
	return template.URL("data:" + AvatarMIME(name) + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// imageURL maps an image file name to its public route, or "" when the
// name is unsafe.
func imageURL(name string) string {
	if name == "" || validation.ValidateImageName(name) != nil {
		return ""
	}
	return "/images/" + name
}
