package renderer

import (
	"html/template"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/conneroisu/linkpage/internal/links"
	"github.com/conneroisu/linkpage/internal/profile"
	"github.com/conneroisu/linkpage/internal/theme"
	"github.com/conneroisu/linkpage/internal/validation"
)

const (
	projectURL = "https://github.com/kldzj/linkpage"
	sponsorURL = "https://github.com/sponsors/kldzj"

	bioLimit      = 120
	cardLineWidth = 48
)

type pageData struct {
	Lang        string
	Title       string
	Description string
	Keywords    string
	Author      string
	Favicon     string
	Canonical   string
	ImageURL    string

	ThemeCSS       template.CSS
	BodyBackground template.CSS

	AvatarURL string
	Initial   string
	Name      string

	IsSubPage  bool
	Heading    string
	Subheading string
	Cards      []card

	Footer      footer
	Analytics   *analytics
	Development bool
	Settings    *settings
}

type card struct {
	Href        template.URL
	External    bool
	Title       string
	Description string
	Icon        string
	BgImage     string
	Style       template.CSS
	Featured    bool
	Custom      bool
	SubPage     bool
	Padding     string
	Delay       int
}

type footer struct {
	Hidden      bool
	Notice      bool
	ShowSponsor bool
	ProjectURL  string
	SponsorURL  string
}

type analytics struct {
	GoogleAnalytics string
	Plausible       string
	UmamiWebsiteID  string
	UmamiSrc        string
}

type settings struct {
	Current   string
	LinkCount int
	Themes    []settingsTheme
}

type settingsTheme struct {
	Scheme  string            `json:"scheme"`
	Name    string            `json:"name"`
	Primary string            `json:"primary"`
	Vars    map[string]string `json:"vars"`
	Swatch  template.CSS      `json:"-"`
}

type statusPage struct {
	Title string
}

type socialCard struct {
	Accent       string
	AvatarURI    template.URL
	Initial      string
	Name         string
	Bio          []string
	LinkCount    int
	ShowBranding bool
}

func (r *Renderer) page(p *profile.Profile) pageData {
	data := pageData{
		Lang:           "en",
		Title:          p.SEO.Title,
		Description:    p.SEO.Description,
		Keywords:       strings.Join(p.SEO.Keywords, ", "),
		Author:         p.Name,
		Favicon:        p.SEO.Favicon,
		ThemeCSS:       template.CSS(theme.CSS(p.Theme.ColorScheme, p.Theme.AccentColor)),
		BodyBackground: template.CSS(theme.BodyBackground(p.Theme.BackgroundType, p.Theme.CustomBackground)),
		AvatarURL:      imageURL(p.Avatar),
		Initial:        initial(p.Name),
		Name:           p.Name,
		Footer:         buildFooter(p.Branding, r.development),
		Analytics:      buildAnalytics(p.Analytics),
		Development:    r.development,
	}

	if data.Favicon == "" {
		data.Favicon = "/favicon.ico"
	}

	if base, err := url.Parse(p.Domain); err == nil && (base.Scheme == "http" || base.Scheme == "https") && base.Host != "" {
		data.Canonical = strings.TrimSuffix(base.String(), "/")
		data.ImageURL = data.Canonical + "/opengraph-image"
	}

	if r.development {
		data.Settings = buildSettings(p)
	}

	return data
}

func buildCards(l links.Links) []card {
	records := links.Visible(l)
	cards := make([]card, 0, len(records))

	for _, rec := range records {
		if !rec.IsSubPage && rec.URL == "" {
			continue
		}

		c := card{
			Title:       rec.Title,
			Description: rec.Description,
			Icon:        string(rec.Icon),
			BgImage:     imageURL(rec.BgImage),
			Style:       cardStyle(rec.Color, rec.BgColor),
			Featured:    rec.Featured,
			Custom:      rec.HasCustomBackground(),
			SubPage:     rec.IsSubPage,
			Padding:     cardPadding(rec),
			Delay:       len(cards)*100 + 250,
		}

		if rec.IsSubPage {
			c.Href = template.URL("/" + url.PathEscape(rec.Key))
		} else {
			c.Href = linkHref(rec.URL)
			c.External = true
		}

		cards = append(cards, c)
	}

	return cards
}

// linkHref passes validated link targets through untouched so tel: links
// survive escaping. Anything else renders as an inert anchor.
func linkHref(raw string) template.URL {
	if validation.ValidateLinkURL(raw) != nil {
		return "#"
	}
	return template.URL(raw)
}

func cardPadding(rec links.DisplayRecord) string {
	switch {
	case rec.Size == links.SizeExtraLarge:
		return "py-12"
	case rec.Size == links.SizeLarge || rec.Featured || rec.BgImage != "":
		return "py-8"
	case rec.Size == links.SizeSmall:
		return "py-2"
	default:
		return "py-3"
	}
}

// cardStyle builds the inline colour overrides. Invalid colours are dropped.
func cardStyle(color, bgColor string) template.CSS {
	var decls []string
	if color != "" && validation.ValidateCSSColor(color) == nil {
		decls = append(decls, "color: "+strings.TrimSpace(color))
	}
	if bgColor != "" && validation.ValidateCSSColor(bgColor) == nil {
		decls = append(decls, "background-color: "+strings.TrimSpace(bgColor))
	}
	return template.CSS(strings.Join(decls, "; "))
}

func buildFooter(b profile.Branding, development bool) footer {
	return footer{
		Hidden:      b.HideBranding(),
		Notice:      b.NeedsSponsorNotice(),
		ShowSponsor: development,
		ProjectURL:  projectURL,
		SponsorURL:  sponsorURL,
	}
}

func buildAnalytics(a profile.Analytics) *analytics {
	if !a.Enabled {
		return nil
	}

	out := &analytics{
		GoogleAnalytics: a.GoogleAnalytics,
		Plausible:       a.Plausible,
	}
	if a.Umami != nil {
		out.UmamiWebsiteID = a.Umami.WebsiteID
		out.UmamiSrc = a.Umami.ScriptSrc()
	}

	return out
}

func buildSettings(p *profile.Profile) *settings {
	s := &settings{
		Current:   string(p.Theme.ColorScheme),
		LinkCount: p.Links.Len(),
	}

	for _, opt := range theme.Options() {
		s.Themes = append(s.Themes, settingsTheme{
			Scheme:  string(opt.Scheme),
			Name:    opt.Palette.Name,
			Primary: opt.Palette.Primary,
			Swatch:  template.CSS("background-color: " + opt.Palette.Primary),
			Vars: map[string]string{
				"--primary":            opt.Palette.Primary,
				"--primary-foreground": opt.Palette.PrimaryForeground,
				"--background":         opt.Palette.Background,
				"--foreground":         opt.Palette.Foreground,
				"--muted":              opt.Palette.Muted,
				"--muted-foreground":   opt.Palette.MutedForeground,
				"--accent":             opt.Palette.Accent,
				"--accent-foreground":  opt.Palette.AccentForeground,
			},
		})
	}

	return s
}

func buildCard(p *profile.Profile, avatar []byte) socialCard {
	return socialCard{
		Accent:       theme.OpenGraphAccent(p.Theme.ColorScheme, p.Theme.AccentColor),
		AvatarURI:    avatarDataURI(p.Avatar, avatar),
		Initial:      strings.ToUpper(initial(p.Name)),
		Name:         p.Name,
		Bio:          wrapText(truncate(p.Biography, bioLimit), cardLineWidth),
		LinkCount:    p.Links.Len(),
		ShowBranding: !p.Branding.HideBranding(),
	}
}

// initial returns the first character of name.
func initial(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}

// truncate cuts s to limit characters and marks the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

// wrapText breaks s into lines of at most width characters on spaces.
// Words longer than width get a line of their own.
func wrapText(s string, width int) []string {
	words := strings.FieldsFunc(s, unicode.IsSpace)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	for _, w := range words {
		if line.Len() > 0 && utf8.RuneCountInString(line.String())+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w)
	}
	lines = append(lines, line.String())

	return lines
}
