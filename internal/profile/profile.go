// Package profile loads the profile configuration file, merges it over the
// built-in defaults and keeps the merged result cached for the life of the
// process, reloading it when the file changes on disk.
package profile

import (
	"github.com/conneroisu/linkpage/internal/links"
	"github.com/conneroisu/linkpage/internal/theme"
)

// DefaultUmamiSrc is the script loaded when an umami block has no src.
const DefaultUmamiSrc = "https://cloud.umami.is/script.js"

// Profile is the merged configuration that drives every page.
type Profile struct {
	Avatar    string      `json:"avatar" yaml:"avatar"`
	Name      string      `json:"name" yaml:"name"`
	Biography string      `json:"biography" yaml:"biography"`
	Domain    string      `json:"domain" yaml:"domain"`
	Theme     Theme       `json:"theme" yaml:"theme"`
	SEO       SEO         `json:"seo" yaml:"seo"`
	Analytics Analytics   `json:"analytics" yaml:"analytics"`
	Branding  Branding    `json:"branding" yaml:"branding"`
	Links     links.Links `json:"links" yaml:"links"`

	unknownKeys []string
	mistyped    []Issue
}

// Theme selects the palette and page background.
type Theme struct {
	ColorScheme      theme.Scheme     `json:"colorScheme" yaml:"colorScheme"`
	BackgroundType   theme.Background `json:"backgroundType" yaml:"backgroundType"`
	CustomBackground string           `json:"customBackground,omitempty" yaml:"customBackground,omitempty"`
	AccentColor      string           `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
}

// SEO feeds the document head.
type SEO struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Favicon     string   `json:"favicon,omitempty" yaml:"favicon,omitempty"`
}

// Analytics configures third-party tracking scripts.
type Analytics struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	GoogleAnalytics string `json:"googleAnalytics,omitempty" yaml:"googleAnalytics,omitempty"`
	Plausible       string `json:"plausible,omitempty" yaml:"plausible,omitempty"`
	Umami           *Umami `json:"umami,omitempty" yaml:"umami,omitempty"`
}

// Umami identifies an umami website.
type Umami struct {
	WebsiteID string `json:"websiteId" yaml:"websiteId"`
	Src       string `json:"src,omitempty" yaml:"src,omitempty"`
}

// ScriptSrc returns the configured script URL or the umami cloud default.
func (u Umami) ScriptSrc() string {
	if u.Src == "" {
		return DefaultUmamiSrc
	}
	return u.Src
}

// Branding controls the footer and the social card signature.
type Branding struct {
	HideFooter        bool `json:"hideFooter,omitempty" yaml:"hideFooter,omitempty"`
	SponsoredOnGitHub bool `json:"sponsoredOnGitHub,omitempty" yaml:"sponsoredOnGitHub,omitempty"`
}

// HideBranding reports whether the footer and card signature are dropped.
// Both flags are required.
func (b Branding) HideBranding() bool {
	return b.HideFooter && b.SponsoredOnGitHub
}

// NeedsSponsorNotice reports whether the footer was hidden without
// sponsorship, in which case a notice replaces it.
func (b Branding) NeedsSponsorNotice() bool {
	return b.HideFooter && !b.SponsoredOnGitHub
}

// SubPage looks up a sub-page by slug. Hidden sub-pages are returned too.
func (p *Profile) SubPage(slug string) (links.SubPage, bool) {
	e, ok := p.Links.Get(slug)
	if !ok {
		return links.SubPage{}, false
	}
	return e.SubPage()
}

// UnknownKeys lists top-level keys that were present in the file but are
// not part of the profile. They are ignored.
func (p *Profile) UnknownKeys() []string {
	out := make([]string, len(p.unknownKeys))
	copy(out, p.unknownKeys)
	return out
}

// Default returns a fresh copy of the built-in profile.
func Default() *Profile {
	return &Profile{
		Avatar:    "avatar.jpg",
		Name:      "John Doe",
		Biography: "I am a software engineer",
		Domain:    "https://localhost:3000",
		Theme: Theme{
			ColorScheme:      theme.SchemeDefault,
			BackgroundType:   theme.BackgroundGradient,
			CustomBackground: "",
			AccentColor:      "#3b82f6",
		},
		SEO: SEO{
			Title:       "LinkPage",
			Description: "LinkPage is a platform for creating and sharing links",
			Keywords:    []string{"links", "social", "profile"},
			Favicon:     "/favicon.ico",
		},
		Analytics: Analytics{
			Enabled: false,
		},
		Branding: Branding{},
		Links: links.Of(
			links.KeyEntry{Key: "facebook", Entry: links.Simple("https://www.facebook.com/your-page")},
			links.KeyEntry{Key: "twitter", Entry: links.Simple("https://www.twitter.com/your-page")},
			links.KeyEntry{Key: "instagram", Entry: links.Simple("https://www.instagram.com/your-page")},
			links.KeyEntry{Key: "linkedin", Entry: links.Simple("https://www.linkedin.com/your-page")},
			links.KeyEntry{Key: "custom", Entry: links.RichLink(links.Link{
				Title:       "Custom Link",
				URL:         "https://www.customlink.com",
				BgImage:     "custom.jpg",
				Description: "Check out my custom project",
			})},
		),
	}
}
