package links

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Icon names a glyph from the lucide icon set.
type Icon string

const (
	IconBriefcase     Icon = "briefcase"
	IconCamera        Icon = "camera"
	IconCoffee        Icon = "coffee"
	IconFacebook      Icon = "facebook"
	IconGithub        Icon = "github"
	IconGlobe         Icon = "globe"
	IconHeart         Icon = "heart"
	IconInstagram     Icon = "instagram"
	IconLinkedin      Icon = "linkedin"
	IconMail          Icon = "mail"
	IconMessageCircle Icon = "message-circle"
	IconMusic         Icon = "music"
	IconPhone         Icon = "phone"
	IconStar          Icon = "star"
	IconTwitch        Icon = "twitch"
	IconTwitter       Icon = "twitter"
	IconUser          Icon = "user"
	IconVideo         Icon = "video"
	IconYoutube       Icon = "youtube"
	IconZap           Icon = "zap"
)

// DefaultIcon is used for keys missing from the icon table.
const DefaultIcon = IconUser

const defaultKey = "default"

var socialIcons = map[string]Icon{
	// social media
	"facebook":  IconFacebook,
	"twitter":   IconTwitter,
	"x":         IconTwitter,
	"instagram": IconInstagram,
	"linkedin":  IconLinkedin,
	"github":    IconGithub,
	"youtube":   IconYoutube,
	"twitch":    IconTwitch,
	"tiktok":    IconVideo,

	// communication
	"email":    IconMail,
	"mail":     IconMail,
	"phone":    IconPhone,
	"whatsapp": IconMessageCircle,
	"telegram": IconMessageCircle,
	"discord":  IconMessageCircle,

	// creative
	"music":       IconMusic,
	"spotify":     IconMusic,
	"soundcloud":  IconMusic,
	"photography": IconCamera,
	"portfolio":   IconBriefcase,

	// generic
	"website": IconGlobe,
	"blog":    IconGlobe,
	"shop":    IconGlobe,
	"custom":  IconGlobe,
	"link":    IconGlobe,

	"coffee":   IconCoffee,
	"donate":   IconHeart,
	"support":  IconHeart,
	"favorite": IconStar,
	"featured": IconZap,

	defaultKey: DefaultIcon,
}

var socialDisplayNames = map[string]string{
	"facebook":  "Facebook",
	"twitter":   "Twitter",
	"x":         "X",
	"instagram": "Instagram",
	"linkedin":  "LinkedIn",
	"github":    "GitHub",
	"youtube":   "YouTube",
	"twitch":    "Twitch",
	"tiktok":    "TikTok",

	"email":    "Email",
	"mail":     "Email",
	"phone":    "Phone",
	"whatsapp": "WhatsApp",
	"telegram": "Telegram",
	"discord":  "Discord",

	"music":       "Music",
	"spotify":     "Spotify",
	"soundcloud":  "SoundCloud",
	"photography": "Photography",
	"portfolio":   "Portfolio",

	"website": "Website",
	"blog":    "Blog",
	"shop":    "Shop",
	"custom":  "Custom Link",
	"link":    "Link",

	"coffee":   "Buy me a coffee",
	"donate":   "Donate",
	"support":  "Support",
	"favorite": "Favorite",
	"featured": "Featured",

	defaultKey: "Link",
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// normalizeKey lowercases key and strips '-', '_' and whitespace.
func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SocialIcon resolves a link key or icon name to a glyph. Unknown keys get
// DefaultIcon.
func SocialIcon(key string) Icon {
	if icon, ok := socialIcons[normalizeKey(key)]; ok {
		return icon
	}
	return DefaultIcon
}

// SocialDisplayName resolves a link key to a human-readable title. Unknown
// keys are title-cased: first letter upper, the rest lower.
func SocialDisplayName(key string) string {
	if name, ok := socialDisplayNames[normalizeKey(key)]; ok {
		return name
	}
	if key == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(key)
	return upper.String(key[:size]) + lower.String(key[size:])
}

// AllSocialIcons returns every known key except the fallback, sorted.
func AllSocialIcons() []string {
	keys := make([]string, 0, len(socialIcons)-1)
	for k := range socialIcons {
		if k == defaultKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
