package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// linkSchemes lists the URL schemes a profile link may use.
var linkSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// ValidateLinkURL checks a link target from the profile. Only web, mail and
// phone links are accepted so a card can never run script.
func ValidateLinkURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !linkSchemes[scheme] {
		return fmt.Errorf("invalid URL scheme: %q (only http, https, mailto and tel allowed)", parsed.Scheme)
	}

	// Markup breaking characters
	dangerous := []string{"<", ">", "\"", "`", "\n", "\r", " "}
	for _, char := range dangerous {
		if strings.Contains(rawURL, char) {
			return fmt.Errorf("URL contains dangerous character: %q", char)
		}
	}

	if (scheme == "http" || scheme == "https") && parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	return nil
}

// ValidateLoopbackURL validates the target of the invalidation loopback call.
func ValidateLoopbackURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}

	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}

	return nil
}
