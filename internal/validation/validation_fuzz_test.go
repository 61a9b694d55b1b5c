package validation

import (
	"net/url"
	"path/filepath"
	"strings"
	"testing"
)

// FuzzValidateLinkURL checks that accepted link targets are always safe to
// place in an href.
func FuzzValidateLinkURL(f *testing.F) {
	f.Add("https://example.com")
	f.Add("mailto:jane@example.com")
	f.Add("javascript:alert('xss')")
	f.Add("data:text/html,<script>alert('xss')</script>")
	f.Add("https://example.com\"><script>")
	f.Add("https://")
	f.Add("")

	f.Fuzz(func(t *testing.T, testURL string) {
		if len(testURL) > 10000 {
			t.Skip("URL too long")
		}

		if err := ValidateLinkURL(testURL); err != nil {
			return
		}

		parsed, err := url.Parse(testURL)
		if err != nil {
			t.Errorf("ValidateLinkURL passed but url.Parse failed for: %q", testURL)
			return
		}

		if !linkSchemes[strings.ToLower(parsed.Scheme)] {
			t.Errorf("ValidateLinkURL passed for scheme %q", parsed.Scheme)
		}

		for _, char := range []string{"<", ">", "\"", "\n"} {
			if strings.Contains(testURL, char) {
				t.Errorf("ValidateLinkURL passed for URL with %q: %q", char, testURL)
			}
		}
	})
}

// FuzzValidateImageName checks that accepted names never leave the images
// directory once joined.
func FuzzValidateImageName(f *testing.F) {
	f.Add("avatar.jpg")
	f.Add("../avatar.jpg")
	f.Add("a/../../b.png")
	f.Add("/abs.png")
	f.Add("....//x.png")

	f.Fuzz(func(t *testing.T, name string) {
		if err := ValidateImageName(name); err != nil {
			return
		}

		root := filepath.FromSlash("/srv/images")
		joined := filepath.Join(root, filepath.FromSlash(name))
		if !strings.HasPrefix(joined, root+string(filepath.Separator)) {
			t.Errorf("ValidateImageName passed for escaping name %q (joined %q)", name, joined)
		}
	})
}
