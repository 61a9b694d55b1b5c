package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintDefaultIsClean(t *testing.T) {
	assert.Empty(t, Lint(Default()))
	assert.Nil(t, Lint(nil))
}

func TestLintFindsHazards(t *testing.T) {
	p, err := Parse([]byte(`{
		"avatar": "../secret.jpg",
		"mystery": true,
		"theme": {"colorScheme": "neon", "backgroundType": "video", "accentColor": "red;}"},
		"links": {
			"bad": "javascript:alert(1)",
			"untitled": {"url": "https://u.test"},
			"nourl": {"title": "No URL"},
			"huge": {"title": "Huge", "url": "https://h.test", "size": "giant"},
			"group": {
				"description": "no title",
				"pages": {
					"nested": {"title": "Nested", "url": "https://n.test", "pages": {"x": "https://x.test"}},
					"evil": "data:text/html,hi"
				}
			}
		}
	}`))
	require.NoError(t, err)

	fields := make(map[string]bool)
	for _, issue := range Lint(p) {
		fields[issue.Field] = true
	}

	for _, want := range []string{
		"mystery",
		"avatar",
		"theme.colorScheme",
		"theme.backgroundType",
		"theme.accentColor",
		"links.bad",
		"links.untitled.title",
		"links.nourl.url",
		"links.huge.size",
		"links.group.title",
		"links.group.pages.nested.pages",
		"links.group.pages.evil",
	} {
		assert.True(t, fields[want], "expected an issue for %s", want)
	}
}

func TestIssueString(t *testing.T) {
	assert.Equal(t, "links.a.title: rich link has no title", Issue{Field: "links.a.title", Message: "rich link has no title"}.String())
}
