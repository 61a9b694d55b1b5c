package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetUsesStampedValues(t *testing.T) {
	defer func(v, c, b string) { Version, GitCommit, BuildTime = v, c, b }(Version, GitCommit, BuildTime)

	Version = "v1.2.3"
	GitCommit = "0123456789abcdef"
	BuildTime = "2025-01-02T03:04:05Z"

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.Equal(t, "0123456789abcdef", info.GitCommit)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), info.BuildTime)
	assert.True(t, info.IsRelease())
	assert.Equal(t, "v1.2.3 (0123456)", info.Short())
	assert.Contains(t, info.String(), "Commit: 0123456789abcdef")
	assert.Contains(t, info.String(), "Built: 2025-01-02T03:04:05Z")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "dev", Info{Version: "dev", GitCommit: "unknown"}.Short())
	assert.Equal(t, "dev-abcdef1", Info{Version: "dev-abcdef1", GitCommit: "abcdef1234"}.Short())
	assert.False(t, Info{Version: "dev-abcdef1"}.IsRelease())
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("unknown").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.False(t, parseTime("2025-01-02 03:04:05").IsZero())
}
