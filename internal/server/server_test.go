package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/linkpage/internal/config"
	apperrors "github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/profile"
	"github.com/conneroisu/linkpage/internal/validation"
)

const testProfile = `{
  "name": "Ada Lovelace",
  "biography": "First programmer",
  "avatar": "ada.png",
  "links": {
    "github": "https://github.com/ada",
    "projects": {
      "title": "Projects",
      "pages": {
        "engine": { "title": "Analytical Engine", "url": "https://engine.example" }
      }
    },
    "drafts": {
      "title": "Drafts",
      "hidden": true,
      "pages": {
        "notes": "https://notes.example"
      }
    }
  }
}`

var avatarPNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type fixture struct {
	dir    string
	config *config.Config
	store  *profile.Store
	server *Server
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	dir := t.TempDir()
	images := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(images, "ada.png"), avatarPNG, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(testProfile), 0o644))

	cfg, err := config.Load(config.New())
	require.NoError(t, err)
	cfg.Profile.Path = filepath.Join(dir, "config.json")
	cfg.Profile.Watch = false
	cfg.Images.Dir = images
	cfg.Invalidation.Token = "s3cret"
	if mutate != nil {
		mutate(cfg)
	}

	store, err := profile.NewStore(profile.Options{
		Path:     cfg.Profile.Path,
		Watch:    cfg.Profile.Watch,
		Debounce: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	s, err := New(Options{Config: cfg, Store: store})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})

	return &fixture{dir: dir, config: cfg, store: store, server: s}
}

func (f *fixture) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	rec := httptest.NewRecorder()
	f.server.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHomeIsCached(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.Contains(t, rec.Body.String(), `href="/projects"`)
	assert.NotContains(t, rec.Body.String(), "Drafts")

	rec = f.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))

	stats := f.server.Cache().Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
}

func TestSubPages(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"visible sub-page", "/projects", http.StatusOK, "Analytical Engine"},
		{"hidden sub-page stays reachable", "/drafts", http.StatusOK, "Notes"},
		{"plain link has no page", "/github", http.StatusNotFound, "Page Not Found"},
		{"unknown key", "/nope", http.StatusNotFound, "Page Not Found"},
		{"nested path", "/projects/engine", http.StatusNotFound, "Page Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	assert.Zero(t, f.server.Cache().Stats().Entries, "sub-pages are not cached")
}

func TestOpenGraphImage(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/opengraph-image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")
	assert.Contains(t, rec.Body.String(), "3 Links Available")

	rec = f.do(t, http.MethodGet, "/opengraph-image", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestOpenGraphImageWithoutAvatar(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.Remove(filepath.Join(f.config.Images.Dir, "ada.png")))

	rec := f.do(t, http.MethodGet, "/opengraph-image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<image")
	assert.Contains(t, rec.Body.String(), ">A</text>")
}

func TestRevalidate(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodGet, "/", nil)
	f.do(t, http.MethodGet, "/opengraph-image", nil)
	require.Equal(t, 2, f.server.Cache().Stats().Entries)

	rec := f.do(t, http.MethodGet, "/api/revalidate", http.Header{"Authorization": {"Bearer wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", strings.TrimSpace(rec.Body.String()))
	assert.Equal(t, 2, f.server.Cache().Stats().Entries)

	rec = f.do(t, http.MethodGet, "/api/revalidate", http.Header{"Authorization": {"Bearer s3cret"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", strings.TrimSpace(rec.Body.String()))
	assert.Zero(t, f.server.Cache().Stats().Entries)

	rec = f.do(t, http.MethodPost, "/api/revalidate", http.Header{"Authorization": {"Bearer s3cret"}})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRevalidateDoesNotReload(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodGet, "/", nil)
	require.NoError(t, os.WriteFile(f.config.Profile.Path, []byte(`{"name": "Grace Hopper"}`), 0o644))

	rec := f.do(t, http.MethodGet, "/api/revalidate", http.Header{"Authorization": {"Bearer s3cret"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.EqualValues(t, 1, f.store.Generation())
}

func TestProfileFailureRendersErrorPage(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Profile.Path = filepath.Join(c.Images.Dir, "missing.json")
	})

	for _, path := range []string{"/", "/opengraph-image", "/projects"} {
		rec := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "Oh no!", path)
	}
	assert.Zero(t, f.server.Cache().Stats().Entries)
}

func TestImages(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/images/ada.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, avatarPNG, rec.Body.Bytes())

	for _, path := range []string{"/images/missing.png", "/images/../config.json", "/images/notes.txt"} {
		rec = f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestRejectedImage(t *testing.T) {
	tests := []struct {
		name     string
		security bool
		code     string
	}{
		{name: "../config.json", security: true, code: apperrors.ErrCodePathTraversal},
		{name: "cards/../../secret.png", security: true, code: apperrors.ErrCodePathTraversal},
		{name: "notes.txt", security: false, code: apperrors.ErrCodeInvalidPath},
		{name: "/etc/passwd", security: false, code: apperrors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateImageName(tt.name)
			require.Error(t, err)

			rejected := rejectedImage(tt.name, err)
			assert.Equal(t, tt.code, rejected.Code)
			assert.Equal(t, tt.security, apperrors.IsSecurityError(rejected))
		})
	}

	rejected := rejectedImage("bad\x01name.txt", errors.New("bad"))
	assert.NotContains(t, rejected.Error(), "\x01")
	assert.Contains(t, rejected.Error(), "badname.txt")
}

func TestReloadDuringRenderIsNotCached(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	f.server.serveCached(rec, req, KeyHome, "text/html", func(p *profile.Profile) templ.Component {
		_, err := f.store.Load(ctx, true)
		require.NoError(t, err)
		return templ.Raw("<p>" + p.Name + "</p>")
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>Ada Lovelace</p>", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	_, cached := f.server.cache.Get(KeyHome)
	assert.False(t, cached)

	rec = f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodGet, "/", nil)

	rec := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, config.EnvironmentProduction, health.Environment)
	assert.EqualValues(t, 1, health.Generation)
	assert.Equal(t, 1, health.Cache.Entries)
}

func TestDevelopmentRoutes(t *testing.T) {
	prod := newFixture(t, nil)
	assert.Equal(t, http.StatusNotFound, prod.do(t, http.MethodGet, "/api/config", nil).Code)

	dev := newFixture(t, func(c *config.Config) {
		c.Server.Environment = config.EnvironmentDevelopment
	})

	rec := dev.do(t, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="linkpage-config.json"`, rec.Header().Get("Content-Disposition"))

	var exported map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	assert.JSONEq(t, `"Ada Lovelace"`, string(exported["name"]))
	assert.Contains(t, exported, "theme", "defaults are merged in")

	rec = dev.do(t, http.MethodGet, "/", nil)
	assert.Contains(t, rec.Body.String(), "settings-panel")

	rec = dev.do(t, http.MethodGet, "/api/revalidate", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "development bypasses the token")
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/health", nil)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	rec = f.do(t, http.MethodGet, "/health", http.Header{RequestIDHeader: {id}})
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	rec = f.do(t, http.MethodGet, "/health", http.Header{RequestIDHeader: {"<script>"}})
	assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
}

func TestReloadInvalidatesCache(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Profile.Watch = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.server.local.Start(ctx)

	rec := f.do(t, http.MethodGet, "/", nil)
	require.Contains(t, rec.Body.String(), "Ada Lovelace")

	require.NoError(t, os.WriteFile(f.config.Profile.Path, []byte(`{"name": "Grace Hopper"}`), 0o644))

	assert.Eventually(t, func() bool {
		return strings.Contains(f.do(t, http.MethodGet, "/", nil).Body.String(), "Grace Hopper")
	}, 5*time.Second, 20*time.Millisecond)
}

func TestHTTPInvalidationMode(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Invalidation.Mode = config.ModeHTTP
	})

	assert.NotNil(t, f.server.remote)
	assert.Nil(t, f.server.local)
}

func TestStartAndShutdown(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Server.Port = 0
	})

	errCh := make(chan error, 1)
	go func() { errCh <- f.server.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		f.server.serverMutex.RLock()
		defer f.server.serverMutex.RUnlock()
		return f.server.httpServer != nil
	}, 5*time.Second, 10*time.Millisecond)

	// Give ListenAndServe a moment to bind so Shutdown closes the listener.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, f.server.Shutdown(context.Background()))
	require.NoError(t, f.server.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	assert.Error(t, f.server.Start(context.Background()))
}

func TestStartFailsOnUnreadableProfile(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Profile.Path = filepath.Join(c.Images.Dir, "missing.json")
	})

	err := f.server.Start(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigReadError(err))
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func discardLogger() logging.Logger {
	return logging.Discard()
}

func TestSecurityHeaders(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "plain HTTP never gets HSTS")
}
