package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/conneroisu/linkpage/internal/cache"
	apperrors "github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/profile"
	"github.com/conneroisu/linkpage/internal/renderer"
	"github.com/conneroisu/linkpage/internal/validation"
	"github.com/conneroisu/linkpage/internal/version"
)

// configExportName is the file name offered by the settings panel export.
const configExportName = "linkpage-config.json"

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Version     string      `json:"version"`
	Environment string      `json:"environment"`
	Profile     string      `json:"profile"`
	Generation  uint64      `json:"generation"`
	Cache       cache.Stats `json:"cache"`
	Clients     int         `json:"clients,omitempty"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, KeyHome, renderer.ContentTypeHTML, func(p *profile.Profile) templ.Component {
		return s.renderer.Home(p)
	})
}

func (s *Server) handleOpenGraphImage(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, KeyOpenGraphImage, renderer.ContentTypeSVG, func(p *profile.Profile) templ.Component {
		return s.renderer.OpenGraphImage(p, s.readAvatar(r.Context(), p.Avatar))
	})
}

// serveCached answers from the render cache or renders and stores the
// result. Output rendered from a profile that was replaced mid-render is
// served but not stored.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key, contentType string, build func(*profile.Profile) templ.Component) {
	if entry, ok := s.cache.Get(key); ok {
		w.Header().Set("X-Cache", "HIT")
		s.write(w, r, http.StatusOK, entry.ContentType, entry.Value)
		return
	}

	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	body, err := renderer.Render(r.Context(), build(p))
	if err != nil {
		s.renderFailure(w, r, apperrors.NewInternalError(apperrors.ErrCodeInternalError, "cannot render page", err).
			WithComponent(key))
		return
	}

	s.cache.SetIf(key, body, contentType, func() bool {
		return s.store.Current() == p
	})

	w.Header().Set("X-Cache", "MISS")
	s.write(w, r, http.StatusOK, contentType, body)
}

func (s *Server) handleSubPage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	c, found := s.renderer.SubPage(p, chi.URLParam(r, "slug"))
	if !found {
		s.handleNotFound(w, r)
		return
	}

	s.writeComponent(w, r, http.StatusOK, renderer.ContentTypeHTML, c)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeComponent(w, r, http.StatusNotFound, renderer.ContentTypeHTML, s.renderer.NotFound())
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if err := validation.ValidateImageName(name); err != nil {
		s.errors.Handle(r.Context(), rejectedImage(name, err))
		s.handleNotFound(w, r)
		return
	}

	path := filepath.Join(s.config.Images.Dir, filepath.FromSlash(name))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.handleNotFound(w, r)
		return
	}

	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Version:     version.Get().Short(),
		Environment: s.config.Server.Environment,
		Profile:     s.store.State().String(),
		Generation:  s.store.Generation(),
		Cache:       s.cache.Stats(),
	}
	if s.hub != nil {
		health.Clients = s.hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		requestLogger(r.Context(), s.logger).Error(r.Context(), err, "Failed to encode health response")
	}
}

// handleConfigExport offers the merged profile as a download.
func (s *Server) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.profile(w, r)
	if !ok {
		return
	}

	body, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		s.renderFailure(w, r, apperrors.NewInternalError(apperrors.ErrCodeInternalError, "cannot encode profile", err))
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+configExportName+`"`)
	s.write(w, r, http.StatusOK, "application/json", append(body, '\n'))
}

// profile reads the profile for this request. On failure the error page has
// been written and ok is false.
func (s *Server) profile(w http.ResponseWriter, r *http.Request) (*profile.Profile, bool) {
	p, err := s.store.Get(r.Context())
	if err != nil {
		s.renderFailure(w, r, err)
		return nil, false
	}
	return p, true
}

func (s *Server) renderFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.errors.Handle(r.Context(), err)
	s.writeComponent(w, r, http.StatusInternalServerError, renderer.ContentTypeHTML, s.renderer.Error())
}

func (s *Server) writeComponent(w http.ResponseWriter, r *http.Request, status int, contentType string, c templ.Component) {
	body, err := renderer.Render(r.Context(), c)
	if err != nil {
		requestLogger(r.Context(), s.logger).Error(r.Context(), err, "Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.write(w, r, status, contentType, body)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		requestLogger(r.Context(), s.logger).Debug(r.Context(), "Failed to write response", "error", err.Error())
	}
}

// readAvatar loads the avatar for the social card. Missing or unsafe files
// yield nil and the card falls back to the initial.
func (s *Server) readAvatar(ctx context.Context, name string) []byte {
	if name == "" {
		return nil
	}
	if err := validation.ValidateImageName(name); err != nil {
		requestLogger(ctx, s.logger).Debug(ctx, "Avatar rejected for social card", "error", rejectedImage(name, err).Error())
		return nil
	}

	data, err := os.ReadFile(filepath.Join(s.config.Images.Dir, filepath.FromSlash(name)))
	if err != nil {
		requestLogger(ctx, s.logger).Debug(ctx, "Avatar unavailable for social card", "avatar", name, "error", err.Error())
		return nil
	}
	return data
}

// rejectedImage classifies an image name that failed validation. Names
// that try to leave the images directory are security errors.
func rejectedImage(name string, err error) *apperrors.AppError {
	name = validation.SanitizeInput(name)
	if errors.Is(err, validation.ErrPathTraversal) {
		return apperrors.ErrPathTraversal(name)
	}
	return apperrors.ErrInvalidPath(name)
}
