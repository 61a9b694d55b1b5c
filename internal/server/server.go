// Package server exposes the profile pages, the social card and the
// invalidation trigger over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/linkpage/internal/cache"
	"github.com/conneroisu/linkpage/internal/config"
	apperrors "github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/invalidate"
	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/profile"
	"github.com/conneroisu/linkpage/internal/renderer"
)

// Cache keys of the cached routes.
const (
	KeyHome           = "/"
	KeyOpenGraphImage = "/opengraph-image"
)

// Options wires a Server. Store and Config are required.
type Options struct {
	Config   *config.Config
	Store    *profile.Store
	Renderer *renderer.Renderer
	Cache    *cache.RenderCache
	Logger   logging.Logger
}

// Server serves the site.
type Server struct {
	config   *config.Config
	store    *profile.Store
	renderer *renderer.Renderer
	cache    *cache.RenderCache
	logger   logging.Logger
	errors   *apperrors.ErrorHandler

	notifier invalidate.Notifier
	local    *invalidate.LocalNotifier
	remote   *invalidate.HTTPNotifier
	hub      *Hub

	httpServer  *http.Server
	serverMutex sync.RWMutex
	cancel      context.CancelFunc

	startOnce    sync.Once
	shutdownOnce sync.Once
}

// New builds a server and registers the reload listener on the store.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Store == nil {
		return nil, fmt.Errorf("server: config and store are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithComponent("server")

	cfg := opts.Config

	r := opts.Renderer
	if r == nil {
		var err error
		r, err = renderer.New(renderer.Options{Development: cfg.Development()})
		if err != nil {
			return nil, err
		}
	}

	c := opts.Cache
	if c == nil {
		c = cache.NewRenderCache(cfg.Cache.MaxSize, cfg.Cache.TTL)
	}

	s := &Server{
		config:   cfg,
		store:    opts.Store,
		renderer: r,
		cache:    c,
		logger:   logger,
		errors:   apperrors.NewErrorHandler(logger),
	}

	if cfg.Development() {
		s.hub = NewHub(s.allowedOrigins(), logger)
	}

	switch cfg.Invalidation.Mode {
	case config.ModeHTTP:
		n, err := invalidate.NewHTTPNotifier(invalidate.LoopbackURL(cfg.Server.Port), cfg.Invalidation.Token, cfg.Invalidation.Timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("creating invalidation notifier: %w", err)
		}
		s.remote = n
		s.notifier = n
	default:
		s.local = invalidate.NewLocalNotifier(s.target(), logger)
		s.notifier = s.local
	}

	s.store.OnReload(func(ctx context.Context, _ *profile.Profile) {
		s.notifier.Notify(ctx)
	})

	return s, nil
}

// target is what invalidation acts on: the render cache, followed by a
// live reload broadcast in development.
func (s *Server) target() invalidate.Invalidator {
	return invalidatorFunc(func(keys ...string) int {
		removed := s.cache.Invalidate(keys...)
		if s.hub != nil {
			s.hub.Broadcast(context.Background(), MessageFullReload)
		}
		return removed
	})
}

type invalidatorFunc func(keys ...string) int

func (f invalidatorFunc) Invalidate(keys ...string) int { return f(keys...) }

// Cache returns the render cache.
func (s *Server) Cache() *cache.RenderCache {
	return s.cache
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID(s.logger))
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(!s.config.Development()))

	r.Get("/", s.handleHome)
	r.Get("/opengraph-image", s.handleOpenGraphImage)
	r.Get("/health", s.handleHealth)
	r.Get("/images/*", s.handleImage)
	r.Handle(invalidate.Route, invalidate.NewHandler(s.config.Server.Environment, s.config.Invalidation.Token, s.target(), s.logger))

	if s.config.Development() {
		r.Get("/ws", s.hub.ServeHTTP)
		r.Get("/api/config", s.handleConfigExport)
	}

	r.Get("/{slug}", s.handleSubPage)
	r.NotFound(s.handleNotFound)

	return r
}

// Start loads the profile, starts the background workers and serves until
// Shutdown. A profile that cannot be read or parsed is returned as an error.
func (s *Server) Start(ctx context.Context) error {
	started := false
	var startErr error

	s.startOnce.Do(func() {
		started = true
		startErr = s.start(ctx)
	})

	if !started {
		return fmt.Errorf("server already started")
	}
	return startErr
}

func (s *Server) start(ctx context.Context) error {
	if _, err := s.store.Load(ctx, false); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)

	if s.local != nil {
		s.local.Start(ctx)
	}
	if s.hub != nil {
		s.hub.Start(ctx)
	}

	server := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.serverMutex.Lock()
	s.httpServer = server
	s.cancel = cancel
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Server listening",
		"address", server.Addr,
		"environment", s.config.Server.Environment,
		"invalidation", s.config.Invalidation.Mode,
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, the background workers and the profile
// watcher. It is safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.serverMutex.RLock()
		server := s.httpServer
		cancel := s.cancel
		s.serverMutex.RUnlock()

		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				shutdownErr = fmt.Errorf("shutting down http server: %w", err)
			}
		}
		if cancel != nil {
			cancel()
		}

		if s.local != nil {
			s.local.Stop()
		}
		if s.remote != nil {
			s.remote.Wait()
		}
		if err := s.store.Close(); err != nil && shutdownErr == nil {
			shutdownErr = fmt.Errorf("closing profile store: %w", err)
		}
	})

	return shutdownErr
}

func (s *Server) allowedOrigins() []string {
	port := strconv.Itoa(s.config.Server.Port)
	origins := []string{
		net.JoinHostPort(s.config.Server.Host, port),
		net.JoinHostPort("localhost", port),
		net.JoinHostPort("127.0.0.1", port),
	}
	return append(origins, s.config.Server.AllowedOrigins...)
}
