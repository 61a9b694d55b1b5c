// Package invalidate implements the shared-secret revalidation trigger and the
// notifiers that fire it after a profile reload.
package invalidate

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/logging"
)

// Route is the path the trigger is mounted on.
const Route = "/api/revalidate"

// EnvironmentDevelopment disables the credential check.
const EnvironmentDevelopment = "development"

// Paths lists the cached routes dropped by every trigger.
var Paths = []string{"/", "/opengraph-image"}

// Invalidator drops cached output by key.
type Invalidator interface {
	Invalidate(keys ...string) int
}

// Authorize checks an Authorization header against the configured secret.
// Development environments are always authorized. Otherwise the header must
// carry "Bearer <secret>" and a secret must be configured.
func Authorize(environment, secret, header string) error {
	if environment == EnvironmentDevelopment {
		return nil
	}
	if secret == "" {
		return errors.NewAuthorizationError("no invalidation secret configured")
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return errors.NewAuthorizationError("missing bearer token")
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return errors.NewAuthorizationError("token mismatch")
	}

	return nil
}

// Handler serves the revalidation trigger.
type Handler struct {
	environment string
	secret      string
	target      Invalidator
	logger      logging.Logger
	errors      *errors.ErrorHandler
}

// NewHandler creates the trigger handler for target.
func NewHandler(environment, secret string, target Invalidator, logger logging.Logger) *Handler {
	logger = logger.WithComponent("invalidate")

	return &Handler{
		environment: environment,
		secret:      secret,
		target:      target,
		logger:      logger,
		errors:      errors.NewErrorHandler(logger),
	}
}

// ServeHTTP authorizes the request and drops the home and image routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := Authorize(h.environment, h.secret, r.Header.Get("Authorization")); err != nil {
		h.errors.Handle(r.Context(), err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("Unauthorized"))
		return
	}

	removed := Invalidate(h.target)
	h.logger.Info(r.Context(), "Render cache invalidated", "removed", removed, "paths", Paths)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Invalidate drops every trigger path from target.
func Invalidate(target Invalidator) int {
	if target == nil {
		return 0
	}
	return target.Invalidate(Paths...)
}

// Notifier fires an invalidation after the profile changed.
type Notifier interface {
	Notify(ctx context.Context)
}
