package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	domain "lotusspa/backend/internal/domain/auth"
)

// requestResolver is the part of the auth resolver the HTTP layer depends on.
type requestResolver interface {
	Resolve(req *http.Request) domain.Resolution
}

// Guard enforces authenticated, role-authorized access on protected routes.
// It is the authoritative enforcement point: the edge gate in front of it is
// deliberately tolerant, the guard is not.
type Guard struct {
	resolver requestResolver
	logger   *slog.Logger
}

// NewGuard constructs a route guard around the resolver.
func NewGuard(resolver requestResolver, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{resolver: resolver, logger: logger}
}

// RequireAdmin wraps a handler so only requests resolving to an admin
// identity proceed. Resolution panics never propagate raw: they surface as a
// structured 500.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolution, err := g.resolve(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeServerError, "authentication failed unexpectedly")
			return
		}
		if !resolution.Authenticated() {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		if !resolution.Admin() {
			writeError(w, http.StatusForbidden, codeForbidden, "admin privileges required")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyResolution{}, resolution)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Guard) resolve(r *http.Request) (resolution domain.Resolution, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("resolution panic", slog.Any("error", rec), slog.String("path", r.URL.Path))
			err = fmt.Errorf("resolver panic: %v", rec)
		}
	}()
	return g.resolver.Resolve(r), nil
}

type ctxKeyResolution struct{}

// resolutionFromContext returns the resolution attached by the guard.
func resolutionFromContext(ctx context.Context) (domain.Resolution, bool) {
	resolution, ok := ctx.Value(ctxKeyResolution{}).(domain.Resolution)
	if !ok || resolution.Identity == nil {
		return domain.Resolution{}, false
	}
	return resolution, true
}

// currentIdentity returns the authenticated identity for the request.
func currentIdentity(ctx context.Context) (*domain.Identity, bool) {
	resolution, ok := resolutionFromContext(ctx)
	if !ok {
		return nil, false
	}
	return resolution.Identity, true
}
