package httpserver

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	authusecase "lotusspa/backend/internal/usecase/auth"
)

// loginPath is where unauthenticated admin UI navigations are sent.
const loginPath = "/admin/login"

// Gate is the edge middleware in front of routing for admin-prefixed paths.
// It runs a decode-only check: cheap, tolerant, and explicitly not the
// enforcement point. A structurally broken token passes through (fail-open)
// and the downstream route guard makes the authoritative decision. Its only
// hard block is the complete absence of a token on an admin path.
type Gate struct {
	tokens authusecase.TokenCodec
	logger *slog.Logger

	// secureCookies mirrors the Secure attribute used by the login route so
	// a re-persisted header token gets identical cookie attributes.
	secureCookies bool
}

// NewGate constructs the edge gate.
func NewGate(tokens authusecase.TokenCodec, secureCookies bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tokens: tokens, logger: logger, secureCookies: secureCookies}
}

type pathClass int

const (
	pathPublic pathClass = iota
	pathAdminAPI
	pathAdminUI
)

func classifyPath(path string) pathClass {
	switch {
	case path == loginPath || strings.HasPrefix(path, loginPath+"/"):
		return pathPublic
	case path == "/api/admin" || strings.HasPrefix(path, "/api/admin/"):
		return pathAdminAPI
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return pathAdminUI
	default:
		return pathPublic
	}
}

// Handler wraps the router with the gate's check.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := classifyPath(r.URL.Path)
		if class == pathPublic {
			next.ServeHTTP(w, r)
			return
		}

		token := authusecase.TokenFromRequest(r)
		if token == "" {
			g.block(w, r, class)
			return
		}

		identity, ok := g.tokens.Decode(token)
		if !ok {
			// Undecodable token: let it through and leave the decision to the
			// route guard. Blocking here would take navigation down whenever
			// token infrastructure degrades. No cookie is written for a token
			// that did not decode.
			g.logger.Warn("gate: token decode failed, passing through",
				slog.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
			return
		}
		if identity.Role == "" {
			g.logger.Warn("gate: token missing role claim",
				slog.String("path", r.URL.Path),
				slog.String("user_id", identity.ID))
		}

		g.persistHeaderToken(w, r, token)
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) block(w http.ResponseWriter, r *http.Request, class pathClass) {
	if class == pathAdminAPI {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	target := url.URL{Path: loginPath}
	query := url.Values{}
	query.Set("callbackUrl", r.URL.RequestURI())
	target.RawQuery = query.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// persistHeaderToken re-persists a header-supplied token as a cookie so that
// subsequent browser requests carry it automatically.
func (g *Gate) persistHeaderToken(w http.ResponseWriter, r *http.Request, token string) {
	if cookie, err := r.Cookie(authusecase.CookieToken); err == nil && cookie.Value != "" {
		return
	}
	http.SetCookie(w, authCookie(authusecase.CookieToken, token, g.secureCookies))
}
