package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	domain "lotusspa/backend/internal/domain/auth"
)

// Cookie names used by the admin auth flows.
const (
	// CookieToken carries the signed admin token.
	CookieToken = "admin_token"
	// CookieSession and CookieSessionData carry the HMAC fallback pair.
	CookieSession     = "admin_session"
	CookieSessionData = "admin_session_data"
)

// CookieMaxAge is the lifetime applied to every auth cookie.
const CookieMaxAge = 24 * time.Hour

// Resolver turns a request's credential material into a Resolution. It is the
// single authoritative entry point: route guards and status endpoints all go
// through it rather than inspecting cookies ad hoc.
//
// Resolution order, first success wins:
//  1. token from the admin cookie, else the Authorization bearer header
//  2. verified token (full trust)
//  3. decoded-but-unverified token whose role is admin (degraded trust,
//     accepted so a rotated or misconfigured signing key does not lock
//     operators out; every downgrade is logged)
//  4. the HMAC fallback session cookie pair
type Resolver struct {
	tokens TokenCodec
	forge  SessionForge
	logger *slog.Logger
}

// NewResolver constructs a resolver.
func NewResolver(tokens TokenCodec, forge SessionForge, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		tokens: tokens,
		forge:  forge,
		logger: logger,
	}
}

// Resolve produces the request's resolution. It never returns an error:
// every failure collapses to an unauthenticated resolution.
func (r *Resolver) Resolve(req *http.Request) domain.Resolution {
	if token := TokenFromRequest(req); token != "" {
		if resolution, ok := r.resolveToken(token); ok {
			return resolution
		}
	}

	sessionID, sessionData := sessionPairFromRequest(req)
	if sessionID != "" && sessionData != "" {
		if identity, ok := r.forge.Validate(sessionID, sessionData); ok {
			return domain.Resolution{Identity: &identity, Trust: domain.TrustSession}
		}
		r.logger.Debug("fallback session rejected")
	}

	return domain.Resolution{}
}

func (r *Resolver) resolveToken(token string) (domain.Resolution, bool) {
	decoded, ok := r.tokens.Decode(token)
	if !ok {
		// Structurally broken token: fall through to the session pair.
		return domain.Resolution{}, false
	}

	if identity, err := r.tokens.Verify(token); err == nil {
		return domain.Resolution{Identity: &identity, Trust: domain.TrustVerified}, true
	} else if decoded.IsAdmin() {
		// Signature did not check out but the payload parses and claims the
		// admin role. Accept at degraded trust so that a key rotation does not
		// take the back office down; the downgrade is always visible in logs.
		r.logger.Warn("token verification failed, accepting decoded identity",
			slog.String("user_id", decoded.ID),
			slog.String("error", err.Error()),
		)
		return domain.Resolution{Identity: &decoded, Trust: domain.TrustDecoded}, true
	}

	return domain.Resolution{}, false
}

// TokenFromRequest extracts the admin token from the request, preferring the
// cookie over the Authorization header when both are present.
func TokenFromRequest(req *http.Request) string {
	if cookie, err := req.Cookie(CookieToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(req.Header.Get("Authorization"))
}

func sessionPairFromRequest(req *http.Request) (sessionID, sessionData string) {
	if cookie, err := req.Cookie(CookieSession); err == nil {
		sessionID = cookie.Value
	}
	if cookie, err := req.Cookie(CookieSessionData); err == nil {
		sessionData = cookie.Value
	}
	return sessionID, sessionData
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
