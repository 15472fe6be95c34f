// Package session implements the stateless HMAC fallback session used when
// token signature verification is unavailable. It is a temporary,
// emergency-only mechanism: a static shared key stands in for the signing
// secret, trading cryptographic strength for availability.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "lotusspa/backend/internal/domain/auth"
	usecase "lotusspa/backend/internal/usecase/auth"
)

// SessionTTL is the fixed lifetime of a fallback session.
const SessionTTL = 24 * time.Hour

// Forge derives and validates fallback session pairs. Validation is a pure
// function of the key and current time, so no session state is stored
// server-side.
type Forge struct {
	key     []byte
	nowFunc func() time.Time
}

// NewForge constructs a forge keyed with the configured session key.
func NewForge(key string) *Forge {
	return &Forge{
		key:     []byte(key),
		nowFunc: time.Now,
	}
}

// Ensure Forge implements the SessionForge interface.
var _ usecase.SessionForge = (*Forge)(nil)

// DeriveHash computes the keyed hash for a session timestamp. Deterministic:
// identical inputs always yield identical output, which is what allows
// re-verification without server-side state.
func (f *Forge) DeriveHash(timestamp int64) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write(f.key)
	return hex.EncodeToString(mac.Sum(nil))
}

// Issue produces a session id of the form "<unixMillis>.<hash>" and a
// base64-encoded JSON blob of the identity.
func (f *Forge) Issue(identity domain.Identity) (sessionID, sessionData string) {
	now := f.nowFunc().UnixMilli()
	sessionID = fmt.Sprintf("%d.%s", now, f.DeriveHash(now))

	blob, err := json.Marshal(identity)
	if err != nil {
		// Identity is a plain struct of strings; marshalling cannot fail.
		return "", ""
	}
	return sessionID, base64.StdEncoding.EncodeToString(blob)
}

// Validate checks a session pair and returns the embedded identity. It
// reports false on any structural, expiry, or integrity failure; callers get
// no detail beyond absence of identity.
func (f *Forge) Validate(sessionID, sessionData string) (domain.Identity, bool) {
	parts := strings.Split(sessionID, ".")
	if len(parts) != 2 {
		return domain.Identity{}, false
	}

	timestamp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.Identity{}, false
	}
	if f.nowFunc().UnixMilli()-timestamp >= SessionTTL.Milliseconds() {
		return domain.Identity{}, false
	}

	expected := f.DeriveHash(timestamp)
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return domain.Identity{}, false
	}

	blob, err := base64.StdEncoding.DecodeString(sessionData)
	if err != nil {
		return domain.Identity{}, false
	}
	var identity domain.Identity
	if err := json.Unmarshal(blob, &identity); err != nil {
		return domain.Identity{}, false
	}
	if !identity.IsAdmin() {
		return domain.Identity{}, false
	}
	return identity, true
}
