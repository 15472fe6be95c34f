package auth

import (
	domain "lotusspa/backend/internal/domain/auth"
)

// TokenCodec abstracts signed-token issuance, verification, and signature-blind
// decoding. Decode carries no trust on its own; callers must pair it with a
// role check and treat the result as provisional.
type TokenCodec interface {
	Sign(identity domain.Identity) (string, error)
	Verify(token string) (domain.Identity, error)
	Decode(token string) (domain.Identity, bool)
}

// SessionForge abstracts the stateless HMAC fallback session mechanism.
type SessionForge interface {
	Issue(identity domain.Identity) (sessionID, sessionData string)
	Validate(sessionID, sessionData string) (domain.Identity, bool)
}
