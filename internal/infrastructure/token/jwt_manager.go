package token

import (
	"fmt"
	"time"

	domain "lotusspa/backend/internal/domain/auth"
	usecase "lotusspa/backend/internal/usecase/auth"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of an issued admin token.
const TokenTTL = 24 * time.Hour

// JWTManager issues, verifies, and decodes signed admin tokens.
type JWTManager struct {
	secret  []byte
	issuer  string
	nowFunc func() time.Time
}

// NewJWTManager constructs a manager with the provided secret. An empty
// secret is tolerated here so construction stays infallible; Sign and Verify
// refuse to operate until one is configured.
func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{
		secret:  []byte(secret),
		issuer:  issuer,
		nowFunc: time.Now,
	}
}

// Ensure JWTManager implements the TokenCodec interface.
var _ usecase.TokenCodec = (*JWTManager)(nil)

// Claims represents token claims carrying the principal's identity.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) identity() domain.Identity {
	return domain.Identity{
		ID:    c.UserID,
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
	}
}

// Sign creates a signed JWT embedding the identity with a 24h expiry.
func (m *JWTManager) Sign(identity domain.Identity) (string, error) {
	if len(m.secret) == 0 {
		return "", domain.ErrSecretMissing
	}

	now := m.nowFunc().UTC()
	claims := Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		Name:   identity.Name,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify cryptographically validates signature and expiry, returning the
// embedded identity. All validation failures wrap ErrTokenInvalid.
func (m *JWTManager) Verify(tokenString string) (domain.Identity, error) {
	if len(m.secret) == 0 {
		return domain.Identity{}, domain.ErrSecretMissing
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.nowFunc))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.Identity{}, domain.ErrTokenInvalid
	}
	return claims.identity(), nil
}

// Decode parses the token payload without checking the signature. It never
// establishes trust on its own: callers must pair it with a role check and
// treat the result as provisional.
func (m *JWTManager) Decode(tokenString string) (domain.Identity, bool) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return domain.Identity{}, false
	}
	return claims.identity(), true
}
