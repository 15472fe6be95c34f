package auth

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
	// ErrTokenInvalid means a supplied token cannot be validated.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrSecretMissing means no signing secret was configured. Signing and
	// verification must refuse to operate rather than fall back to a default.
	ErrSecretMissing = errors.New("signing secret not configured")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the provided role is not supported.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPasswordMismatch indicates the current password is incorrect.
	ErrPasswordMismatch = errors.New("current password does not match")
	// ErrPasswordUnchanged indicates the new password matches the current one.
	ErrPasswordUnchanged = errors.New("new password must be different from current password")
)

// UserRole identifies the privileges assigned to a user.
type UserRole string

const (
	// RoleUser represents a standard application user.
	RoleUser UserRole = "user"
	// RoleAdmin represents an administrative user.
	RoleAdmin UserRole = "admin"
)

// User models the credential record persisted in storage.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         UserRole
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the principal view of the user, without credentials.
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}

// Identity is the resolved principal for the current request. It is built
// fresh during resolution and discarded at request end; nothing caches it
// across requests.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
// Role comparison is case-insensitive throughout the auth core.
func (i Identity) IsAdmin() bool {
	return strings.EqualFold(i.Role, string(RoleAdmin))
}

// Trust grades how an identity was established. Callers must branch on the
// tier instead of treating every resolved identity as fully verified.
type Trust int

const (
	// TrustNone means no identity could be established.
	TrustNone Trust = iota
	// TrustDecoded means the token payload parsed and carried the admin role,
	// but its signature did not verify. Degraded confidence.
	TrustDecoded
	// TrustSession means the identity came from the HMAC fallback session pair.
	TrustSession
	// TrustVerified means the token signature and expiry checked out.
	TrustVerified
)

func (t Trust) String() string {
	switch t {
	case TrustDecoded:
		return "decoded"
	case TrustSession:
		return "session"
	case TrustVerified:
		return "verified"
	default:
		return "none"
	}
}

// Resolution is the outcome of resolving a request's credential material.
type Resolution struct {
	Identity *Identity
	Trust    Trust
}

// Authenticated reports whether any identity was established.
func (r Resolution) Authenticated() bool {
	return r.Identity != nil && r.Trust != TrustNone
}

// Admin reports whether an identity was established and holds the admin role.
func (r Resolution) Admin() bool {
	return r.Authenticated() && r.Identity.IsAdmin()
}
