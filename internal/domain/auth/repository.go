package auth

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for credential records.
// The auth core only ever reads records (lookup by id or email) or records a
// last-login timestamp as a login side effect; user lifecycle belongs to the
// administrative workflows.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	UpdateLastLogin(ctx context.Context, id string, loginAt time.Time) error
}

// UserFilter allows narrowing user queries.
type UserFilter struct {
	Role UserRole
}
