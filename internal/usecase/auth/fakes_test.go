package auth

import (
	"context"
	"time"

	domain "lotusspa/backend/internal/domain/auth"
)

type fakeCodec struct {
	signed         string
	signErr        error
	verifyIdentity domain.Identity
	verifyErr      error
	decodeIdentity domain.Identity
	decodeOK       bool

	lastToken string
}

func (f *fakeCodec) Sign(domain.Identity) (string, error) {
	return f.signed, f.signErr
}

func (f *fakeCodec) Verify(token string) (domain.Identity, error) {
	f.lastToken = token
	if f.verifyErr != nil {
		return domain.Identity{}, f.verifyErr
	}
	return f.verifyIdentity, nil
}

func (f *fakeCodec) Decode(token string) (domain.Identity, bool) {
	f.lastToken = token
	return f.decodeIdentity, f.decodeOK
}

type fakeForge struct {
	sessionID        string
	sessionData      string
	validateIdentity domain.Identity
	validateOK       bool

	gotID   string
	gotData string
}

func (f *fakeForge) Issue(domain.Identity) (string, string) {
	return f.sessionID, f.sessionData
}

func (f *fakeForge) Validate(sessionID, sessionData string) (domain.Identity, bool) {
	f.gotID = sessionID
	f.gotData = sessionData
	return f.validateIdentity, f.validateOK
}

type fakeRepo struct {
	users map[string]*domain.User
}

func newFakeRepo(users ...*domain.User) *fakeRepo {
	repo := &fakeRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeRepo) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id, passwordHash string, updatedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	return nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, id string, loginAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &loginAt
	return nil
}
