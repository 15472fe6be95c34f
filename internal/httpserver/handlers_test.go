package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lotusspa/backend/internal/config"
	domain "lotusspa/backend/internal/domain/auth"
	"lotusspa/backend/internal/infrastructure/session"
	"lotusspa/backend/internal/infrastructure/token"
	authusecase "lotusspa/backend/internal/usecase/auth"
	userusecase "lotusspa/backend/internal/usecase/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memRepo is an in-memory credential store for end-to-end handler tests.
type memRepo struct {
	users map[string]*domain.User
}

func (r *memRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailExists
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memRepo) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
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

func (r *memRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = at
	return nil
}

func (r *memRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

const (
	testSecret     = "test-signing-secret"
	testSessionKey = "test-session-key"
	adminPassword  = "correct horse"
)

func newTestServer(t *testing.T) (*Server, *memRepo) {
	t.Helper()
	return newTestServerEnv(t, "development")
}

func newTestServerEnv(t *testing.T, env string) (*Server, *memRepo) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &memRepo{users: map[string]*domain.User{
		"u1": {
			ID:           "u1",
			Email:        "a@b.com",
			Name:         "A",
			Role:         domain.RoleAdmin,
			PasswordHash: string(hash),
		},
	}}

	tokens := token.NewJWTManager(testSecret, "lotusspa")
	forge := session.NewForge(testSessionKey)
	logger := discardLogger()

	srv := NewServer(Options{
		Config: config.Config{
			Env:             env,
			HTTPPort:        ":0",
			AllowedOrigins:  []string{"*"},
			ReadTimeoutSec:  5,
			WriteTimeoutSec: 5,
			IdleTimeoutSec:  5,
		},
		AuthService: authusecase.NewService(repo, tokens, forge),
		UserService: userusecase.NewService(repo),
		Resolver:    authusecase.NewResolver(tokens, forge, logger),
		Tokens:      tokens,
		Logger:      logger,
	})
	return srv, repo
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, srv *Server, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader(`{"email":"` + email + `","password":"` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	return doRequest(srv, req)
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLoginSetsCookiesAndReturnsIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := loginAs(t, srv, "a@b.com", adminPassword)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	require.True(t, body.Success)
	data := body.Data.(map[string]any)
	assert.Equal(t, "u1", data["id"])
	assert.Equal(t, "a@b.com", data["email"])
	assert.Equal(t, "admin", data["role"])
	assert.NotEmpty(t, data["token"])

	tokenCookie := cookieByName(t, rec, authusecase.CookieToken)
	assert.True(t, tokenCookie.HttpOnly)
	assert.False(t, tokenCookie.Secure, "secure only in production")
	assert.Equal(t, http.SameSiteLaxMode, tokenCookie.SameSite)
	assert.Equal(t, "/", tokenCookie.Path)
	assert.Equal(t, 86400, tokenCookie.MaxAge)

	cookieByName(t, rec, authusecase.CookieSession)
	cookieByName(t, rec, authusecase.CookieSessionData)
}

func TestLoginSetsSecureCookiesInProduction(t *testing.T) {
	srv, _ := newTestServerEnv(t, "production")

	rec := loginAs(t, srv, "a@b.com", adminPassword)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, name := range []string{authusecase.CookieToken, authusecase.CookieSession, authusecase.CookieSessionData} {
		assert.True(t, cookieByName(t, rec, name).Secure, "%s must be Secure in production", name)
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	srv, repo := newTestServer(t)

	body := strings.NewReader(`{"email":"New@B.com","password":"pw123456","name":"New"}`)
	rec := doRequest(srv, httptest.NewRequest(http.MethodPost, "/api/auth/register", body))
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "new@b.com", data["email"])
	assert.Equal(t, "user", data["role"])

	stored, err := repo.GetByEmail(context.Background(), "new@b.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, stored.Role)

	// Registering the same address again conflicts.
	body = strings.NewReader(`{"email":"new@b.com","password":"other","name":"Dup"}`)
	rec = doRequest(srv, httptest.NewRequest(http.MethodPost, "/api/auth/register", body))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, codeConflict, decodeEnvelope(t, rec).Error.Code)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	body := strings.NewReader(`{"email":"","password":"pw"}`)
	rec := doRequest(srv, httptest.NewRequest(http.MethodPost, "/api/auth/register", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeInvalidRequest, decodeEnvelope(t, rec).Error.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := loginAs(t, srv, "a@b.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeInvalidLogin, decodeEnvelope(t, rec).Error.Code)
}

func TestGuardedRouteWithLoginCookie(t *testing.T) {
	srv, _ := newTestServer(t)

	login := loginAs(t, srv, "a@b.com", adminPassword)
	require.Equal(t, http.StatusOK, login.Code)
	tokenCookie := cookieByName(t, login, authusecase.CookieToken)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(tokenCookie)
	rec := doRequest(srv, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The same request without the cookie is blocked at the edge.
	rec = doRequest(srv, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, codeUnauthorized, decodeEnvelope(t, rec).Error.Code)
}

func TestMeReportsTrustTier(t *testing.T) {
	srv, _ := newTestServer(t)

	login := loginAs(t, srv, "a@b.com", adminPassword)
	tokenCookie := cookieByName(t, login, authusecase.CookieToken)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(tokenCookie)
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "verified", data["trust"])
}

func TestDegradedTrustAfterKeyRotation(t *testing.T) {
	srv, _ := newTestServer(t)

	// A token signed under a previous secret: verification fails, but the
	// payload still decodes to an admin identity.
	oldSigner := token.NewJWTManager("rotated-away-secret", "lotusspa")
	stale, err := oldSigner.Sign(domain.Identity{ID: "u1", Email: "a@b.com", Name: "A", Role: "admin"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: authusecase.CookieToken, Value: stale})
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "decoded", data["trust"])
}

func TestFallbackSessionPair(t *testing.T) {
	srv, _ := newTestServer(t)

	forge := session.NewForge(testSessionKey)
	id, data := forge.Issue(domain.Identity{ID: "u1", Email: "a@b.com", Name: "A", Role: "admin"})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: authusecase.CookieSession, Value: id})
	req.AddCookie(&http.Cookie{Name: authusecase.CookieSessionData, Value: data})
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "session", payload["trust"])
}

func TestLogoutClearsCookies(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	assert.True(t, cleared[authusecase.CookieToken])
	assert.True(t, cleared[authusecase.CookieSession])
	assert.True(t, cleared[authusecase.CookieSessionData])
}

func TestAdminUserCRUD(t *testing.T) {
	srv, repo := newTestServer(t)

	login := loginAs(t, srv, "a@b.com", adminPassword)
	tokenCookie := cookieByName(t, login, authusecase.CookieToken)
	authed := func(method, target string, body string) *httptest.ResponseRecorder {
		var reader *strings.Reader
		if body == "" {
			reader = strings.NewReader("")
		} else {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, target, reader)
		req.AddCookie(tokenCookie)
		return doRequest(srv, req)
	}

	rec := authed(http.MethodPost, "/api/admin/users", `{"email":"new@b.com","name":"New","password":"pw123456","role":"user"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data struct {
			User struct {
				ID string `json:"ID"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotEmpty(t, created.Data.User.ID)

	rec = authed(http.MethodGet, "/api/admin/users/"+created.Data.User.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = authed(http.MethodPatch, "/api/admin/users/"+created.Data.User.ID, `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = authed(http.MethodDelete, "/api/admin/users/"+created.Data.User.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := repo.GetByID(context.Background(), created.Data.User.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
