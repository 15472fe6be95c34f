package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	authdomain "lotusspa/backend/internal/domain/auth"
	authusecase "lotusspa/backend/internal/usecase/auth"
	userusecase "lotusspa/backend/internal/usecase/user"

	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.Post("/renew", s.handleRenewToken)

		r.Group(func(r chi.Router) {
			r.Use(s.guard.RequireAdmin)
			r.Get("/me", s.handleMe)
			r.Post("/change-password", s.handleChangePassword)
		})
	})

	s.router.Route("/api/admin/users", func(r chi.Router) {
		r.Use(s.guard.RequireAdmin)
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/{id}", s.handleGetUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.Patch("/{id}", s.handleUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
		return
	}

	user, err := s.authService.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		if errors.Is(err, authdomain.ErrEmailExists) {
			writeError(w, http.StatusConflict, codeConflict, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}

	writeData(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
		return
	}

	result, err := s.authService.Login(r.Context(), authdomain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, codeInvalidLogin, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, codeServerError, err.Error())
		return
	}

	setAuthCookies(w, s.secureCookies, result)
	writeData(w, http.StatusOK, map[string]any{
		"id":    result.User.ID,
		"email": result.User.Email,
		"name":  result.User.Name,
		"role":  result.User.Role,
		"token": result.Token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookies(w, s.secureCookies)
	writeData(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (s *Server) handleRenewToken(w http.ResponseWriter, r *http.Request) {
	token := authusecase.TokenFromRequest(r)
	if token == "" {
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeError(w, http.StatusBadRequest, codeInvalidRequest, "token required")
			} else {
				writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
			}
			return
		}
		token = strings.TrimSpace(payload.Token)
	}
	if token == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "token required")
		return
	}

	newToken, err := s.authService.RenewToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, authdomain.ErrTokenInvalid) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, codeServerError, err.Error())
		}
		return
	}

	writeData(w, http.StatusOK, map[string]string{"token": newToken})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	resolution, ok := resolutionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"identity": resolution.Identity,
		"trust":    resolution.Trust.String(),
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	var payload struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "current_password and new_password required")
		} else {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
		}
		return
	}

	err := s.authService.ChangePassword(r.Context(), identity.ID, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrPasswordMismatch):
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "current password is incorrect")
		case errors.Is(err, authdomain.ErrPasswordUnchanged):
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		case errors.Is(err, authdomain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context(), userusecase.Filter{
		Role: r.URL.Query().Get("role"),
	})
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidRole) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, codeServerError, err.Error())
		}
		return
	}
	writeData(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "email, password, and role are required")
		} else {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
		}
		return
	}

	user, err := s.userService.Create(r.Context(), userusecase.CreateInput{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrEmailExists):
			writeError(w, http.StatusConflict, codeConflict, err.Error())
		case errors.Is(err, authdomain.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email *string `json:"email"`
		Name  *string `json:"name"`
		Role  *string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "update payload required")
		} else {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid JSON payload")
		}
		return
	}

	user, err := s.userService.Update(r.Context(), chi.URLParam(r, "id"), userusecase.UpdateInput{
		Email: payload.Email,
		Name:  payload.Name,
		Role:  payload.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		case errors.Is(err, authdomain.ErrEmailExists):
			writeError(w, http.StatusConflict, codeConflict, err.Error())
		case errors.Is(err, authdomain.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}
	writeData(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.userService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, codeNotFound, err.Error())
		} else {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, err.Error())
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
