package httpserver

import (
	"net/http"

	authusecase "lotusspa/backend/internal/usecase/auth"
)

// authCookie builds a cookie with the attributes shared by every auth cookie:
// HttpOnly, SameSite=Lax, Path=/, 24h lifetime, Secure in production.
func authCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(authusecase.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func setAuthCookies(w http.ResponseWriter, secure bool, result *authusecase.LoginResult) {
	http.SetCookie(w, authCookie(authusecase.CookieToken, result.Token, secure))
	http.SetCookie(w, authCookie(authusecase.CookieSession, result.SessionID, secure))
	http.SetCookie(w, authCookie(authusecase.CookieSessionData, result.SessionData, secure))
}

func clearAuthCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{
		authusecase.CookieToken,
		authusecase.CookieSession,
		authusecase.CookieSessionData,
	} {
		cookie := authCookie(name, "", secure)
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}
