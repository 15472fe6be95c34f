package httpserver

import (
	"encoding/json"
	"net/http"
)

// Stable error codes surfaced to API clients.
const (
	codeUnauthorized   = "UNAUTHORIZED"
	codeForbidden      = "FORBIDDEN"
	codeServerError    = "SERVER_ERROR"
	codeInvalidRequest = "INVALID_REQUEST"
	codeInvalidLogin   = "INVALID_CREDENTIALS"
	codeNotFound       = "NOT_FOUND"
	codeConflict       = "CONFLICT"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}
