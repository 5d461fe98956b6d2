package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks a response as non-cacheable. Required for anything carrying
// tokens or credentials.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// Error is a stable API error: a machine-readable code plus a human-readable
// description. It doubles as a Go error so handlers can both return and
// serve it.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"error_description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Write serves the error as a JSON response.
func (e *Error) Write(w http.ResponseWriter) {
	NoCache(w)
	WriteJSON(w, e.Status, e)
}

// NewError builds an Error for ad-hoc use; prefer the predefined values in
// the handler packages for anything a client is expected to match on.
func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}
