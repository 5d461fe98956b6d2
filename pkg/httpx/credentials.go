package httpx

import (
	"net/http"
	"strings"
	"time"
)

// TokenSource records where a credential was found, mostly so tests and logs
// can assert on the transport actually used.
type TokenSource int

const (
	SourceNone TokenSource = iota
	SourceCookie
	SourceHeader
	SourceBody
)

func (s TokenSource) String() string {
	switch s {
	case SourceCookie:
		return "cookie"
	case SourceHeader:
		return "header"
	case SourceBody:
		return "body"
	default:
		return "none"
	}
}

// Credential is the result of extracting a token from a request.
type Credential struct {
	Token  string
	Source TokenSource
}

// ExtractToken pulls a bearer credential from the request, preferring the
// named cookie over the Authorization header.
func ExtractToken(r *http.Request, cookieName string) Credential {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return Credential{Token: c.Value, Source: SourceCookie}
	}

	authz := r.Header.Get("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "Bearer ") {
		if token := strings.TrimSpace(authz[7:]); token != "" {
			return Credential{Token: token, Source: SourceHeader}
		}
	}

	return Credential{}
}

// SetSessionCookie writes an httpOnly token cookie. The secure flag comes
// from config so local development over plain HTTP keeps working.
func SetSessionCookie(w http.ResponseWriter, name, value string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires a token cookie.
func ClearSessionCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
