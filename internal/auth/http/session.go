package http

import (
	"encoding/json"
	"net/http"

	"github.com/cliptide/cliptide/internal/auth/domain"
	"github.com/cliptide/cliptide/internal/auth/service"
	"github.com/cliptide/cliptide/pkg/httpx"
	"github.com/cliptide/cliptide/pkg/slogx"
)

// SessionHandler serves the session lifecycle endpoints. Token material
// travels as httpOnly cookies; the response body additionally carries the
// pair for native clients that prefer the Authorization header.
type SessionHandler struct {
	Sessions     *service.SessionService
	CookieSecure bool
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type sessionResponse struct {
	User   domain.Profile   `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// HandleLogin serves POST /v1/auth/login.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidRequest.Write(w)
		return
	}
	if req.Identifier == "" || req.Password == "" {
		errInvalidRequest.Write(w)
		return
	}

	profile, pair, err := h.Sessions.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{User: profile, Tokens: pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// HandleRefresh serves POST /v1/auth/refresh. The refresh token comes from
// the cookie when present, with the JSON body as fallback for clients that
// don't hold cookies.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	presented := ""
	source := httpx.SourceNone
	if c, err := r.Cookie(CookieRefreshToken); err == nil && c.Value != "" {
		presented, source = c.Value, httpx.SourceCookie
	} else if r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
			presented, source = req.RefreshToken, httpx.SourceBody
		}
	}
	if presented == "" {
		errMissingToken.Write(w)
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), presented)
	if err != nil {
		slogx.FromContext(r.Context()).Info("refresh rejected", "source", source.String())
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookies(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]domain.TokenPair{"tokens": pair})
}

// HandleLogout serves POST /v1/auth/logout. Gated: the request carries a
// valid access token, so the identity comes from context.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	profile, ok := domain.ProfileFromContext(r.Context())
	if !ok {
		errMissingToken.Write(w)
		return
	}

	if err := h.Sessions.Logout(r.Context(), profile.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// HandleChangePassword serves POST /v1/auth/change-password. Gated. The old
// password is re-verified even though the caller holds a valid access token.
// Changing the password also ends the active session on every device.
func (h *SessionHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	profile, ok := domain.ProfileFromContext(r.Context())
	if !ok {
		errMissingToken.Write(w)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidRequest.Write(w)
		return
	}
	if req.OldPassword == "" || len(req.NewPassword) < 8 {
		errInvalidRequest.Write(w)
		return
	}

	if err := h.Sessions.ChangePassword(r.Context(), profile.ID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}

func (h *SessionHandler) setSessionCookies(w http.ResponseWriter, pair domain.TokenPair) {
	httpx.SetSessionCookie(w, CookieAccessToken, pair.AccessToken, pair.AccessExpiresAt, h.CookieSecure)
	httpx.SetSessionCookie(w, CookieRefreshToken, pair.RefreshToken, pair.RefreshExpiresAt, h.CookieSecure)
}

func (h *SessionHandler) clearSessionCookies(w http.ResponseWriter) {
	httpx.ClearSessionCookie(w, CookieAccessToken, h.CookieSecure)
	httpx.ClearSessionCookie(w, CookieRefreshToken, h.CookieSecure)
}
