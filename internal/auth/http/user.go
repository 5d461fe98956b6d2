package http

import (
	"encoding/json"
	"net/http"

	"github.com/cliptide/cliptide/internal/auth/domain"
	"github.com/cliptide/cliptide/internal/auth/service"
	"github.com/cliptide/cliptide/pkg/httpx"
)

type UserHandler struct {
	Users *service.UserService
}

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	CoverURL    string `json:"coverUrl"`
}

// HandleRegister serves POST /v1/auth/register.
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidRequest.Write(w)
		return
	}

	profile, err := h.Users.Register(r.Context(), service.RegisterParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]domain.Profile{"user": profile})
}

// HandleMe serves GET /v1/auth/me. Gated; the profile was already resolved
// and sanitized by the request gate.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, ok := domain.ProfileFromContext(r.Context())
	if !ok {
		errMissingToken.Write(w)
		return
	}
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]domain.Profile{"user": profile})
}
