package http

import (
	"errors"
	"net/http"

	"github.com/cliptide/cliptide/internal/auth/service"
	"github.com/cliptide/cliptide/pkg/httpx"
	"github.com/cliptide/cliptide/pkg/jwtx"
	"github.com/cliptide/cliptide/pkg/slogx"
)

// Stable API error vocabulary. Codes are part of the wire contract; clients
// and log pipelines match on them.
var (
	errInvalidRequest = httpx.NewError(http.StatusBadRequest,
		"invalid_request", "the request is malformed or missing required fields")
	errInvalidCredentials = httpx.NewError(http.StatusUnauthorized,
		"invalid_credentials", "incorrect identifier or password")
	errAccountExists = httpx.NewError(http.StatusConflict,
		"account_exists", "username or email already registered")
	errMissingToken = httpx.NewError(http.StatusUnauthorized,
		"missing_token", "no access credential on request")
	errTokenExpired = httpx.NewError(http.StatusUnauthorized,
		"token_expired", "credential has expired")
	errInvalidToken = httpx.NewError(http.StatusUnauthorized,
		"invalid_token", "credential failed verification")
	errTokenReused = httpx.NewError(http.StatusUnauthorized,
		"token_reused", "refresh token is no longer valid")
	errUnknownIdentity = httpx.NewError(http.StatusUnauthorized,
		"unknown_identity", "credential subject no longer exists")
	errServerError = httpx.NewError(http.StatusInternalServerError,
		"server_error", "internal error")
)

// writeServiceError maps service/jwtx sentinels onto the API vocabulary.
// Store failures deliberately surface as server_error, never as a
// credential failure.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		errInvalidCredentials.Write(w)
	case errors.Is(err, service.ErrMissingToken):
		errMissingToken.Write(w)
	case errors.Is(err, service.ErrTokenReused):
		errTokenReused.Write(w)
	case errors.Is(err, service.ErrUnknownIdentity):
		errUnknownIdentity.Write(w)
	case errors.Is(err, service.ErrAccountExists):
		errAccountExists.Write(w)
	case errors.Is(err, service.ErrInvalidArgument):
		httpx.NewError(http.StatusBadRequest, "invalid_request", err.Error()).Write(w)
	case errors.Is(err, jwtx.ErrExpired):
		errTokenExpired.Write(w)
	case errors.Is(err, jwtx.ErrMalformed):
		errInvalidToken.Write(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		errServerError.Write(w)
	}
}
