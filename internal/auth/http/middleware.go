package http

import (
	"net/http"

	"github.com/cliptide/cliptide/internal/auth/domain"
	"github.com/cliptide/cliptide/internal/auth/service"
	"github.com/cliptide/cliptide/pkg/httpx"
	"github.com/cliptide/cliptide/pkg/jwtx"
	"github.com/cliptide/cliptide/pkg/slogx"
)

// Session cookie names. These are the wire contract with web clients; the
// Authorization header carries the access token for everything else.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// RequireSession is the gate in front of every protected route. It extracts
// the access token (cookie first, then bearer header), verifies it, resolves
// the subject to a live account and attaches the sanitized profile to the
// request context. Any failure rejects the request outright — downstream
// handlers never see a half-authenticated request.
func RequireSession(tokens *jwtx.Issuer, users *service.UserService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			cred := httpx.ExtractToken(r, CookieAccessToken)
			if cred.Source == httpx.SourceNone {
				errMissingToken.Write(w)
				return
			}

			claims, err := tokens.Verify(cred.Token, jwtx.KindAccess)
			if err != nil {
				log.Warn("access token rejected", "source", cred.Source.String(), "err", err)
				writeServiceError(w, r, err)
				return
			}

			// Fails closed: a signed token whose subject is gone (deleted
			// account, stale id) is treated as unauthenticated.
			profile, err := users.GetProfile(ctx, claims.Subject)
			if err != nil {
				log.Warn("token subject did not resolve", "user_id", claims.Subject, "err", err)
				errUnknownIdentity.Write(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithProfile(ctx, profile)))
		})
	}
}
