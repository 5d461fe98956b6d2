package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/cliptide/cliptide/internal/auth/http"
	"github.com/cliptide/cliptide/internal/auth/service"
	"github.com/cliptide/cliptide/internal/auth/store/drivers/sqlite"
	"github.com/cliptide/cliptide/pkg/cryptox"
	"github.com/cliptide/cliptide/pkg/jwtx"
)

var testHashParams = cryptox.Params{
	Memory:      8,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

func newTestRouter(t *testing.T, tokenCfg jwtx.Config) (*httpapi.Router, *jwtx.Issuer) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	if tokenCfg.Issuer == "" {
		tokenCfg.Issuer = "cliptide-test"
	}
	if tokenCfg.AccessSecret == nil {
		tokenCfg.AccessSecret = []byte("test-access-secret")
	}
	if tokenCfg.RefreshSecret == nil {
		tokenCfg.RefreshSecret = []byte("test-refresh-secret")
	}
	tokens, err := jwtx.NewIssuer(tokenCfg)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := httpapi.NewRouter(tokens, "test", st, logger)
	r.Sessions = &service.SessionService{Store: st, Tokens: tokens, Hash: testHashParams}
	r.Users = &service.UserService{Store: st, Hash: testHashParams}
	r.ApplyRoutes()
	return r, tokens
}

var remotePort = 10000

// do issues a request from a unique client address so the per-IP rate
// limiter never interferes with the scenario under test.
func do(r *httpapi.Router, req *http.Request) *httptest.ResponseRecorder {
	remotePort++
	req.RemoteAddr = fmt.Sprintf("203.0.113.%d:%d", remotePort%200+1, remotePort)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonReq(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func registerAndLogin(t *testing.T, r *httpapi.Router, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	rec := do(r, jsonReq("POST", "/v1/auth/register", map[string]string{
		"username":    username,
		"email":       username + "@example.com",
		"password":    password,
		"displayName": username,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(r, jsonReq("POST", "/v1/auth/login", map[string]string{
		"identifier": username,
		"password":   password,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func cookieValue(t *testing.T, rec *httptest.ResponseRecorder, name string) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	t.Fatalf("cookie %q not set", name)
	return ""
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{})

	rec := registerAndLogin(t, r, "alice", "password123")

	t.Run("sets session cookies", func(t *testing.T) {
		assert.NotEmpty(t, cookieValue(t, rec, httpapi.CookieAccessToken))
		assert.NotEmpty(t, cookieValue(t, rec, httpapi.CookieRefreshToken))
		for _, c := range rec.Result().Cookies() {
			assert.True(t, c.HttpOnly, "cookie %s must be httpOnly", c.Name)
		}
	})

	t.Run("body carries sanitized profile", func(t *testing.T) {
		var body struct {
			User map[string]any `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "alice", body.User["username"])
		assert.NotContains(t, body.User, "passwordHash")
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("wrong password leaves no cookies", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/login", map[string]string{
			"identifier": "alice",
			"password":   "wrong",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("unknown identifier gets the same answer", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/login", map[string]string{
			"identifier": "nobody",
			"password":   "password123",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/login", map[string]string{}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_request", errorCode(t, rec))
	})
}

func TestRequestGate(t *testing.T) {
	r, tokens := newTestRouter(t, jwtx.Config{})
	login := registerAndLogin(t, r, "bob", "password123")
	access := cookieValue(t, login, httpapi.CookieAccessToken)

	t.Run("no credential", func(t *testing.T) {
		rec := do(r, httptest.NewRequest("GET", "/v1/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "missing_token", errorCode(t, rec))
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := do(r, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"username":"bob"`)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: httpapi.CookieAccessToken, Value: access})
		rec := do(r, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+access+"x")
		rec := do(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", errorCode(t, rec))
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh := cookieValue(t, login, httpapi.CookieRefreshToken)
		req := httptest.NewRequest("GET", "/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := do(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", errorCode(t, rec))
	})

	t.Run("subject no longer resolves", func(t *testing.T) {
		ghost, _, err := tokens.Issue(jwtx.KindAccess, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+ghost)
		rec := do(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unknown_identity", errorCode(t, rec))
	})
}

func TestExpiredAccessToken(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{AccessTTL: -time.Minute})
	login := registerAndLogin(t, r, "carol", "password123")

	req := httptest.NewRequest("GET", "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookieValue(t, login, httpapi.CookieAccessToken))
	rec := do(r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_expired", errorCode(t, rec))
}

func TestRefreshEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{})
	login := registerAndLogin(t, r, "dave", "password123")
	refresh := cookieValue(t, login, httpapi.CookieRefreshToken)

	t.Run("via cookie", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: httpapi.CookieRefreshToken, Value: refresh})
		rec := do(r, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		next := cookieValue(t, rec, httpapi.CookieRefreshToken)
		assert.NotEmpty(t, next)
		assert.NotEmpty(t, cookieValue(t, rec, httpapi.CookieAccessToken))

		// The consumed token is rejected, this time presented in the body.
		rec = do(r, jsonReq("POST", "/v1/auth/refresh", map[string]string{
			"refreshToken": refresh,
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_reused", errorCode(t, rec))

		// The replacement still works.
		rec = do(r, jsonReq("POST", "/v1/auth/refresh", map[string]string{
			"refreshToken": next,
		}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no token anywhere", func(t *testing.T) {
		rec := do(r, httptest.NewRequest("POST", "/v1/auth/refresh", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "missing_token", errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/refresh", map[string]string{
			"refreshToken": "not.a.jwt",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", errorCode(t, rec))
	})
}

func TestExpiredRefreshToken(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{RefreshTTL: -time.Minute})
	login := registerAndLogin(t, r, "erin", "password123")

	rec := do(r, jsonReq("POST", "/v1/auth/refresh", map[string]string{
		"refreshToken": cookieValue(t, login, httpapi.CookieRefreshToken),
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_expired", errorCode(t, rec))
}

func TestLogoutEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{})
	login := registerAndLogin(t, r, "frank", "password123")
	access := cookieValue(t, login, httpapi.CookieAccessToken)
	refresh := cookieValue(t, login, httpapi.CookieRefreshToken)

	req := httptest.NewRequest("POST", "/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := do(r, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		assert.Less(t, c.MaxAge, 0, "cookie %s must be expired", c.Name)
		assert.Empty(t, c.Value)
	}

	// The stored refresh token is gone; rotation fails.
	rec = do(r, jsonReq("POST", "/v1/auth/refresh", map[string]string{
		"refreshToken": refresh,
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_reused", errorCode(t, rec))
}

func TestChangePasswordEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{})
	login := registerAndLogin(t, r, "grace", "old password")
	access := cookieValue(t, login, httpapi.CookieAccessToken)
	refresh := cookieValue(t, login, httpapi.CookieRefreshToken)

	t.Run("requires a session", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/change-password", map[string]string{
			"oldPassword": "old password",
			"newPassword": "new password",
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong old password", func(t *testing.T) {
		req := jsonReq("POST", "/v1/auth/change-password", map[string]string{
			"oldPassword": "not it",
			"newPassword": "new password",
		})
		req.Header.Set("Authorization", "Bearer "+access)
		rec := do(r, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", errorCode(t, rec))
	})

	t.Run("success invalidates the session", func(t *testing.T) {
		req := jsonReq("POST", "/v1/auth/change-password", map[string]string{
			"oldPassword": "old password",
			"newPassword": "new password",
		})
		req.Header.Set("Authorization", "Bearer "+access)
		rec := do(r, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = do(r, jsonReq("POST", "/v1/auth/refresh", map[string]string{
			"refreshToken": refresh,
		}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token_reused", errorCode(t, rec))

		rec = do(r, jsonReq("POST", "/v1/auth/login", map[string]string{
			"identifier": "grace",
			"password":   "new password",
		}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{})

	rec := do(r, jsonReq("POST", "/v1/auth/register", map[string]string{
		"username":    "heidi",
		"email":       "heidi@example.com",
		"password":    "password123",
		"displayName": "Heidi",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("duplicate", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/register", map[string]string{
			"username":    "heidi",
			"email":       "heidi2@example.com",
			"password":    "password123",
			"displayName": "Heidi",
		}))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "account_exists", errorCode(t, rec))
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := do(r, jsonReq("POST", "/v1/auth/register", map[string]string{
			"username": "ivan",
		}))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_request", errorCode(t, rec))
	})
}

func TestSystemEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, jwtx.Config{})

	rec := do(r, httptest.NewRequest("GET", "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(r, httptest.NewRequest("GET", "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
