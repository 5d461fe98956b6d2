package http

import (
	"net/http"
	"time"

	"github.com/cliptide/cliptide/internal/auth/store"
	"github.com/cliptide/cliptide/pkg/httpx"
)

// LivezHandler reports process liveness.
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"version":    version,
			"uptime_sec": int(time.Since(startTime).Seconds()),
		})
	})
}

// ReadyzHandler reports readiness, which for this service means the
// credential store answers a ping.
func ReadyzHandler(st store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "store ping failed",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
