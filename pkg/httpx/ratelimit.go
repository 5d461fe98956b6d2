package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit describes a token-bucket rate limit.
type Limit struct {
	Rate  rate.Limit
	Burst int
}

// Preset limits. Credential endpoints get the strict limit since every
// request there is a guessing opportunity.
var (
	StrictLimit  = Limit{Rate: rate.Every(6 * time.Second), Burst: 10}
	LenientLimit = Limit{Rate: rate.Every(time.Second), Burst: 60}
)

// RateLimitByIP applies a per-client-IP token bucket. Buckets idle for over
// ten minutes are dropped on the next sweep to bound memory.
func RateLimitByIP(l Limit) Middleware {
	lim := newKeyedLimiter(l)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				NewError(http.StatusTooManyRequests, "rate_limited", "too many requests").Write(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const limiterIdleTTL = 10 * time.Minute

type keyedLimiter struct {
	limit Limit

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyedLimiter(l Limit) *keyedLimiter {
	return &keyedLimiter{
		limit:     l,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := time.Now()
	if now.Sub(k.lastSweep) > limiterIdleTTL {
		for id, b := range k.buckets {
			if now.Sub(b.lastSeen) > limiterIdleTTL {
				delete(k.buckets, id)
			}
		}
		k.lastSweep = now
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit.Rate, k.limit.Burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
