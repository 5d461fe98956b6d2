// Package httpx holds the small HTTP plumbing shared by handlers: middleware
// chaining, JSON responses, session cookies, token extraction and rate
// limiting.
package httpx

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
