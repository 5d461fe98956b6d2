package domain

import "context"

type profileKey struct{}

// ContextWithProfile attaches the authenticated, sanitized identity to a
// request context. Owned by the request gate; discarded at request end.
func ContextWithProfile(ctx context.Context, p Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFromContext returns the authenticated identity, if the request
// passed the gate.
func ProfileFromContext(ctx context.Context) (Profile, bool) {
	p, ok := ctx.Value(profileKey{}).(Profile)
	return p, ok
}
