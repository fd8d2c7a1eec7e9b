// Package identity carries the authenticated caller through a request context.
//
// The values here come from the access token and may be stale; services that
// act on user data reload the authoritative record by Username.
package identity

import "context"

// Identity is the lightweight, token-derived view of the caller.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

type ctxKey struct{}

// With returns a copy of ctx carrying id.
func With(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the identity stored in ctx, if any.
func From(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && id.Username != ""
}
