package runtimectx

import (
	"context"
)

type identityContextKey struct{}

// Identity is the caller a query runs on behalf of.
type Identity struct {
	ID   string
	Role string
}

// AnonymousRole is the role of callers without an identity.
const AnonymousRole = "anonymous"

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// GetIdentity returns the identity on the context, or an anonymous identity.
func GetIdentity(ctx context.Context) Identity {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || identity.Role == "" {
		return Identity{ID: identity.ID, Role: AnonymousRole}
	}
	return identity
}
