package shared

import "context"

// Identity describes the authenticated principal attached to a request.
type Identity struct {
	PrincipalID int64
	RoleID      int64
}

type identityKey struct{}

// ContextWithIdentity stores the identity in the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the identity, reporting whether one is present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
