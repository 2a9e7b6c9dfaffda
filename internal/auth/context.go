package auth

import "context"

type identityContextKey struct{}

// Identity is the verified claim set attached to a request by the
// authentication middleware. It exposes claims by name so downstream
// consumers stay decoupled from the token format.
type Identity struct {
	claims map[string]string
}

// NewIdentity builds an Identity from verified claims.
func NewIdentity(claims *Claims) Identity {
	m := map[string]string{
		"sub": claims.Subject,
	}
	if claims.Role != "" {
		m["role"] = claims.Role
	}
	if claims.OrganizationID != "" {
		m["organization_id"] = claims.OrganizationID
	}
	if claims.SessionID != "" {
		m["session_id"] = claims.SessionID
	}
	return Identity{claims: m}
}

// IdentityFromClaimMap builds an Identity from raw claim values. Test and
// tooling helper; empty values are dropped.
func IdentityFromClaimMap(claims map[string]string) Identity {
	m := make(map[string]string, len(claims))
	for k, v := range claims {
		if v != "" {
			m[k] = v
		}
	}
	return Identity{claims: m}
}

// Claim looks up a claim by name.
func (id Identity) Claim(name string) (string, bool) {
	v, ok := id.claims[name]
	return v, ok
}

// ContextWithIdentity attaches the verified identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, &id)
}

// IdentityFromContext extracts the verified identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil {
		return Identity{}, false
	}
	return *v, true
}
