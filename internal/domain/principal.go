package domain

import "context"

// Principal is the authenticated actor an operation runs for.
type Principal struct {
	ID   string
	Role Role
}

// IsAdmin reports whether p has unrestricted visibility.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Scope narrows a query to what a principal may see.
// An empty TenantID means unrestricted.
type Scope struct {
	TenantID string
}

// Unrestricted reports whether the scope places no restriction.
func (s Scope) Unrestricted() bool { return s.TenantID == "" }

type principalKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
