package app

import "github.com/neomorfeo/rentiq/internal/domain"

// ScopePolicy narrows queries to what a principal may see.
type ScopePolicy func(domain.Principal) domain.Scope

// RoleScope lets administrators see everything and restricts every other
// role to its own records.
func RoleScope(p domain.Principal) domain.Scope {
	if p.IsAdmin() {
		return domain.Scope{}
	}
	return domain.Scope{TenantID: p.ID}
}
