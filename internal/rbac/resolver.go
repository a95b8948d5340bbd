package rbac

import "github.com/vantage-dms/vantage-dms/internal/shared"

// Resolver answers permission questions against the static catalog. It holds
// no mutable state and is safe for concurrent use.
type Resolver struct {
	catalog *Catalog
}

// NewResolver constructs a Resolver over the given catalog.
func NewResolver(catalog *Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// EffectivePermissions returns the role's own permissions unioned with those
// of every ancestor reachable through parent edges. Unknown roles yield an
// empty set. The visited set keeps the traversal safe even if a cyclic
// catalog ever slipped past load-time validation.
func (r *Resolver) EffectivePermissions(roleID int64) map[string]struct{} {
	perms := make(map[string]struct{})
	if r == nil || r.catalog == nil {
		return perms
	}
	visited := make(map[int64]struct{})
	stack := []int64{roleID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		role, ok := r.catalog.Role(id)
		if !ok {
			continue
		}
		for _, p := range role.Permissions {
			perms[p] = struct{}{}
		}
		stack = append(stack, role.Parents...)
	}
	return perms
}

// HasPermission reports whether the role holds the permission token, either
// literally or through the wildcard. Fails closed on unknown roles.
func (r *Resolver) HasPermission(roleID int64, token string) bool {
	perms := r.EffectivePermissions(roleID)
	if _, ok := perms[shared.Wildcard]; ok {
		return true
	}
	_, ok := perms[token]
	return ok
}

// CanSupervise reports whether the supervisor role outranks the subordinate
// role. Unknown roles on either side fail closed.
func (r *Resolver) CanSupervise(supervisorID, subordinateID int64) bool {
	if r == nil || r.catalog == nil {
		return false
	}
	sup, ok := r.catalog.Role(supervisorID)
	if !ok {
		return false
	}
	sub, ok := r.catalog.Role(subordinateID)
	if !ok {
		return false
	}
	return sup.Level < sub.Level
}
