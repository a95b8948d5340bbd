package rbac

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// ConfigurationError reports a malformed role catalog. It is only produced at
// load time; request-path predicates never return it.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "rbac: " + e.Reason
}

// Catalog is the immutable role table loaded once at process start. It is
// never mutated afterwards, so it is safe to share across goroutines.
type Catalog struct {
	roles map[int64]Role
}

// NewCatalog validates the role table and builds the catalog. Duplicate ids,
// dangling parent references and cycles in the parent graph are rejected.
func NewCatalog(roles []Role) (*Catalog, error) {
	byID := make(map[int64]Role, len(roles))
	for _, role := range roles {
		if _, ok := byID[role.ID]; ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate role id %d", role.ID)}
		}
		byID[role.ID] = role
	}
	for _, role := range byID {
		for _, parent := range role.Parents {
			if _, ok := byID[parent]; !ok {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("role %d references unknown parent %d", role.ID, parent)}
			}
		}
	}
	if cycle, found := findCycle(byID); found {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("cycle in parent graph involving role %d", cycle)}
	}
	return &Catalog{roles: byID}, nil
}

// LoadCatalogFile reads a JSON role table from disk and builds the catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rbac: read catalog: %w", err)
	}
	var roles []Role
	if err := json.Unmarshal(raw, &roles); err != nil {
		return nil, &ConfigurationError{Reason: "parse catalog: " + err.Error()}
	}
	return NewCatalog(roles)
}

// Role returns the role for the given id.
func (c *Catalog) Role(id int64) (Role, bool) {
	if c == nil {
		return Role{}, false
	}
	role, ok := c.roles[id]
	return role, ok
}

// Roles returns a copy of every catalog entry.
func (c *Catalog) Roles() []Role {
	if c == nil {
		return nil
	}
	out := make([]Role, 0, len(c.roles))
	for _, role := range c.roles {
		out = append(out, role)
	}
	return out
}

// findCycle runs a three-color DFS over the parent graph. Returns the id of a
// role on a cycle; found is false when the graph is acyclic. Any id, zero
// included, is a legal role identifier.
func findCycle(roles map[int64]Role) (int64, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[int64]int, len(roles))
	var visit func(id int64) (int64, bool)
	visit = func(id int64) (int64, bool) {
		color[id] = gray
		for _, parent := range roles[id].Parents {
			switch color[parent] {
			case gray:
				return parent, true
			case white:
				if hit, found := visit(parent); found {
					return hit, true
				}
			}
		}
		color[id] = black
		return 0, false
	}
	for id := range roles {
		if color[id] == white {
			if hit, found := visit(id); found {
				return hit, true
			}
		}
	}
	return 0, false
}

// DefaultCatalog returns the dealership role table shipped with the binary.
// Used when ROLE_CATALOG_PATH is not configured.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog([]Role{
		{ID: 1, Name: "Director", Level: 1, Permissions: []string{shared.Wildcard}},
		{ID: 2, Name: "Branch Manager", Level: 2, Permissions: []string{
			shared.PermPrincipalsView, shared.PermPrincipalsEdit,
			shared.PermPayrollView, shared.PermPayrollEdit,
			shared.PermAuditView,
		}, Parents: []int64{3, 4}},
		{ID: 3, Name: "Finance", Level: 3, Permissions: []string{
			shared.PermCreditsView, shared.PermCreditsApprove,
			shared.PermDocumentsView, shared.PermDocumentsReview,
		}},
		{ID: 4, Name: "Sales Advisor", Level: 4, Permissions: []string{
			shared.PermClientsView, shared.PermClientsEdit,
			shared.PermVehiclesView,
			shared.PermSalesView, shared.PermSalesComplete,
			shared.PermDocumentsView,
		}},
		{ID: 5, Name: "Workshop", Level: 4, Permissions: []string{
			shared.PermVehiclesView, shared.PermVehiclesEdit,
		}},
	})
	if err != nil {
		// The built-in table is covered by tests; reaching this is a bug.
		panic(err)
	}
	return catalog
}
