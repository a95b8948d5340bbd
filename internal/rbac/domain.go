package rbac

// Role represents one entry in the static role catalog. Lower level means
// more senior; the parent edges form a directed acyclic graph.
type Role struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
	Parents     []int64  `json:"parents"`
}
