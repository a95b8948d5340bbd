package rbac

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vantage-dms/vantage-dms/internal/platform/httpx"
)

// Handler exposes the read-only role catalog over HTTP.
type Handler struct {
	logger   *slog.Logger
	catalog  *Catalog
	resolver *Resolver
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, catalog *Catalog, resolver *Resolver) *Handler {
	return &Handler{logger: logger, catalog: catalog, resolver: resolver}
}

// MountRoutes registers role catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRoles)
	r.Get("/{roleID}/permissions", h.effectivePermissions)
}

type roleView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
	Parents     []int64  `json:"parents,omitempty"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.catalog.Roles()
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	views := make([]roleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, roleView{
			ID:          role.ID,
			Name:        role.Name,
			Level:       role.Level,
			Permissions: role.Permissions,
			Parents:     role.Parents,
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) effectivePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "role id must be numeric")
		return
	}
	if _, ok := h.catalog.Role(roleID); !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	perms := h.resolver.EffectivePermissions(roleID)
	tokens := make([]string, 0, len(perms))
	for p := range perms {
		tokens = append(tokens, p)
	}
	sort.Strings(tokens)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role_id":     roleID,
		"permissions": tokens,
	})
}
