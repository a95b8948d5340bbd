package payroll

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vantage-dms/vantage-dms/internal/platform/httpx"
)

// Handler exposes the split validator so the payroll UI can pre-check a
// distribution before saving it.
type Handler struct {
	logger *slog.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// MountRoutes registers payroll routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/splits/validate", h.validateSplits)
}

type validateSplitsRequest struct {
	Splits []Split `json:"splits"`
}

type validateSplitsResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

func (h *Handler) validateSplits(w http.ResponseWriter, r *http.Request) {
	var req validateSplitsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	valid, violations := ValidateSplits(req.Splits)
	if violations == nil {
		violations = []string{}
	}
	httpx.JSON(w, http.StatusOK, validateSplitsResponse{Valid: valid, Violations: violations})
}
