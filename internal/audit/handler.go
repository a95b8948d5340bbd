package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vantage-dms/vantage-dms/internal/platform/httpx"
)

// Handler exposes the login history and suspicion reports over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/logins/{principalID}", h.listEvents)
	r.Get("/suspicion/{principalID}", h.suspicionReport)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	principalID, ok := principalIDParam(w, r)
	if !ok {
		return
	}
	events, err := h.service.Events(r.Context(), principalID)
	if err != nil {
		h.logger.Error("list login events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if events == nil {
		events = []LoginEvent{}
	}
	httpx.JSON(w, http.StatusOK, events)
}

func (h *Handler) suspicionReport(w http.ResponseWriter, r *http.Request) {
	principalID, ok := principalIDParam(w, r)
	if !ok {
		return
	}
	report, err := h.service.Analyze(r.Context(), principalID)
	if err != nil {
		h.logger.Error("analyze login history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func principalIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "principalID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "principal id must be a positive integer")
		return 0, false
	}
	return id, true
}
