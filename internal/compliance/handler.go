package compliance

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vantage-dms/vantage-dms/internal/platform/httpx"
	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// Handler exposes document requirements, validation and the approval
// workflow over HTTP.
type Handler struct {
	logger    *slog.Logger
	engine    *Engine
	repo      Repository
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine, repo Repository) *Handler {
	return &Handler{
		logger:    logger,
		engine:    engine,
		repo:      repo,
		validator: validator.New(),
	}
}

// MountReadRoutes registers requirement lookups, uploads and completeness
// checks on the provided router.
func (h *Handler) MountReadRoutes(r chi.Router) {
	r.Get("/requirements/{category}", h.listRequirements)
	r.Get("/entities/{entityID}/documents", h.listRecords)
	r.Get("/entities/{entityID}/completeness/{category}", h.checkCompleteness)
	r.Post("/documents", h.createRecord)
}

// MountReviewRoutes registers the approval workflow. Callers guard these with
// the review permission.
func (h *Handler) MountReviewRoutes(r chi.Router) {
	r.Post("/documents/{documentID}/approve", h.review(StatusApproved))
	r.Post("/documents/{documentID}/reject", h.review(StatusRejected))
}

func (h *Handler) listRequirements(w http.ResponseWriter, r *http.Request) {
	category := Category(chi.URLParam(r, "category"))
	httpx.JSON(w, http.StatusOK, map[string]any{
		"category": category,
		"required": h.engine.RequiredDocuments(category),
	})
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	entityID, ok := entityIDParam(w, r)
	if !ok {
		return
	}
	records, err := h.repo.ListByEntity(r.Context(), entityID)
	if err != nil {
		h.logger.Error("list document records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if records == nil {
		records = []DocumentRecord{}
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) checkCompleteness(w http.ResponseWriter, r *http.Request) {
	entityID, ok := entityIDParam(w, r)
	if !ok {
		return
	}
	category := Category(chi.URLParam(r, "category"))
	records, err := h.repo.ListByEntity(r.Context(), entityID)
	if err != nil {
		h.logger.Error("load document records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.engine.CheckCompleteness(category, records))
}

type createRecordRequest struct {
	EntityID  int64  `json:"entity_id" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required"`
	FileName  string `json:"file_name" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		var reasons []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			reasons = append(reasons, fieldErr.Field()+": "+fieldErr.Tag())
		}
		httpx.ProblemWithErrors(w, http.StatusBadRequest, "Validation Failed", reasons)
		return
	}
	record := DocumentRecord{
		EntityID:   req.EntityID,
		Type:       DocumentType(req.Type),
		FileName:   req.FileName,
		SizeBytes:  req.SizeBytes,
		UploadedAt: time.Now().UTC(),
	}
	// Reject uploads that could never pass review; vigency is checked again
	// at approval time.
	if ok, violations := h.engine.Validate(record); !ok {
		httpx.ProblemWithErrors(w, http.StatusBadRequest, "Validation Failed", violations)
		return
	}
	created, err := h.repo.Create(r.Context(), record)
	if err != nil {
		h.logger.Error("create document record", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// review approves or rejects a pending record. Approval re-runs Validate so a
// document that aged past its vigency while pending cannot slip through.
func (h *Handler) review(to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "documentID"))
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "document id must be a UUID")
			return
		}
		record, err := h.repo.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			h.logger.Error("load document record", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if !record.Status.CanTransition(to) {
			httpx.Problem(w, http.StatusConflict, "Conflict",
				"document is "+string(record.Status)+", only pending documents can be reviewed")
			return
		}
		if to == StatusApproved {
			if ok, violations := h.engine.Validate(record); !ok {
				httpx.ProblemWithErrors(w, http.StatusUnprocessableEntity, "Validation Failed", violations)
				return
			}
		}
		if err := h.repo.UpdateStatus(r.Context(), id, record.Status, to); err != nil {
			if errors.Is(err, ErrIllegalTransition) {
				httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
				return
			}
			h.logger.Error("update document status", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		record.Status = to
		httpx.JSON(w, http.StatusOK, record)
	}
}

func entityIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "entityID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "entity id must be a positive integer")
		return 0, false
	}
	return id, true
}
