package auth

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/vantage-dms/vantage-dms/internal/platform/httpx"
	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// Handler wires HTTP endpoints for authentication and principal admin.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	repo      Repository
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, repo Repository) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		repo:      repo,
		validator: validator.New(),
	}
}

// MountLoginRoutes registers the public login endpoint.
func (h *Handler) MountLoginRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountPrincipalRoutes registers the principal admin endpoints. Callers are
// expected to guard these with the appropriate permission middleware.
func (h *Handler) MountPrincipalRoutes(r chi.Router) {
	r.Get("/", h.listPrincipals)
	r.Post("/", h.createPrincipal)
	r.Post("/{principalID}/lock", h.setLocked(true))
	r.Post("/{principalID}/unlock", h.setLocked(false))
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Principal principalView `json:"principal"`
}

type principalView struct {
	ID         int64  `json:"id"`
	EmployeeNo string `json:"employee_no"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	RoleID     int64  `json:"role_id"`
	IsActive   bool   `json:"is_active"`
	IsLocked   bool   `json:"is_locked"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "identifier and password are required")
		return
	}

	token, expiresAt, principal, err := h.service.Login(r.Context(), req.Identifier, req.Password, remoteIP(r), r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAccountLocked):
			httpx.RespondError(w, httpx.ErrLocked)
		case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrInvalidCredentials):
			// Not-found and mismatch are indistinguishable to the client.
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		default:
			h.logger.Error("login", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: toPrincipalView(principal),
	})
}

type createPrincipalRequest struct {
	EmployeeNo string `json:"employee_no" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
	RoleID     int64  `json:"role_id" validate:"required,gt=0"`
}

func (h *Handler) createPrincipal(w http.ResponseWriter, r *http.Request) {
	var req createPrincipalRequest
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
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	created, err := h.repo.Create(r.Context(), &Principal{
		EmployeeNo:   req.EmployeeNo,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		RoleID:       req.RoleID,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			httpx.RespondError(w, httpx.ErrDuplicate)
			return
		}
		h.logger.Error("create principal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPrincipalView(created))
}

func (h *Handler) listPrincipals(w http.ResponseWriter, r *http.Request) {
	principals, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list principals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]principalView, 0, len(principals))
	for i := range principals {
		views = append(views, toPrincipalView(&principals[i]))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) setLocked(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "principalID"), 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "principal id must be a positive integer")
			return
		}
		if err := h.repo.SetLocked(r.Context(), id, locked); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			h.logger.Error("set locked", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toPrincipalView(p *Principal) principalView {
	return principalView{
		ID:         p.ID,
		EmployeeNo: p.EmployeeNo,
		Email:      p.Email,
		FullName:   p.FullName,
		RoleID:     p.RoleID,
		IsActive:   p.IsActive,
		IsLocked:   p.IsLocked,
	}
}

func remoteIP(r *http.Request) string {
	// chi middleware.RealIP rewrites RemoteAddr; strip the port if present.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
