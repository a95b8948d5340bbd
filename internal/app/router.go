package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/vantage-dms/vantage-dms/internal/audit"
	"github.com/vantage-dms/vantage-dms/internal/auth"
	"github.com/vantage-dms/vantage-dms/internal/compliance"
	"github.com/vantage-dms/vantage-dms/internal/payroll"
	"github.com/vantage-dms/vantage-dms/internal/rbac"
	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	TokenIssuer       *auth.TokenIssuer
	RBACMiddleware    rbac.Middleware
	AuthHandler       *auth.Handler
	RolesHandler      *rbac.Handler
	AuditHandler      *audit.Handler
	ComplianceHandler *compliance.Handler
	PayrollHandler    *payroll.Handler
}

// NewRouter constructs the chi.Router with Vantage defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Public: credential exchange, throttled harder than the rest of the API.
	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountLoginRoutes(r)
	})

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(auth.BearerAuth(params.TokenIssuer))

		r.Route("/principals", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(shared.PermPrincipalsEdit))
			params.AuthHandler.MountPrincipalRoutes(r)
		})

		r.Route("/roles", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(shared.PermPrincipalsView))
			params.RolesHandler.MountRoutes(r)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(shared.PermAuditView))
			params.AuditHandler.MountRoutes(r)
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(params.RBACMiddleware.Require(shared.PermDocumentsView))
				params.ComplianceHandler.MountReadRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(params.RBACMiddleware.Require(shared.PermDocumentsReview))
				params.ComplianceHandler.MountReviewRoutes(r)
			})
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(shared.PermPayrollEdit))
			params.PayrollHandler.MountRoutes(r)
		})
	})

	return r
}
