package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lodestar-crm/lodestar-crm/internal/auth"
	"github.com/lodestar-crm/lodestar-crm/internal/authz"
	"github.com/lodestar-crm/lodestar-crm/internal/comms"
	"github.com/lodestar-crm/lodestar-crm/internal/customers"
	"github.com/lodestar-crm/lodestar-crm/internal/dashboard"
	"github.com/lodestar-crm/lodestar-crm/internal/leads"
	"github.com/lodestar-crm/lodestar-crm/internal/observability"
	"github.com/lodestar-crm/lodestar-crm/internal/shared"
	"github.com/lodestar-crm/lodestar-crm/internal/users"
	"github.com/lodestar-crm/lodestar-crm/jobs"
	"github.com/lodestar-crm/lodestar-crm/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthzMW        authz.Middleware

	AuthHandler      *auth.Handler
	LeadsHandler     *leads.Handler
	CustomersHandler *customers.Handler
	CommsHandler     *comms.Handler
	DashboardHandler *dashboard.Handler
	UsersHandler     *users.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Lodestar defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.LeadsHandler != nil {
			r.Route("/leads", params.LeadsHandler.MountRoutes)
		}
		if params.CustomersHandler != nil {
			r.Route("/customers", params.CustomersHandler.MountRoutes)
		}
		if params.CommsHandler != nil {
			r.Route("/comms", params.CommsHandler.MountRoutes)
		}
		if params.DashboardHandler != nil {
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.AuthzMW.RequireRoles(authz.RoleAdmin))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// The SPA bundle; every non-API path falls through to index.html so
	// client-side routing works on refresh.
	spa, err := web.SPAHandler()
	if err != nil {
		params.Logger.Error("create spa handler", slog.Any("error", err))
	} else {
		r.NotFound(spa.ServeHTTP)
	}

	return r
}
