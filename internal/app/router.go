package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-advisory/meridian/internal/auth"
	"github.com/meridian-advisory/meridian/internal/clients"
	"github.com/meridian-advisory/meridian/internal/employees"
	"github.com/meridian-advisory/meridian/internal/investments"
	"github.com/meridian-advisory/meridian/internal/messages"
	"github.com/meridian-advisory/meridian/internal/observability"
	"github.com/meridian-advisory/meridian/internal/shared"
	"github.com/meridian-advisory/meridian/internal/users"
	"github.com/meridian-advisory/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthMiddleware     auth.Middleware
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	ClientsHandler     *clients.Handler
	EmployeesHandler   *employees.Handler
	InvestmentsHandler *investments.Handler
	MessagesHandler    *messages.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
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
	r.Use(params.AuthMiddleware.WithPrincipal)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Registration and client-account requests are open to anonymous guests;
	// every other user operation is gated inside the service layer.
	r.Route("/users", params.UsersHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireAuth)
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/employees", params.EmployeesHandler.MountRoutes)
		r.Route("/investments", params.InvestmentsHandler.MountRoutes)
		r.Route("/messages", params.MessagesHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
