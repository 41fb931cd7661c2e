// Package httpapi assembles the portal's HTTP surface: public auth routes,
// registrant routes behind the token middleware, reviewer routes behind the
// admin middleware, and the operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "chaincomply/internal/admin/handler"
	assessmenthandler "chaincomply/internal/assessment/handler"
	authhandler "chaincomply/internal/auth/handler"
	"chaincomply/internal/platform/middleware"
	registrationhandler "chaincomply/internal/registration/handler"
)

// Deps collects the wired handlers and middleware collaborators the router
// mounts. Sessions may be nil; token validation then skips the revocation
// check.
type Deps struct {
	Auth          *authhandler.Handler
	Registrations *registrationhandler.Handler
	Assessments   *assessmenthandler.Handler
	Admin         *adminhandler.Handler
	Tokens        middleware.TokenValidator
	Sessions      middleware.SessionValidator
	Logger        *slog.Logger
}

// NewRouter builds the full route tree.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Sessions, deps.Logger))

		deps.Auth.RegisterProtected(r)
		deps.Registrations.Register(r)
		deps.Assessments.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Logger))
			deps.Admin.Register(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
