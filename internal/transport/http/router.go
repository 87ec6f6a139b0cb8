// Package httptransport assembles the HTTP surface: middleware order,
// route groups, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vouch/internal/platform/middleware"
	"vouch/internal/verification/handler"
	"vouch/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Verification *handler.Handler
	Auth         middleware.JWTValidator

	// AdminTokenHash guards the review endpoints. Empty disables them.
	AdminTokenHash string

	// Health holds named dependency checkers for /healthz.
	Health map[string]HealthChecker

	Logger *slog.Logger
}

// NewRouter wires the middleware stack and all endpoints. Request ID and
// client metadata run for every request; JWT auth gates the owner routes and
// the admin token gates the review routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", healthHandler(deps.Health, deps.Logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Auth, deps.Logger))
		deps.Verification.Register(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(deps.AdminTokenHash))
		deps.Verification.RegisterAdmin(r)
	})

	return r
}

// healthHandler pings every registered dependency with a short deadline and
// reports per-dependency state. Any failure turns the overall status red.
func healthHandler(checkers map[string]HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := map[string]string{"status": "ok"}
		for name, checker := range checkers {
			if err := checker.Health(ctx); err != nil {
				if logger != nil {
					logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				}
				report[name] = "unreachable"
				report["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "ok"
		}
		httputil.WriteJSON(w, status, report)
	}
}
