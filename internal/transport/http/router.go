// Package httptransport assembles the public HTTP surface: middleware
// chain, health and metrics endpoints, and the ledger API routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ledgerhandler "github.com/trackback-blockchain/plug-blockchain/internal/ledger/handler"
	"github.com/trackback-blockchain/plug-blockchain/internal/platform/middleware"
	"github.com/trackback-blockchain/plug-blockchain/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthFunc adapts a plain function to HealthChecker.
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Health(ctx context.Context) error { return f(ctx) }

// Deps carries the wired components the router composes. RateLimit and
// Checks are optional.
type Deps struct {
	Ledger    *ledgerhandler.Handler
	Tokens    middleware.PrincipalValidator
	RateLimit *middleware.RateLimiter
	Checks    map[string]HealthChecker
	Logger    *slog.Logger
}

// NewRouter wires all public endpoints. Ledger routes sit behind
// authentication; health and metrics stay open for probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/healthz", handleHealth(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Tokens, deps.Logger))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Middleware)
		}
		deps.Ledger.Register(r)
	})

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
