// Package http assembles the HTTP surface: the shared middleware pipeline
// and every module's routes.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskhub/internal/audit"
	audithandler "taskhub/internal/audit/handler"
	authhandler "taskhub/internal/auth/handler"
	"taskhub/internal/authz"
	organizationhandler "taskhub/internal/organization/handler"
	platformmetrics "taskhub/internal/platform/metrics"
	"taskhub/internal/platform/middleware"
	taskhandler "taskhub/internal/task/handler"
	"taskhub/internal/transport/http/shared"
	userhandler "taskhub/internal/user/handler"
)

// Deps collects everything the router needs. All fields are required except
// Metrics and Verifier behavior on public routes.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *platformmetrics.Metrics
	Recorder   *audit.Recorder
	Verifier   authz.TokenVerifier
	Authorizer *authz.Authorizer

	Auth          *authhandler.Handler
	Users         *userhandler.Handler
	Organizations *organizationhandler.Handler
	Tasks         *taskhandler.Handler
	AuditLogs     *audithandler.Handler

	RateLimitPerSecond float64
	RateLimitBurst     int
}

// NewRouter builds the chi router. Middleware ordering is load-bearing:
// recovery wraps everything, the body buffer runs before the audit recorder
// so request bodies appear in entries, and the recorder runs before identity
// extraction so rejected requests still produce an audit row.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	if d.RateLimitPerSecond > 0 {
		r.Use(middleware.RateLimit(d.RateLimitPerSecond, d.RateLimitBurst))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.BufferBody)
		r.Use(d.Recorder.Middleware)
		r.Use(authz.ClaimedIdentity(d.Verifier, d.Logger))

		d.Auth.Register(r, d.Authorizer)
		d.Users.Register(r, d.Authorizer)
		d.Organizations.Register(r, d.Authorizer)
		d.Tasks.Register(r, d.Authorizer)
		d.AuditLogs.Register(r, d.Authorizer)
	})

	return r
}
