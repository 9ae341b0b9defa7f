// Package httptransport assembles the chi router: middleware chain, the
// domain handlers, and the unauthenticated operational endpoints.
package httptransport

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"amlcase/internal/assessment"
	"amlcase/internal/casefile"
	platformmetrics "amlcase/internal/platform/metrics"
	platformredis "amlcase/internal/platform/redis"
	"amlcase/internal/records"
	"amlcase/pkg/platform/httputil"
	"amlcase/pkg/platform/middleware/auth"
	"amlcase/pkg/platform/middleware/requestid"
	"amlcase/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	TokenValidator auth.TokenValidator
	HTTPMetrics    *platformmetrics.Metrics

	Records    *records.Handler
	Assessment *assessment.Handler
	Casefile   *casefile.Handler

	// Health probes; either may be nil when the backend is not configured.
	DB    *sql.DB
	Redis *platformredis.Client
}

// NewRouter builds the full route tree. Business routes sit behind bearer
// auth; /healthz and /metrics stay open for probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	r.Get("/healthz", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.TokenValidator, deps.Logger))
		deps.Records.Register(r)
		deps.Assessment.Register(r)
		deps.Casefile.Register(r)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := map[string]string{}
		healthy := true

		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			} else {
				checks["postgres"] = "ok"
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		resp := healthResponse{Status: "ok", Checks: checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			resp.Status = "degraded"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
