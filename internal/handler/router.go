package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/service"
)

var tracer = otel.Tracer("handler")

// RouterConfig carries the shell-level knobs the router needs.
type RouterConfig struct {
	// JWTSecret signs the bearer tokens accepted on /v1. When AuthDisabled
	// is set the /v1 routes are open (local development only).
	JWTSecret    string
	AuthDisabled bool
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.ReviewService, metrics *observability.Metrics, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if !cfg.AuthDisabled {
			r.Use(JWTAuthMiddleware(cfg.JWTSecret, logger))
		}

		// =============================================
		// 1. Client Profile
		// POST /v1/clients/{clientID}/profile
		// GET  /v1/clients/{clientID}/profile
		// =============================================
		r.Post("/clients/{clientID}/profile", saveProfileHandler(svc, logger))
		r.Get("/clients/{clientID}/profile", getProfileHandler(svc, logger))

		// =============================================
		// 2. Document Requirements (derive-only)
		// GET /v1/clients/{clientID}/requirements
		// =============================================
		r.Get("/clients/{clientID}/requirements", requirementsHandler(svc, logger))

		// =============================================
		// 3. Review Run
		// POST /v1/clients/{clientID}/review
		// =============================================
		r.Post("/clients/{clientID}/review", runReviewHandler(svc, logger))

		// =============================================
		// 4. Report & Usage
		// GET /v1/clients/{clientID}/report
		// GET /v1/usage
		// =============================================
		r.Get("/clients/{clientID}/report", getReportHandler(svc, logger))
		r.Get("/usage", usageHandler(svc, logger))

		// =============================================
		// 5. Review Metrics Snapshot
		// GET /v1/metrics/reviews
		// =============================================
		r.Get("/metrics/reviews", reviewMetricsHandler(metrics, logger))
	})

	return r
}
