package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/service"
)

// ============================================================
// 1. Client Profile
// ============================================================

func saveProfileHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients/{clientID}/profile")
		defer span.End()

		clientID := chi.URLParam(r, "clientID")
		if clientID == "" {
			writeError(w, http.StatusBadRequest, "client_id is required")
			return
		}
		span.SetAttributes(attribute.String("client.id", clientID))

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		profile, err := req.toDomain(clientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if err := svc.SaveProfile(ctx, profile); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, domain.SuccessResponse{
			Message: "profile saved",
			ID:      clientID,
		})
	}
}

func getProfileHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{clientID}/profile")
		defer span.End()

		clientID := chi.URLParam(r, "clientID")
		profile, err := svc.Profile(ctx, clientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// ============================================================
// 2. Document Requirements
// ============================================================

func requirementsHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{clientID}/requirements")
		defer span.End()

		clientID := chi.URLParam(r, "clientID")
		outcome, err := svc.Requirements(ctx, clientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
	}
}

// ============================================================
// 3. Review Run
// ============================================================

func runReviewHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients/{clientID}/review")
		defer span.End()

		clientID := chi.URLParam(r, "clientID")
		if clientID == "" {
			writeError(w, http.StatusBadRequest, "client_id is required")
			return
		}
		span.SetAttributes(attribute.String("client.id", clientID))

		// An empty body means summaries come from the extraction service.
		var req reviewRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		summaries, err := req.toDomain()
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		result, err := svc.Run(ctx, clientID, summaries)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// 4. Report & Usage
// ============================================================

func getReportHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{clientID}/report")
		defer span.End()

		clientID := chi.URLParam(r, "clientID")
		result, err := svc.LatestReview(ctx, clientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result.Report)
	}
}

func usageHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/usage")
		defer span.End()

		count, err := svc.Usage(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"usage_count": count})
	}
}

// reviewMetricsHandler exposes a JSON snapshot of the review counters for
// dashboards that don't scrape Prometheus.
func reviewMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/reviews")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]float64{
			"success":        metrics.ReviewCount("success"),
			"derive_error":   metrics.ReviewCount("derive_error"),
			"extract_error":  metrics.ReviewCount("extract_error"),
			"validate_error": metrics.ReviewCount("validate_error"),
			"store_error":    metrics.ReviewCount("store_error"),
		})
	}
}

// ============================================================
// Probes
// ============================================================

func healthzHandler(svc *service.ReviewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "auditlens-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		err := svc.Ping(ctx)
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			status = "degraded"
			logger.Warn("health: store unreachable", zap.Error(err))
		}
		services = append(services, domain.ServiceHealth{
			Name: "store", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
