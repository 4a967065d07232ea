package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/handler"
	"github.com/auditlens/auditlens-go/internal/infra/cache"
	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/infra/storage"
	"github.com/auditlens/auditlens-go/internal/refdata"
	"github.com/auditlens/auditlens-go/internal/service"
)

type stubExtractor struct{}

func (stubExtractor) ExtractSummary(ctx context.Context, clientID string, kind domain.DocumentKind) (*domain.StatementSummary, error) {
	return nil, &domain.ErrNotFound{Resource: "summary", ID: string(kind)}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	table := refdata.Default(time.Now())
	metrics := observability.NewMetrics()
	compliance := service.NewCompliance(table, logger)
	validator := service.NewValidation(table, logger)
	svc := service.NewReview(
		storage.NewMemory(),
		stubExtractor{},
		compliance,
		validator,
		cache.New[*domain.ReviewResult](time.Minute),
		metrics,
		logger,
	)
	return handler.NewRouter(svc, metrics, handler.RouterConfig{AuthDisabled: true}, logger)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	logger := zap.NewNop()
	table := refdata.Default(time.Now())
	metrics := observability.NewMetrics()
	svc := service.NewReview(
		storage.NewMemory(),
		stubExtractor{},
		service.NewCompliance(table, logger),
		service.NewValidation(table, logger),
		cache.New[*domain.ReviewResult](time.Minute),
		metrics,
		logger,
	)
	router := handler.NewRouter(svc, metrics, handler.RouterConfig{JWTSecret: "test-secret"}, logger)

	req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validProfileBody() map[string]any {
	return map[string]any{
		"name":                    "Sharma Traders",
		"entity_type":             "partnership",
		"nature_of_business":      "wholesale trading",
		"financial_year":          "2024-25",
		"turnover":                12_000_000,
		"gst_status":              "registered",
		"previous_year_available": true,
	}
}

func TestProfileLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/clients/c-1/profile", validProfileBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("save profile: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/c-1/profile", nil)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", got.Code)
	}

	var profile domain.ClientProfile
	if err := json.Unmarshal(got.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.EntityType != domain.EntityPartnership {
		t.Errorf("expected partnership, got %s", profile.EntityType)
	}
}

func TestProfileRejectsUnknownEntityType(t *testing.T) {
	router := newTestRouter(t)

	body := validProfileBody()
	body["entity_type"] = "trust"
	rec := postJSON(t, router, "/v1/clients/c-1/profile", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown entity type, got %d", rec.Code)
	}
}

func TestRequirementsWithoutProfile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/nobody/requirements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRequirements(t *testing.T) {
	router := newTestRouter(t)

	if rec := postJSON(t, router, "/v1/clients/c-1/profile", validProfileBody()); rec.Code != http.StatusCreated {
		t.Fatalf("save profile: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/c-1/requirements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var outcome domain.ComplianceOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !outcome.AuditApplicable {
		t.Error("partnership above turnover threshold should require audit")
	}
	if len(outcome.MandatoryDocuments) != 3 {
		t.Errorf("expected 3 mandatory documents, got %d", len(outcome.MandatoryDocuments))
	}
}

func inlineSummaries() []map[string]any {
	return []map[string]any{
		{
			"kind": "balance_sheet",
			"aggregates": map[string]float64{
				"total_assets":        1_000_000,
				"total_liabilities":   600_000,
				"equity":              400_000,
				"current_assets":      500_000,
				"current_liabilities": 250_000,
			},
		},
		{
			"kind": "profit_and_loss",
			"aggregates": map[string]float64{
				"revenue":            12_000_000,
				"direct_costs":       9_000_000,
				"gross_profit":       3_000_000,
				"operating_expenses": 2_000_000,
				"other_expenses":     100_000,
				"other_income":       50_000,
				"net_profit":         950_000,
			},
		},
		{
			"kind": "trial_balance",
			"aggregates": map[string]float64{
				"total_debit":  5_000_000,
				"total_credit": 5_000_000,
			},
		},
		{
			"kind": "gst_reconciliation",
			"aggregates": map[string]float64{
				"books_turnover":  12_000_000,
				"gstr3b_turnover": 12_000_000,
				"itc_claimed":     400_000,
				"gstr2b_itc":      400_000,
			},
		},
	}
}

func TestReviewRunWithInlineSummaries(t *testing.T) {
	router := newTestRouter(t)

	if rec := postJSON(t, router, "/v1/clients/c-1/profile", validProfileBody()); rec.Code != http.StatusCreated {
		t.Fatalf("save profile: %d", rec.Code)
	}

	rec := postJSON(t, router, "/v1/clients/c-1/review", map[string]any{
		"summaries": inlineSummaries(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("run review: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.ReviewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Report == nil {
		t.Fatal("expected an assembled report")
	}
	if len(result.Report.Sections) != 6 {
		t.Errorf("expected 6 report sections, got %d", len(result.Report.Sections))
	}

	// The finalized report must show up via GET and bump the counter.
	req := httptest.NewRequest(http.MethodGet, "/v1/clients/c-1/report", nil)
	reportRec := httptest.NewRecorder()
	router.ServeHTTP(reportRec, req)
	if reportRec.Code != http.StatusOK {
		t.Fatalf("get report: expected 200, got %d", reportRec.Code)
	}

	usageReq := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
	usageRec := httptest.NewRecorder()
	router.ServeHTTP(usageRec, usageReq)
	if usageRec.Code != http.StatusOK {
		t.Fatalf("usage: expected 200, got %d", usageRec.Code)
	}
	var usage map[string]int
	if err := json.Unmarshal(usageRec.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if usage["usage_count"] != 1 {
		t.Errorf("expected usage_count 1, got %d", usage["usage_count"])
	}
}

func TestReportBeforeReview(t *testing.T) {
	router := newTestRouter(t)

	if rec := postJSON(t, router, "/v1/clients/c-1/profile", validProfileBody()); rec.Code != http.StatusCreated {
		t.Fatalf("save profile: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/c-1/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any review, got %d", rec.Code)
	}
}
