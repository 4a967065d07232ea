package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/handler"
	"github.com/auditlens/auditlens-go/internal/infra/cache"
	"github.com/auditlens/auditlens-go/internal/infra/client"
	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/infra/resilience"
	"github.com/auditlens/auditlens-go/internal/infra/storage"
	"github.com/auditlens/auditlens-go/internal/refdata"
	"github.com/auditlens/auditlens-go/internal/service"
)

const testSecret = "integration-test-secret"

func agg(pairs map[string]int64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(pairs))
	for k, v := range pairs {
		out[k] = decimal.NewFromInt(v)
	}
	return out
}

// mockExtractorServer serves statement summaries the way the extraction
// service does: GET /v1/clients/{id}/summaries/{kind}.
func mockExtractorServer(t *testing.T) *httptest.Server {
	t.Helper()

	timely := true
	summaries := map[string]*domain.StatementSummary{
		"balance_sheet": {
			Kind: domain.DocBalanceSheet,
			Aggregates: agg(map[string]int64{
				"total_assets":        1_000_000,
				"total_liabilities":   600_000,
				"equity":              400_000,
				"current_assets":      500_000,
				"current_liabilities": 250_000,
			}),
			Upload: &domain.UploadMetadata{
				FileName:  "balance_sheet.xlsx",
				SizeBytes: 48_213,
				MimeType:  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			},
		},
		"profit_and_loss": {
			Kind: domain.DocProfitAndLoss,
			Aggregates: agg(map[string]int64{
				"revenue":            12_000_000,
				"direct_costs":       9_000_000,
				"gross_profit":       3_000_000,
				"operating_expenses": 2_000_000,
				"other_expenses":     100_000,
				"other_income":       50_000,
				"net_profit":         950_000,
			}),
		},
		"trial_balance": {
			Kind: domain.DocTrialBalance,
			Aggregates: agg(map[string]int64{
				"total_debit":  5_000_000,
				"total_credit": 5_000_000,
			}),
		},
		"gst_reconciliation": {
			Kind: domain.DocGSTReconciliation,
			Aggregates: agg(map[string]int64{
				"books_turnover":  12_000_000,
				"gstr3b_turnover": 12_250_000,
				"itc_claimed":     400_000,
				"gstr2b_itc":      400_000,
			}),
			FilingsTimely: &timely,
		},
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /v1/clients/{id}/summaries/{kind}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 5 || parts[0] != "v1" || parts[1] != "clients" || parts[3] != "summaries" {
			http.NotFound(w, r)
			return
		}
		sum, ok := summaries[parts[4]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sum)
	}))
}

func newServer(t *testing.T, extractorURL string) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	table := refdata.Default(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	metrics := observability.NewMetrics()

	resilienceCfg := resilience.Config{
		MaxRetries:     2,
		InitialBackoff: 10 * time.Millisecond,
		MaxConcurrency: 10,
	}
	cb := resilience.NewCircuitBreaker("extractor-integration")
	extractor := client.NewExtractorClient(&http.Client{Timeout: 5 * time.Second}, extractorURL, cb, resilienceCfg)

	reviewSvc := service.NewReview(
		storage.NewMemory(),
		extractor,
		service.NewCompliance(table, logger),
		service.NewValidation(table, logger),
		cache.New[*domain.ReviewResult](time.Minute),
		metrics,
		logger,
	)

	return handler.NewRouter(reviewSvc, metrics, handler.RouterConfig{JWTSecret: testSecret}, logger)
}

func signToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "reviewer-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestIntegration_FullReviewFlow profiles a client, runs a review that
// pulls summaries from the mock extraction service, and reads back the
// assembled report.
func TestIntegration_FullReviewFlow(t *testing.T) {
	extractorSrv := mockExtractorServer(t)
	defer extractorSrv.Close()

	router := newServer(t, extractorSrv.URL)
	token := signToken(t)

	// Unauthenticated requests are rejected up front.
	if rec := doRequest(t, router, http.MethodGet, "/v1/usage", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// Profile a GST-registered partnership above the tax-audit limit.
	profileBody := map[string]any{
		"name":                    "Mehta & Associates",
		"entity_type":             "partnership",
		"nature_of_business":      "wholesale trading",
		"financial_year":          "2024-25",
		"turnover":                12_000_000,
		"gst_status":              "registered",
		"previous_year_available": false,
	}
	rec := doRequest(t, router, http.MethodPost, "/v1/clients/c-integration-1/profile", token, profileBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save profile: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Requirements reflect the derived obligations.
	rec = doRequest(t, router, http.MethodGet, "/v1/clients/c-integration-1/requirements", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("requirements: expected 200, got %d", rec.Code)
	}
	var outcome domain.ComplianceOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !outcome.AuditApplicable {
		t.Error("expected audit applicable for a partnership above the limit")
	}

	// Run the review; summaries come from the mock extractor.
	rec = doRequest(t, router, http.MethodPost, "/v1/clients/c-integration-1/review", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result domain.ReviewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Report == nil || len(result.Report.Sections) != 6 {
		t.Fatalf("expected a six-section report, got %+v", result.Report)
	}
	// The extractor's GSTR-3B figure disagrees with books by 250,000.
	if got := result.Validation.Count(domain.SeverityHighRisk); got != 1 {
		t.Errorf("expected exactly the GST turnover mismatch as high risk, got %d", got)
	}
	if len(result.Report.Uploads) != 1 || result.Report.Uploads[0].FileName != "balance_sheet.xlsx" {
		t.Errorf("expected the upload audit trail, got %v", result.Report.Uploads)
	}

	// Report and usage are durable after the run.
	rec = doRequest(t, router, http.MethodGet, "/v1/clients/c-integration-1/report", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", rec.Code)
	}
	var report domain.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.ID != result.Report.ID {
		t.Errorf("expected the same report back, got %s vs %s", report.ID, result.Report.ID)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/usage", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("usage: expected 200, got %d", rec.Code)
	}
	var usage map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &usage); err != nil {
		t.Fatalf("decode usage: %v", err)
	}
	if usage["usage_count"] != 1 {
		t.Errorf("expected usage_count 1, got %d", usage["usage_count"])
	}
}
