package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/infra/cache"
	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/infra/storage"
	"github.com/auditlens/auditlens-go/internal/service"
)

// --- Mocks ---

type mockExtractor struct {
	mu        sync.Mutex
	summaries map[domain.DocumentKind]*domain.StatementSummary
	err       error
	calls     []domain.DocumentKind
}

func (m *mockExtractor) ExtractSummary(_ context.Context, _ string, kind domain.DocumentKind) (*domain.StatementSummary, error) {
	m.mu.Lock()
	m.calls = append(m.calls, kind)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	sum, ok := m.summaries[kind]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "summary", ID: string(kind)}
	}
	return sum, nil
}

// --- Tests ---

func newReview(extractor *mockExtractor) *service.ReviewService {
	logger := zap.NewNop()
	return service.NewReview(
		storage.NewMemory(),
		extractor,
		service.NewCompliance(testTable(), logger),
		service.NewValidation(testTable(), logger),
		cache.New[*domain.ReviewResult](time.Minute),
		observability.NewMetrics(),
		logger,
	)
}

func inlineSummaries() []*domain.StatementSummary {
	return []*domain.StatementSummary{
		balanceSheetFixture(), profitAndLossFixture(), trialBalanceFixture(), gstReconFixture(),
	}
}

func TestRun_WithInlineSummaries(t *testing.T) {
	extractor := &mockExtractor{}
	svc := newReview(extractor)
	ctx := context.Background()

	profile := profileFixture(domain.EntityPartnership, 12_000_000)
	profile.GSTStatus = domain.GSTRegistered
	if err := svc.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	result, err := svc.Run(ctx, "c-1", inlineSummaries())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if result.Report == nil || result.Report.ID == "" {
		t.Fatal("expected a report with an assigned ID")
	}
	if result.ID != result.Report.ID {
		t.Error("review result and report should share an ID")
	}
	if len(extractor.calls) != 0 {
		t.Errorf("inline summaries supplied; extractor should not be called, got %v", extractor.calls)
	}

	usage, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage != 1 {
		t.Errorf("expected usage 1 after one finalized report, got %d", usage)
	}
}

func TestRun_FetchesFromExtractor(t *testing.T) {
	extractor := &mockExtractor{
		summaries: map[domain.DocumentKind]*domain.StatementSummary{
			domain.DocBalanceSheet:  balanceSheetFixture(),
			domain.DocProfitAndLoss: profitAndLossFixture(),
			domain.DocTrialBalance:  trialBalanceFixture(),
			// GST reconciliation intentionally absent: ErrNotFound from
			// the extractor is tolerated, the validator flags the gap.
		},
	}
	svc := newReview(extractor)
	ctx := context.Background()

	profile := profileFixture(domain.EntityPartnership, 12_000_000)
	profile.GSTStatus = domain.GSTRegistered
	if err := svc.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	result, err := svc.Run(ctx, "c-1", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(extractor.calls) != 4 {
		t.Errorf("expected 4 extractor calls (3 mandatory + GST recon), got %d", len(extractor.calls))
	}

	var gstSection *domain.FindingSection
	for i := range result.Validation.Sections {
		if result.Validation.Sections[i].Name == domain.SectionGSTReview {
			gstSection = &result.Validation.Sections[i]
		}
	}
	if gstSection == nil {
		t.Fatal("expected a GST section for a registered client")
	}
	if len(gstSection.Findings) != 1 || gstSection.Findings[0].Check != "gst_data_missing" {
		t.Errorf("expected the missing-reconciliation clarification, got %v", gstSection.Findings)
	}
}

func TestRun_ExtractorFailureIsFatal(t *testing.T) {
	extractor := &mockExtractor{
		err: &domain.ErrExternalService{Service: "extractor", Err: errors.New("connection refused")},
	}
	svc := newReview(extractor)
	ctx := context.Background()

	if err := svc.SaveProfile(ctx, profileFixture(domain.EntityPartnership, 12_000_000)); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	_, err := svc.Run(ctx, "c-1", nil)
	var external *domain.ErrExternalService
	if !errors.As(err, &external) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestRun_WithoutProfile(t *testing.T) {
	svc := newReview(&mockExtractor{})

	_, err := svc.Run(context.Background(), "nobody", inlineSummaries())
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestReview_CacheAndNewCycle(t *testing.T) {
	svc := newReview(&mockExtractor{})
	ctx := context.Background()

	profile := profileFixture(domain.EntityPartnership, 12_000_000)
	if err := svc.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	ran, err := svc.Run(ctx, "c-1", inlineSummaries())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := svc.LatestReview(ctx, "c-1")
	if err != nil {
		t.Fatalf("latest review: %v", err)
	}
	if got.ID != ran.ID {
		t.Errorf("expected the finalized review, got %s", got.ID)
	}

	// Re-profiling starts a new cycle: the held review is discarded.
	if err := svc.SaveProfile(ctx, profileFixture(domain.EntityPartnership, 8_000_000)); err != nil {
		t.Fatalf("re-profile: %v", err)
	}
	_, err = svc.LatestReview(ctx, "c-1")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound after re-profiling, got %v", err)
	}
}

func TestRun_UsageCounterCapped(t *testing.T) {
	svc := newReview(&mockExtractor{})
	ctx := context.Background()

	if err := svc.SaveProfile(ctx, profileFixture(domain.EntityIndividual, 100_000)); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	for i := 0; i < storage.UsageCap+5; i++ {
		if _, err := svc.Run(ctx, "c-1", inlineSummaries()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	usage, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage != storage.UsageCap {
		t.Errorf("expected usage capped at %d, got %d", storage.UsageCap, usage)
	}
}

func TestRequirements(t *testing.T) {
	svc := newReview(&mockExtractor{})
	ctx := context.Background()

	profile := profileFixture(domain.EntityLLP, 5_000_000)
	if err := svc.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	outcome, err := svc.Requirements(ctx, "c-1")
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if !outcome.AuditApplicable {
		t.Error("LLP above the turnover limit should require audit")
	}
	if len(outcome.MandatoryDocuments) != 3 {
		t.Errorf("expected the mandatory triple, got %d", len(outcome.MandatoryDocuments))
	}
}
