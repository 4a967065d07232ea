package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/port"
)

var reviewTracer = otel.Tracer("service.review")

// ReviewService sequences one review cycle for a client: load the profile,
// derive compliance, gather statement summaries, validate, assemble the
// report, and persist the result. The rule core underneath is pure; this
// service owns the I/O around it.
type ReviewService struct {
	store      port.Store
	extractor  port.SummaryExtractor
	compliance *ComplianceService
	validator  *ValidationService
	cache      port.Cache[*domain.ReviewResult]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewReview creates a ReviewService.
func NewReview(store port.Store, extractor port.SummaryExtractor, compliance *ComplianceService, validator *ValidationService, cache port.Cache[*domain.ReviewResult], metrics *observability.Metrics, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		store:      store,
		extractor:  extractor,
		compliance: compliance,
		validator:  validator,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// SaveProfile validates and persists a profile, starting a new review
// cycle for the client. The previous cycle's cached result is dropped.
func (s *ReviewService) SaveProfile(ctx context.Context, profile *domain.ClientProfile) error {
	ctx, span := reviewTracer.Start(ctx, "ReviewService.SaveProfile")
	defer span.End()

	if err := validateProfile(profile); err != nil {
		return err
	}
	profile.CreatedAt = time.Now().UTC()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.cache.Delete(reviewCacheKey(profile.ClientID))

	s.logger.Info("profile saved, new review cycle started",
		zap.String("client_id", profile.ClientID),
		zap.String("entity_type", string(profile.EntityType)),
		zap.String("financial_year", profile.FinancialYear),
	)
	return nil
}

// Requirements returns the derive-only view for a stored profile.
func (s *ReviewService) Requirements(ctx context.Context, clientID string) (*domain.ComplianceOutcome, error) {
	ctx, span := reviewTracer.Start(ctx, "ReviewService.Requirements")
	defer span.End()

	profile, err := s.loadProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.compliance.Derive(ctx, profile)
}

// Run executes a full review. When inline summaries are supplied they are
// used as-is; otherwise the mandatory statements (plus the GST
// reconciliation for registered clients) are fetched concurrently from the
// extraction service. Extraction failures are scoped to their document so
// the rest of the review proceeds.
func (s *ReviewService) Run(ctx context.Context, clientID string, inline []*domain.StatementSummary) (*domain.ReviewResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := reviewTracer.Start(ctx, "ReviewService.Run")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", clientID))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("review", time.Since(start))
	}()

	profile, err := s.loadProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.compliance.Derive(ctx, profile)
	if err != nil {
		s.metrics.IncrReview("derive_error")
		return nil, err
	}

	summaries := inline
	if len(summaries) == 0 {
		summaries, err = s.fetchSummaries(ctx, clientID, outcome)
		if err != nil {
			s.metrics.IncrReview("extract_error")
			return nil, err
		}
	}

	validation, err := s.validator.Validate(ctx, summaries, outcome)
	if err != nil {
		s.metrics.IncrReview("validate_error")
		return nil, err
	}
	s.metrics.RecordFindings(
		validation.Count(domain.SeverityNormal),
		validation.Count(domain.SeverityRequiresClarification),
		validation.Count(domain.SeverityHighRisk),
	)

	report := AssembleReport(profile, outcome, validation, time.Now().UTC())
	report.ID = uuid.NewString()
	report.Uploads = uploadTrail(summaries)

	result := &domain.ReviewResult{
		ID:         report.ID,
		ClientID:   clientID,
		Profile:    profile,
		Outcome:    outcome,
		Validation: validation,
		Report:     report,
		CreatedAt:  report.ReportDate,
	}

	if err := s.store.SaveReview(ctx, result); err != nil {
		s.metrics.IncrReview("store_error")
		return nil, fmt.Errorf("save review: %w", err)
	}

	// The usage counter belongs to the shell: one increment per finalized
	// report, capped at 99 inside the store.
	usage, err := s.store.IncrementUsage(ctx)
	if err != nil {
		s.logger.Warn("usage counter increment failed", zap.Error(err))
	} else {
		s.metrics.SetUsage(usage)
	}

	s.cache.Set(reviewCacheKey(clientID), result)
	s.metrics.IncrReview("success")

	s.logger.Info("review finalized",
		zap.String("client_id", clientID),
		zap.String("report_id", report.ID),
		zap.Bool("audit_applicable", outcome.AuditApplicable),
		zap.Int("high_risk", validation.Count(domain.SeverityHighRisk)),
		zap.Int("requires_clarification", validation.Count(domain.SeverityRequiresClarification)),
		zap.Duration("took", time.Since(start)),
	)

	return result, nil
}

// LatestReview returns the most recent finished review for a client,
// served from cache when warm.
func (s *ReviewService) LatestReview(ctx context.Context, clientID string) (*domain.ReviewResult, error) {
	ctx, span := reviewTracer.Start(ctx, "ReviewService.LatestReview")
	defer span.End()

	if cached, ok := s.cache.Get(reviewCacheKey(clientID)); ok {
		s.metrics.IncrCacheHit("review")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("review")

	result, err := s.store.GetLatestReview(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(reviewCacheKey(clientID), result)
	return result, nil
}

// Usage returns the process-wide finalized-report counter.
func (s *ReviewService) Usage(ctx context.Context) (int, error) {
	return s.store.GetUsage(ctx)
}

// Profile returns the stored profile for a client.
func (s *ReviewService) Profile(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	return s.loadProfile(ctx, clientID)
}

// Ping reports store reachability, for health probes.
func (s *ReviewService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *ReviewService) loadProfile(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	profile, err := s.store.GetProfile(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: clientID}
	}
	return profile, nil
}

// fetchSummaries pulls the mandatory statements, plus the GST
// reconciliation for registered clients, concurrently from the extractor.
// A missing document from the extractor is not fatal: the validator
// reports absent documents through its own per-document scoping.
func (s *ReviewService) fetchSummaries(ctx context.Context, clientID string, outcome *domain.ComplianceOutcome) ([]*domain.StatementSummary, error) {
	kinds := append([]domain.DocumentKind{}, outcome.MandatoryDocuments...)
	if outcome.Flags.GST {
		kinds = append(kinds, domain.DocGSTReconciliation)
	}

	results := make([]*domain.StatementSummary, len(kinds))
	g, gCtx := errgroup.WithContext(ctx)

	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			sum, err := s.extractor.ExtractSummary(gCtx, clientID, kind)
			if err != nil {
				var notFound *domain.ErrNotFound
				if errors.As(err, &notFound) {
					s.logger.Warn("no extracted summary for document",
						zap.String("client_id", clientID),
						zap.String("kind", string(kind)),
					)
					return nil
				}
				s.metrics.IncrExternalError("extractor")
				return fmt.Errorf("extract %s: %w", kind, err)
			}
			results[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var summaries []*domain.StatementSummary
	for _, sum := range results {
		if sum != nil {
			summaries = append(summaries, sum)
		}
	}
	return summaries, nil
}

func uploadTrail(summaries []*domain.StatementSummary) []domain.UploadMetadata {
	var uploads []domain.UploadMetadata
	for _, sum := range summaries {
		if sum != nil && sum.Upload != nil {
			uploads = append(uploads, *sum.Upload)
		}
	}
	return uploads
}

func reviewCacheKey(clientID string) string {
	return "review:" + clientID
}
