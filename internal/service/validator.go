package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/port"
)

var validatorTracer = otel.Tracer("service.validator")

// tolerance is the arithmetic slack for all identity checks: one paisa in
// reference currency units.
var tolerance = decimal.New(1, -2)

// requiredAggregates lists the aggregates a summary must carry per kind.
// A missing entry is ErrInvalidDocumentData naming the field; the rest of
// that document's checks are skipped but siblings run unaffected.
var requiredAggregates = map[domain.DocumentKind][]string{
	domain.DocBalanceSheet: {
		domain.AggTotalAssets, domain.AggTotalLiabilities, domain.AggEquity,
		domain.AggCurrentAssets, domain.AggCurrentLiabilities,
	},
	domain.DocProfitAndLoss: {
		domain.AggRevenue, domain.AggDirectCosts, domain.AggGrossProfit,
		domain.AggOperatingExpenses, domain.AggOtherExpenses,
		domain.AggOtherIncome, domain.AggNetProfit,
	},
	domain.DocTrialBalance: {
		domain.AggTotalDebit, domain.AggTotalCredit,
	},
	domain.DocGSTReconciliation: {
		domain.AggBooksTurnover, domain.AggGSTR3BTurnover,
		domain.AggITCClaimed, domain.AggGSTR2BITC,
	},
}

// ValidationService runs the fixed battery of arithmetic and structural
// checks over statement summaries and classifies each finding. The five
// check groups are independent: a failure in one never suppresses
// findings from another.
type ValidationService struct {
	table  port.ReferenceTable
	logger *zap.Logger
}

// NewValidation creates a ValidationService.
func NewValidation(table port.ReferenceTable, logger *zap.Logger) *ValidationService {
	return &ValidationService{table: table, logger: logger}
}

// Validate checks the supplied summaries against the derived compliance
// outcome and returns findings grouped by section in fixed order. The
// returned error covers caller misuse only; data problems on individual
// documents land in ValidationResult.DocumentErrors.
func (s *ValidationService) Validate(ctx context.Context, summaries []*domain.StatementSummary, outcome *domain.ComplianceOutcome) (*domain.ValidationResult, error) {
	_, span := validatorTracer.Start(ctx, "ValidationService.Validate")
	defer span.End()

	if outcome == nil {
		return nil, &domain.ErrValidation{Field: "outcome", Message: "compliance outcome is required"}
	}

	docs, docErrs := s.screenSummaries(summaries)

	result := &domain.ValidationResult{DocumentErrors: docErrs}

	bs := docs[domain.DocBalanceSheet]
	pl := docs[domain.DocProfitAndLoss]
	tb := docs[domain.DocTrialBalance]
	recon := docs[domain.DocGSTReconciliation]

	result.Sections = append(result.Sections, domain.FindingSection{
		Name:     domain.SectionStructural,
		Findings: s.structuralChecks(bs, tb),
	})
	result.Sections = append(result.Sections, domain.FindingSection{
		Name:     domain.SectionProfitAndLoss,
		Findings: s.profitAndLossChecks(pl),
	})
	result.Sections = append(result.Sections, domain.FindingSection{
		Name:     domain.SectionRatioAnalysis,
		Findings: s.ratioChecks(bs, pl),
	})
	if outcome.Flags.GST {
		result.Sections = append(result.Sections, domain.FindingSection{
			Name:     domain.SectionGSTReview,
			Findings: s.gstChecks(recon),
		})
	}
	result.Sections = append(result.Sections, domain.FindingSection{
		Name:     domain.SectionComplianceStatus,
		Findings: s.complianceStatusChecks(outcome),
	})

	span.SetAttributes(
		attribute.Int("findings.high_risk", result.Count(domain.SeverityHighRisk)),
		attribute.Int("findings.clarification", result.Count(domain.SeverityRequiresClarification)),
		attribute.Int("document_errors", len(docErrs)),
	)
	s.logger.Debug("validation finished",
		zap.Int("sections", len(result.Sections)),
		zap.Int("high_risk", result.Count(domain.SeverityHighRisk)),
		zap.Int("requires_clarification", result.Count(domain.SeverityRequiresClarification)),
		zap.Int("document_errors", len(docErrs)),
	)

	return result, nil
}

// screenSummaries indexes summaries by kind and screens each for unknown
// kinds, duplicates, and missing required aggregates. A document that
// fails screening is excluded from all checks; the failure is recorded.
func (s *ValidationService) screenSummaries(summaries []*domain.StatementSummary) (map[domain.DocumentKind]*domain.StatementSummary, []domain.DocumentError) {
	docs := make(map[domain.DocumentKind]*domain.StatementSummary)
	var docErrs []domain.DocumentError

	record := func(kind domain.DocumentKind, err error) {
		docErrs = append(docErrs, domain.DocumentError{Kind: kind, Err: err, Message: err.Error()})
	}

	for _, sum := range summaries {
		if sum == nil {
			continue
		}
		required, known := requiredAggregates[sum.Kind]
		if !known {
			record(sum.Kind, &domain.ErrUnsupportedDocumentType{Kind: sum.Kind})
			continue
		}
		if _, dup := docs[sum.Kind]; dup {
			record(sum.Kind, &domain.ErrInvalidDocumentData{
				Document: sum.Kind, Field: "kind", Message: "duplicate summary for document kind",
			})
			continue
		}
		if missing := missingAggregate(sum, required); missing != "" {
			record(sum.Kind, &domain.ErrInvalidDocumentData{
				Document: sum.Kind, Field: missing, Message: "required aggregate missing",
			})
			continue
		}
		docs[sum.Kind] = sum
	}

	return docs, docErrs
}

func missingAggregate(sum *domain.StatementSummary, required []string) string {
	for _, key := range required {
		if _, ok := sum.Aggregate(key); !ok {
			return key
		}
	}
	return ""
}

// withinTolerance reports whether two amounts agree to the penny.
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func finding(sev domain.Severity, check, format string, args ...any) domain.Finding {
	return domain.Finding{
		Severity: sev,
		Check:    check,
		Message:  fmt.Sprintf(format, args...),
	}
}
