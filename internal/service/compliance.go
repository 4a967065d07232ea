package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/port"
	"github.com/auditlens/auditlens-go/internal/refdata"
)

var complianceTracer = otel.Tracer("service.compliance")

// ComplianceService derives statutory obligations from a client profile
// against the injected reference table. Derivation is deterministic and
// does no I/O: the same profile and table always yield the same outcome.
type ComplianceService struct {
	table  port.ReferenceTable
	logger *zap.Logger
}

// NewCompliance creates a ComplianceService.
func NewCompliance(table port.ReferenceTable, logger *zap.Logger) *ComplianceService {
	return &ComplianceService{table: table, logger: logger}
}

// Derive computes audit applicability, the required-document set, and the
// compliance flags for one profile. It fails only on malformed input
// (ErrInvalidProfile) or a reference-table miss (ErrReferenceDataMissing,
// fail closed).
func (s *ComplianceService) Derive(ctx context.Context, profile *domain.ClientProfile) (*domain.ComplianceOutcome, error) {
	_, span := complianceTracer.Start(ctx, "ComplianceService.Derive")
	defer span.End()

	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	applicable, basis, err := s.auditApplicability(profile)
	if err != nil {
		return nil, err
	}

	conditional, err := s.conditionalDocuments(profile, applicable)
	if err != nil {
		return nil, err
	}

	flags, err := s.complianceFlags(profile, applicable)
	if err != nil {
		return nil, err
	}

	outcome := &domain.ComplianceOutcome{
		AuditApplicable:      applicable,
		AuditBasis:           basis,
		MandatoryDocuments:   domain.MandatoryDocumentSet(),
		ConditionalDocuments: conditional,
		Flags:                flags,
	}

	s.logger.Debug("compliance derived",
		zap.String("client_id", profile.ClientID),
		zap.String("entity_type", string(profile.EntityType)),
		zap.Bool("audit_applicable", applicable),
		zap.String("audit_basis", basis),
		zap.Int("conditional_documents", len(conditional)),
	)

	return outcome, nil
}

func validateProfile(profile *domain.ClientProfile) error {
	if profile == nil {
		return &domain.ErrInvalidProfile{Field: "profile", Message: "required"}
	}
	if !domain.ValidEntityTypes[profile.EntityType] {
		return &domain.ErrInvalidProfile{
			Field:   "entity_type",
			Message: fmt.Sprintf("unknown entity type '%s'", profile.EntityType),
		}
	}
	if profile.Turnover.IsNegative() {
		return &domain.ErrInvalidProfile{Field: "turnover", Message: "must be non-negative"}
	}
	if profile.CapitalContribution.IsNegative() {
		return &domain.ErrInvalidProfile{Field: "capital_contribution", Message: "must be non-negative"}
	}
	return nil
}

// auditApplicability evaluates the ordered rule chain; the first matching
// rule wins. All comparisons are strict inequalities against declared
// turnover.
func (s *ComplianceService) auditApplicability(profile *domain.ClientProfile) (bool, string, error) {
	// Companies are audited under the Companies Act unconditionally.
	if profile.IsCompany() {
		return true, "statutory audit under the Companies Act", nil
	}

	if profile.EntityType == domain.EntityLLP {
		turnoverLimit, err := s.table.Amount(refdata.CategoryAudit, refdata.KeyLLPTurnover)
		if err != nil {
			return false, "", err
		}
		contribLimit, err := s.table.Amount(refdata.CategoryAudit, refdata.KeyLLPContribution)
		if err != nil {
			return false, "", err
		}
		if profile.Turnover.GreaterThan(turnoverLimit) || profile.CapitalContribution.GreaterThan(contribLimit) {
			return true, "LLP audit: turnover or capital contribution above the LLP Act limits", nil
		}
		return false, "LLP below both the turnover and contribution limits", nil
	}

	if profile.EntityType == domain.EntityPartnership {
		limit, err := s.table.Amount(refdata.CategoryAudit, refdata.KeyPartnershipTurnover)
		if err != nil {
			return false, "", err
		}
		if profile.Turnover.GreaterThan(limit) {
			return true, "tax audit: partnership turnover above the prescribed limit", nil
		}
		return false, "partnership turnover within the prescribed limit", nil
	}

	// Individuals, proprietorships, and other entities fall under the
	// profession or business receipts threshold.
	key := refdata.KeyBusinessTurnover
	basis := "tax audit: business turnover above the prescribed limit"
	within := "business turnover within the prescribed limit"
	if profile.IsProfession() {
		key = refdata.KeyProfessionTurnover
		basis = "tax audit: professional receipts above the prescribed limit"
		within = "professional receipts within the prescribed limit"
	}
	limit, err := s.table.Amount(refdata.CategoryAudit, key)
	if err != nil {
		return false, "", err
	}
	if profile.Turnover.GreaterThan(limit) {
		return true, basis, nil
	}
	return false, within, nil
}

// conditionalDocuments appends requirements in fixed evaluation order so
// reports reproduce byte-identically for the same profile.
func (s *ComplianceService) conditionalDocuments(profile *domain.ClientProfile, auditApplicable bool) ([]domain.RequiredDocument, error) {
	var docs []domain.RequiredDocument

	if profile.GSTStatus == domain.GSTRegistered {
		docs = append(docs, domain.RequiredDocument{
			Kind:   domain.DocGSTReturns,
			Reason: "client is GST registered; filed returns are needed for turnover reconciliation",
		})
	}

	bankLevel, err := s.table.Amount(refdata.CategoryDocuments, refdata.KeyBankStatementLevel)
	if err != nil {
		return nil, err
	}
	if profile.Turnover.GreaterThan(bankLevel) {
		docs = append(docs, domain.RequiredDocument{
			Kind:   domain.DocBankStatements,
			Reason: fmt.Sprintf("turnover exceeds %s; bank statements are needed to verify receipts", bankLevel.StringFixed(0)),
		})
	}

	if profile.PreviousYearAvailable {
		docs = append(docs, domain.RequiredDocument{
			Kind:   domain.DocPreviousYear,
			Reason: "previous-year financials are available and enable variance checks",
		})
	}

	if auditApplicable {
		docs = append(docs, domain.RequiredDocument{
			Kind:   domain.DocAuditReport,
			Reason: "audit is applicable; the signed audit report must accompany the filing",
		})
	}

	return docs, nil
}

func (s *ComplianceService) complianceFlags(profile *domain.ClientProfile, auditApplicable bool) (domain.ComplianceFlags, error) {
	tdsLimit, err := s.table.Amount(refdata.CategoryTDS, refdata.KeyTDSTurnover)
	if err != nil {
		return domain.ComplianceFlags{}, err
	}

	return domain.ComplianceFlags{
		GST:       profile.GSTStatus == domain.GSTRegistered,
		IncomeTax: true,
		TDS:       profile.Turnover.GreaterThan(tdsLimit),
		Audit:     auditApplicable,
		MCA: profile.EntityType == domain.EntityPrivateCompany ||
			profile.EntityType == domain.EntityPublicCompany ||
			profile.EntityType == domain.EntityLLP,
	}, nil
}
