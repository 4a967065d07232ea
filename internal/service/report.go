package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/auditlens/auditlens-go/internal/domain"
)

// AssembleReport builds the fixed six-section review document from the
// derived outcome and grouped findings. It is deterministic and
// side-effect-free: the same inputs with the same reportDate produce an
// identical report. The caller assigns the report ID.
func AssembleReport(profile *domain.ClientProfile, outcome *domain.ComplianceOutcome, validation *domain.ValidationResult, reportDate time.Time) *domain.Report {
	normal := validation.BySeverity(domain.SeverityNormal)
	clarifications := validation.BySeverity(domain.SeverityRequiresClarification)
	highRisk := validation.BySeverity(domain.SeverityHighRisk)

	return &domain.Report{
		Title:         fmt.Sprintf("Financial Statement Review — %s", profile.Name),
		ClientName:    profile.Name,
		FinancialYear: profile.FinancialYear,
		ReportDate:    reportDate,
		Sections: []domain.ReportSection{
			executiveSummary(profile, outcome, len(highRisk), len(clarifications), len(normal)),
			bulletSection(domain.ReportSecKeyObservations, observationStatements(normal),
				"No notable observations were recorded for the period under review."),
			bulletSection(domain.ReportSecClarifications, withDocumentErrors(messages(clarifications), validation.DocumentErrors),
				"No items require clarification."),
			bulletSection(domain.ReportSecHighRisk, messages(highRisk),
				"No high-risk areas were identified."),
			complianceSection(outcome),
			nextSteps(outcome, len(highRisk), len(clarifications)),
		},
		Disclaimer: domain.ReportDisclaimer,
	}
}

func executiveSummary(profile *domain.ClientProfile, outcome *domain.ComplianceOutcome, highRisk, clarifications, observations int) domain.ReportSection {
	auditLine := "Audit is not applicable on the declared figures."
	if outcome.AuditApplicable {
		auditLine = "Audit is applicable: " + outcome.AuditBasis + "."
	}
	return domain.ReportSection{
		Title: domain.ReportSecExecutiveSummary,
		Prose: fmt.Sprintf(
			"Review of %s (%s) for %s. The submitted statements produced %d high-risk finding(s), %d item(s) requiring clarification, and %d informational observation(s). %s",
			profile.Name, entityLabel(profile.EntityType), profile.FinancialYear,
			highRisk, clarifications, observations, auditLine),
	}
}

func entityLabel(t domain.EntityType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

func bulletSection(title string, bullets []string, emptyProse string) domain.ReportSection {
	if len(bullets) == 0 {
		return domain.ReportSection{Title: title, Prose: emptyProse}
	}
	return domain.ReportSection{Title: title, Bullets: bullets}
}

// observationStatements rewords Normal findings as flat statements.
func observationStatements(findings []domain.Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, strings.TrimSuffix(f.Message, ".")+".")
	}
	return out
}

func messages(findings []domain.Finding) []string {
	var out []string
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

func withDocumentErrors(bullets []string, docErrs []domain.DocumentError) []string {
	for _, de := range docErrs {
		bullets = append(bullets, fmt.Sprintf("Checks were skipped for %s: %s", de.Kind, de.Message))
	}
	return bullets
}

func complianceSection(outcome *domain.ComplianceOutcome) domain.ReportSection {
	var bullets []string

	flagLine := func(applies bool, label string) {
		status := "not applicable"
		if applies {
			status = "applicable"
		}
		bullets = append(bullets, fmt.Sprintf("%s: %s", label, status))
	}
	flagLine(outcome.Flags.GST, "GST")
	flagLine(outcome.Flags.IncomeTax, "Income tax")
	flagLine(outcome.Flags.TDS, "TDS")
	flagLine(outcome.Flags.Audit, "Audit")
	flagLine(outcome.Flags.MCA, "MCA filings")

	for _, doc := range outcome.ConditionalDocuments {
		bullets = append(bullets, fmt.Sprintf("Required: %s — %s", docLabel(doc.Kind), doc.Reason))
	}

	return domain.ReportSection{Title: domain.ReportSecCompliance, Bullets: bullets}
}

func docLabel(kind domain.DocumentKind) string {
	return strings.ReplaceAll(string(kind), "_", " ")
}

func nextSteps(outcome *domain.ComplianceOutcome, highRisk, clarifications int) domain.ReportSection {
	var bullets []string
	if highRisk > 0 {
		bullets = append(bullets, "Resolve the high-risk findings before any filing; these indicate arithmetic or reconciliation failures in the statements.")
	}
	if clarifications > 0 {
		bullets = append(bullets, "Obtain client explanations for each item requiring clarification and retain them on file.")
	}
	if outcome.AuditApplicable {
		bullets = append(bullets, "Engage the auditor early; audit applicability has been determined on declared turnover.")
	}
	bullets = append(bullets, "Re-run the review once final figures are available to confirm threshold determinations.")
	return domain.ReportSection{Title: domain.ReportSecNextSteps, Bullets: bullets}
}
