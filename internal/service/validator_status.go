package service

import (
	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/refdata"
)

// complianceStatusChecks restates each active obligation in prose, with
// the notified due date where the reference table carries one. Audit
// applicability derived from declared turnover is provisional until the
// final audited figures are known, so an applicable audit always carries a
// clarification alongside its status line.
func (s *ValidationService) complianceStatusChecks(outcome *domain.ComplianceOutcome) []domain.Finding {
	findings := []domain.Finding{}

	if outcome.Flags.GST {
		findings = append(findings, finding(domain.SeverityNormal, "compliance_flag",
			"GST obligations apply: periodic returns and annual reconciliation are due for the registration%s",
			s.dueDateSuffix(refdata.KeyGSTR3BDue)))
	}
	if outcome.Flags.IncomeTax {
		itrKey := refdata.KeyITRPlainDue
		if outcome.Flags.Audit {
			itrKey = refdata.KeyITRAuditDue
		}
		findings = append(findings, finding(domain.SeverityNormal, "compliance_flag",
			"Income tax return filing applies for the financial year under review%s",
			s.dueDateSuffix(itrKey)))
	}
	if outcome.Flags.TDS {
		findings = append(findings, finding(domain.SeverityNormal, "compliance_flag",
			"TDS obligations apply: tax must be deducted at source on qualifying payments and remitted with quarterly statements"))
	}
	if outcome.Flags.Audit {
		findings = append(findings, finding(domain.SeverityNormal, "compliance_flag",
			"Audit applies: %s", outcome.AuditBasis))
		findings = append(findings, finding(domain.SeverityRequiresClarification, "audit_provisional",
			"Audit applicability was determined from declared turnover and is provisional; re-confirm against final audited figures"))
	}
	if outcome.Flags.MCA {
		findings = append(findings, finding(domain.SeverityNormal, "compliance_flag",
			"MCA annual filings apply with the corporate registrar, independent of tax filings%s",
			s.dueDateSuffix(refdata.KeyMCAAnnualDue)))
	}

	return findings
}

// dueDateSuffix returns " (due <text>)" or "" when the table carries no
// due date for the key. Due dates are informational; a miss never blocks
// the status line itself.
func (s *ValidationService) dueDateSuffix(key string) string {
	text, err := s.table.Text(refdata.CategoryDueDates, key)
	if err != nil || text == "" {
		return ""
	}
	return " (due " + text + ")"
}
