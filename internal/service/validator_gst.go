package service

import (
	"github.com/auditlens/auditlens-go/internal/domain"
)

// gstChecks reconciles books figures against the filed GSTR-3B and the
// auto-drafted GSTR-2B. Runs only for GST-registered clients.
func (s *ValidationService) gstChecks(recon *domain.StatementSummary) []domain.Finding {
	if recon == nil {
		// The client is registered but supplied no reconciliation data;
		// the review cannot confirm the filed figures.
		return []domain.Finding{finding(domain.SeverityRequiresClarification, "gst_data_missing",
			"Client is GST registered but no GST reconciliation figures were provided")}
	}

	findings := []domain.Finding{}

	books, _ := recon.Aggregate(domain.AggBooksTurnover)
	filed, _ := recon.Aggregate(domain.AggGSTR3BTurnover)
	if !withinTolerance(books, filed) {
		diff := books.Sub(filed).Abs()
		findings = append(findings, finding(domain.SeverityHighRisk, "gst_turnover_reconciliation",
			"Turnover per books %s does not match GSTR-3B turnover %s; difference of %s",
			books.StringFixed(2), filed.StringFixed(2), diff.StringFixed(2)))
	}

	claimed, _ := recon.Aggregate(domain.AggITCClaimed)
	drafted, _ := recon.Aggregate(domain.AggGSTR2BITC)
	if !withinTolerance(claimed, drafted) {
		diff := claimed.Sub(drafted).Abs()
		findings = append(findings, finding(domain.SeverityRequiresClarification, "gst_itc_reconciliation",
			"Input tax credit claimed %s differs from the GSTR-2B figure %s by %s; reconcile before filing",
			claimed.StringFixed(2), drafted.StringFixed(2), diff.StringFixed(2)))
	}

	switch {
	case recon.FilingsTimely == nil:
		findings = append(findings, finding(domain.SeverityRequiresClarification, "gst_filing_timeliness",
			"GST filing timeliness was not reported; confirm all returns were filed by their due dates"))
	case !*recon.FilingsTimely:
		findings = append(findings, finding(domain.SeverityRequiresClarification, "gst_filing_timeliness",
			"One or more GST returns were filed late; late-fee and interest exposure should be quantified"))
	default:
		findings = append(findings, finding(domain.SeverityNormal, "gst_filing_timeliness",
			"GST returns were filed on time for the period under review"))
	}

	return findings
}
