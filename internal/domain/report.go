package domain

import "time"

// Report section titles, in normative order.
const (
	ReportSecExecutiveSummary = "Executive Summary"
	ReportSecKeyObservations  = "Key Observations"
	ReportSecClarifications   = "Items Requiring Clarification"
	ReportSecHighRisk         = "High-Risk Areas"
	ReportSecCompliance       = "Compliance Status"
	ReportSecNextSteps        = "Next Steps"
)

// ReportDisclaimer is appended to every assembled report verbatim.
const ReportDisclaimer = "This report is generated from unaudited financial summaries supplied by the client and is intended for internal review purposes only. It does not constitute an audit opinion, legal advice, or tax advice. Statutory thresholds are applied to declared figures and must be re-confirmed against final audited accounts."

// ReportSection is either free prose or a bullet list, never both.
type ReportSection struct {
	Title   string   `json:"title"`
	Prose   string   `json:"prose,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

// Report is the assembled six-section review document. Field names and
// section order form the external contract for any renderer.
type Report struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	ClientName    string          `json:"client_name"`
	FinancialYear string          `json:"financial_year"`
	ReportDate    time.Time       `json:"report_date"`
	Sections      []ReportSection `json:"sections"`
	Disclaimer    string          `json:"disclaimer"`

	// Uploads is the audit trail of the documents behind the review.
	Uploads []UploadMetadata `json:"uploads,omitempty"`
}

// ReviewResult is one finished review cycle for a client: the immutable
// inputs snapshot, the derived outcome, the grouped findings, and the
// assembled report.
type ReviewResult struct {
	ID         string             `json:"id"`
	ClientID   string             `json:"client_id"`
	Profile    *ClientProfile     `json:"profile"`
	Outcome    *ComplianceOutcome `json:"outcome"`
	Validation *ValidationResult  `json:"validation"`
	Report     *Report            `json:"report"`
	CreatedAt  time.Time          `json:"created_at"`
}
