package domain

// RequiredDocument pairs a conditionally required document kind with the
// human-readable justification for requesting it.
type RequiredDocument struct {
	Kind   DocumentKind `json:"kind"`
	Reason string       `json:"reason"`
}

// ComplianceFlags marks which statutory obligations apply to the client.
// IncomeTax is true for every profile.
type ComplianceFlags struct {
	GST       bool `json:"gst"`
	IncomeTax bool `json:"income_tax"`
	TDS       bool `json:"tds"`
	Audit     bool `json:"audit"`
	MCA       bool `json:"mca"`
}

// ComplianceOutcome is the deterministic derivation from a ClientProfile
// against the reference table. It is recomputed whenever the profile
// changes and never mutated in place.
type ComplianceOutcome struct {
	AuditApplicable bool `json:"audit_applicable"`
	// AuditBasis names the statutory rule that decided applicability.
	AuditBasis string `json:"audit_basis"`

	MandatoryDocuments   []DocumentKind     `json:"mandatory_documents"`
	ConditionalDocuments []RequiredDocument `json:"conditional_documents"`

	Flags ComplianceFlags `json:"flags"`
}

// MandatoryDocumentSet is the fixed mandatory triple present in every
// outcome regardless of profile.
func MandatoryDocumentSet() []DocumentKind {
	return []DocumentKind{DocBalanceSheet, DocProfitAndLoss, DocTrialBalance}
}
