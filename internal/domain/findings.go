package domain

// Severity classifies a finding.
type Severity string

const (
	SeverityNormal                Severity = "normal"
	SeverityRequiresClarification Severity = "requires_clarification"
	SeverityHighRisk              Severity = "high_risk"
)

// Finding is one flagged observation: a severity, a message, and the check
// that produced it. Findings are flat records with no cross-references.
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Check    string   `json:"check"`
}

// Section names, in the fixed output order of the validator.
const (
	SectionStructural       = "Structural Validation"
	SectionProfitAndLoss    = "P&L Review"
	SectionRatioAnalysis    = "Ratio Analysis"
	SectionGSTReview        = "GST Review"
	SectionComplianceStatus = "Compliance Status"
)

// FindingSection groups the findings of one check group.
type FindingSection struct {
	Name     string    `json:"name"`
	Findings []Finding `json:"findings"`
}

// DocumentError records a document whose checks were skipped because its
// summary was malformed or of an unknown kind. Sibling documents are
// unaffected.
type DocumentError struct {
	Kind DocumentKind `json:"kind"`
	Err  error        `json:"-"`
	// Message mirrors Err for serialization.
	Message string `json:"message"`
}

// ValidationResult is the ordered, section-grouped output of a validator
// run plus any per-document errors.
type ValidationResult struct {
	Sections       []FindingSection `json:"sections"`
	DocumentErrors []DocumentError  `json:"document_errors,omitempty"`
}

// BySeverity returns all findings of the given severity across sections,
// preserving section order.
func (r *ValidationResult) BySeverity(sev Severity) []Finding {
	var out []Finding
	for _, sec := range r.Sections {
		for _, f := range sec.Findings {
			if f.Severity == sev {
				out = append(out, f)
			}
		}
	}
	return out
}

// Count returns the number of findings with the given severity.
func (r *ValidationResult) Count(sev Severity) int {
	return len(r.BySeverity(sev))
}
