// Package refdata holds the statutory threshold and reference tables the
// deriver and validator read from. Values change by fiscal year, so the
// table is an injected dependency rather than compiled-in constants, and
// every category is versioned by an effective-from date.
package refdata

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/auditlens/auditlens-go/internal/domain"
)

// Category names. Keys within a category are free-form strings.
const (
	CategoryAudit        = "audit_thresholds"
	CategoryTDS          = "tds_thresholds"
	CategoryCash         = "cash_limits"
	CategoryDocuments    = "document_thresholds"
	CategoryVariance     = "variance_bands"
	CategoryDisallowable = "disallowable_expenses"
	CategoryDueDates     = "due_dates"
)

// Keys used by the deriver and validator.
const (
	KeyBusinessTurnover    = "business_turnover"
	KeyProfessionTurnover  = "profession_turnover"
	KeyPartnershipTurnover = "partnership_turnover"
	KeyLLPTurnover         = "llp_turnover"
	KeyLLPContribution     = "llp_contribution"
	KeyTDSTurnover         = "tds_turnover"
	KeyCashPaymentLimit    = "cash_payment_limit"
	KeyBankStatementLevel  = "bank_statement_turnover"
	KeyAssetVariancePct    = "total_assets_pct"
	KeyExpenseKeywords     = "expense_keywords"
	KeyGSTR3BDue           = "gstr3b_monthly"
	KeyITRAuditDue         = "income_tax_audit"
	KeyITRPlainDue         = "income_tax_plain"
	KeyMCAAnnualDue        = "mca_annual_return"
)

// Value is one reference entry: numeric thresholds carry Amount, textual
// entries (due dates, keyword lists) carry Text.
type Value struct {
	Amount decimal.Decimal
	Text   string
}

// Snapshot is the full value set of one category effective from a date.
type Snapshot struct {
	Category      string
	EffectiveFrom time.Time
	Values        map[string]Value
}

// Table is a read-only, versioned reference table. Lookups fail closed:
// a miss surfaces ErrReferenceDataMissing instead of a default, because a
// silently assumed "not applicable" is a compliance risk.
type Table struct {
	snapshots map[string][]Snapshot // per category, sorted by EffectiveFrom asc
	asOf      time.Time
}

// New builds a table from snapshots, effective as of the given date.
func New(asOf time.Time, snapshots ...Snapshot) *Table {
	t := &Table{snapshots: make(map[string][]Snapshot), asOf: asOf}
	for _, s := range snapshots {
		t.snapshots[s.Category] = append(t.snapshots[s.Category], s)
	}
	for cat := range t.snapshots {
		sort.Slice(t.snapshots[cat], func(i, j int) bool {
			return t.snapshots[cat][i].EffectiveFrom.Before(t.snapshots[cat][j].EffectiveFrom)
		})
	}
	return t
}

// AsOf returns a view of the same snapshots effective at a different date.
func (t *Table) AsOf(date time.Time) *Table {
	return &Table{snapshots: t.snapshots, asOf: date}
}

// Lookup returns the value for (category, key) from the latest snapshot of
// the category whose EffectiveFrom is not after the table's as-of date.
func (t *Table) Lookup(category, key string) (Value, error) {
	snaps := t.snapshots[category]
	for i := len(snaps) - 1; i >= 0; i-- {
		if snaps[i].EffectiveFrom.After(t.asOf) {
			continue
		}
		if v, ok := snaps[i].Values[key]; ok {
			return v, nil
		}
		break // older snapshots are superseded wholesale, not merged
	}
	return Value{}, &domain.ErrReferenceDataMissing{Category: category, Key: key}
}

// Amount is a Lookup that returns the numeric value.
func (t *Table) Amount(category, key string) (decimal.Decimal, error) {
	v, err := t.Lookup(category, key)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return v.Amount, nil
}

// Text is a Lookup that returns the textual value.
func (t *Table) Text(category, key string) (string, error) {
	v, err := t.Lookup(category, key)
	if err != nil {
		return "", err
	}
	return v.Text, nil
}
