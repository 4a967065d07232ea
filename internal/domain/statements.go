package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies one financial-statement document.
type DocumentKind string

const (
	DocBalanceSheet      DocumentKind = "balance_sheet"
	DocProfitAndLoss     DocumentKind = "profit_and_loss"
	DocTrialBalance      DocumentKind = "trial_balance"
	DocGSTReconciliation DocumentKind = "gst_reconciliation"

	// Conditional requirement kinds. These never carry statement summaries;
	// they only appear in the required-documents list.
	DocGSTReturns         DocumentKind = "gst_returns"
	DocBankStatements     DocumentKind = "bank_statements"
	DocPreviousYear       DocumentKind = "previous_year_financials"
	DocAuditReport        DocumentKind = "audit_report"
)

// Aggregate keys understood by the validator, grouped per document kind.
const (
	AggTotalAssets        = "total_assets"
	AggTotalLiabilities   = "total_liabilities"
	AggEquity             = "equity"
	AggCurrentAssets      = "current_assets"
	AggCurrentLiabilities = "current_liabilities"
	AggTradeReceivables   = "trade_receivables"
	AggTradePayables      = "trade_payables"

	AggRevenue           = "revenue"
	AggDirectCosts       = "direct_costs"
	AggGrossProfit       = "gross_profit"
	AggOperatingExpenses = "operating_expenses"
	AggOtherExpenses     = "other_expenses"
	AggOtherIncome       = "other_income"
	AggNetProfit         = "net_profit"

	AggTotalDebit  = "total_debit"
	AggTotalCredit = "total_credit"

	AggBooksTurnover  = "books_turnover"
	AggGSTR3BTurnover = "gstr3b_turnover"
	AggITCClaimed     = "itc_claimed"
	AggGSTR2BITC      = "gstr2b_itc"
)

// AccountGroup classifies a ledger account in the trial balance.
type AccountGroup string

const (
	GroupAsset     AccountGroup = "asset"
	GroupLiability AccountGroup = "liability"
	GroupEquity    AccountGroup = "equity"
	GroupIncome    AccountGroup = "income"
	GroupExpense   AccountGroup = "expense"
)

// AccountBalance is one ledger account line in a trial-balance summary.
// Provision marks contra/provision accounts whose balances legitimately run
// against their group's normal side.
type AccountBalance struct {
	Name      string          `json:"name"`
	Group     AccountGroup    `json:"group"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Provision bool            `json:"provision,omitempty"`
}

// Balance returns the debit-normal balance of the account.
func (a AccountBalance) Balance() decimal.Decimal {
	return a.Debit.Sub(a.Credit)
}

// PaymentMode is the settlement mode of an expense line item.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentBank   PaymentMode = "bank"
	PaymentCredit PaymentMode = "credit"
)

// ExpenseLineItem is one expense/account-level record used for keyword and
// cash-limit checks on the profit and loss statement.
type ExpenseLineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentMode PaymentMode     `json:"payment_mode"`
}

// UploadMetadata is the lightweight audit-trail record of the uploaded file
// behind a summary. The original file never reaches this service.
type UploadMetadata struct {
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	ModifiedAt time.Time `json:"modified_at"`
}

// StatementSummary is the structured numeric summary of one financial
// statement as produced by the upstream extraction step. Aggregates are
// keyed by the Agg* constants; which keys are required depends on Kind.
type StatementSummary struct {
	Kind       DocumentKind               `json:"kind"`
	Aggregates map[string]decimal.Decimal `json:"aggregates"`
	LineItems  []ExpenseLineItem          `json:"line_items,omitempty"`
	Accounts   []AccountBalance           `json:"accounts,omitempty"`

	// FilingsTimely is set on GST reconciliation summaries only.
	FilingsTimely *bool `json:"filings_timely,omitempty"`

	// Prior is the previous period's summary of the same kind, when the
	// client made it available. Used for variance and ratio comparisons.
	Prior *StatementSummary `json:"prior,omitempty"`

	Upload *UploadMetadata `json:"upload,omitempty"`
}

// Aggregate returns a named aggregate and whether it was supplied.
func (s *StatementSummary) Aggregate(key string) (decimal.Decimal, bool) {
	if s == nil || s.Aggregates == nil {
		return decimal.Decimal{}, false
	}
	v, ok := s.Aggregates[key]
	return v, ok
}
