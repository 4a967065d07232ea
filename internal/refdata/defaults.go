package refdata

import (
	"time"

	"github.com/shopspring/decimal"
)

func amt(n int64) Value { return Value{Amount: decimal.NewFromInt(n)} }
func txt(s string) Value { return Value{Text: s} }

// Default returns the built-in reference table effective at asOf. The
// figures are the currently notified values in reference currency units;
// operators load updated snapshots when thresholds are re-notified.
func Default(asOf time.Time) *Table {
	fy := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)

	return New(asOf,
		Snapshot{
			Category:      CategoryAudit,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyBusinessTurnover:    amt(10_000_000),
				KeyProfessionTurnover:  amt(5_000_000),
				KeyPartnershipTurnover: amt(10_000_000),
				KeyLLPTurnover:         amt(4_000_000),
				KeyLLPContribution:     amt(2_500_000),
			},
		},
		Snapshot{
			Category:      CategoryTDS,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyTDSTurnover: amt(10_000_000),
			},
		},
		Snapshot{
			Category:      CategoryCash,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyCashPaymentLimit: amt(10_000),
			},
		},
		Snapshot{
			Category:      CategoryDocuments,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyBankStatementLevel: amt(5_000_000),
			},
		},
		Snapshot{
			Category:      CategoryVariance,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyAssetVariancePct: amt(20),
			},
		},
		Snapshot{
			Category:      CategoryDisallowable,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyExpenseKeywords: txt("personal,penalty,fine,political donation"),
			},
		},
		Snapshot{
			Category:      CategoryDueDates,
			EffectiveFrom: fy,
			Values: map[string]Value{
				KeyGSTR3BDue:    txt("20th of the following month"),
				KeyITRAuditDue:  txt("31 October following the financial year"),
				KeyITRPlainDue:  txt("31 July following the financial year"),
				KeyMCAAnnualDue: txt("within 60 days of the annual general meeting"),
			},
		},
	)
}
