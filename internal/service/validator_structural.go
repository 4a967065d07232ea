package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/refdata"
)

var hundred = decimal.NewFromInt(100)

// structuralChecks covers the balance-sheet and trial-balance identities,
// ledger-level anomalies, liquidity, and prior-period asset variance.
// Every check is guarded on its own inputs so one absent document does not
// suppress the others.
func (s *ValidationService) structuralChecks(bs, tb *domain.StatementSummary) []domain.Finding {
	findings := []domain.Finding{}

	if bs != nil {
		findings = append(findings, s.balanceSheetChecks(bs)...)
	}
	if tb != nil {
		findings = append(findings, s.trialBalanceChecks(tb)...)
	}

	return findings
}

func (s *ValidationService) balanceSheetChecks(bs *domain.StatementSummary) []domain.Finding {
	var findings []domain.Finding

	assets, _ := bs.Aggregate(domain.AggTotalAssets)
	liabilities, _ := bs.Aggregate(domain.AggTotalLiabilities)
	equity, _ := bs.Aggregate(domain.AggEquity)

	if !withinTolerance(assets, liabilities.Add(equity)) {
		diff := assets.Sub(liabilities.Add(equity)).Abs()
		findings = append(findings, finding(domain.SeverityHighRisk, "balance_sheet_identity",
			"Balance Sheet does not balance: total assets %s against liabilities plus equity %s, difference %s",
			assets.StringFixed(2), liabilities.Add(equity).StringFixed(2), diff.StringFixed(2)))
	}

	findings = append(findings, s.currentRatioCheck(bs)...)
	findings = append(findings, s.assetVarianceCheck(bs)...)

	return findings
}

func (s *ValidationService) currentRatioCheck(bs *domain.StatementSummary) []domain.Finding {
	currentAssets, _ := bs.Aggregate(domain.AggCurrentAssets)
	currentLiabilities, _ := bs.Aggregate(domain.AggCurrentLiabilities)

	// Zero current liabilities leaves the ratio undefined. Defined edge
	// case: flag for clarification instead of raising an error.
	if currentLiabilities.IsZero() {
		return []domain.Finding{finding(domain.SeverityRequiresClarification, "current_ratio",
			"Current ratio is undefined: current liabilities are zero against current assets of %s",
			currentAssets.StringFixed(2))}
	}

	ratio := currentAssets.Div(currentLiabilities)
	if ratio.LessThan(decimal.NewFromInt(1)) {
		return []domain.Finding{finding(domain.SeverityRequiresClarification, "current_ratio",
			"Liquidity concern: current ratio is %s, below 1.00", ratio.StringFixed(2))}
	}
	return nil
}

func (s *ValidationService) assetVarianceCheck(bs *domain.StatementSummary) []domain.Finding {
	if bs.Prior == nil {
		return nil
	}
	prior, ok := bs.Prior.Aggregate(domain.AggTotalAssets)
	if !ok || prior.IsZero() {
		return nil
	}
	current, _ := bs.Aggregate(domain.AggTotalAssets)

	band, err := s.table.Amount(refdata.CategoryVariance, refdata.KeyAssetVariancePct)
	if err != nil {
		// Fail closed on the variance band too: surface the miss as a
		// clarification finding rather than silently skipping the check.
		return []domain.Finding{finding(domain.SeverityRequiresClarification, "asset_variance", "%s", err.Error())}
	}

	pct := current.Sub(prior).Div(prior).Mul(hundred)
	if pct.Abs().GreaterThan(band) {
		return []domain.Finding{finding(domain.SeverityNormal, "asset_variance",
			"Total assets moved %s%% against the prior period (from %s to %s)",
			pct.StringFixed(1), prior.StringFixed(2), current.StringFixed(2))}
	}
	return nil
}

func (s *ValidationService) trialBalanceChecks(tb *domain.StatementSummary) []domain.Finding {
	var findings []domain.Finding

	debit, _ := tb.Aggregate(domain.AggTotalDebit)
	credit, _ := tb.Aggregate(domain.AggTotalCredit)

	if !withinTolerance(debit, credit) {
		diff := debit.Sub(credit).Abs()
		findings = append(findings, finding(domain.SeverityHighRisk, "trial_balance_tally",
			"Trial Balance does not tally: total debits %s against total credits %s, mismatch of %s",
			debit.StringFixed(2), credit.StringFixed(2), diff.StringFixed(2)))
	}

	mixed := 0
	var negativeAssets []string
	for _, acct := range tb.Accounts {
		if !acct.Debit.IsZero() && !acct.Credit.IsZero() {
			mixed++
		}
		if acct.Group == domain.GroupAsset && !acct.Provision && acct.Balance().IsNegative() {
			negativeAssets = append(negativeAssets, acct.Name)
		}
	}

	if mixed > 0 {
		findings = append(findings, finding(domain.SeverityRequiresClarification, "mixed_debit_credit",
			"%d account(s) carry both a debit and a credit balance; confirm these are not posting errors", mixed))
	}
	if len(negativeAssets) > 0 {
		findings = append(findings, finding(domain.SeverityRequiresClarification, "negative_asset_balance",
			"Negative balances in asset accounts: %s", strings.Join(negativeAssets, ", ")))
	}

	return findings
}
