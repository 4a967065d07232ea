package service

import (
	"github.com/shopspring/decimal"

	"github.com/auditlens/auditlens-go/internal/domain"
)

var daysInYear = decimal.NewFromInt(365)

// ratioChecks reports the standard review ratios as Normal informational
// findings, with prior-year comparison when prior summaries are present.
// Ratios are observational only; the liquidity pass/fail test lives in the
// structural group. A ratio whose denominator is zero is skipped rather
// than reported as an error.
func (s *ValidationService) ratioChecks(bs, pl *domain.StatementSummary) []domain.Finding {
	findings := []domain.Finding{}

	if pl != nil {
		revenue, _ := pl.Aggregate(domain.AggRevenue)
		gross, _ := pl.Aggregate(domain.AggGrossProfit)
		net, _ := pl.Aggregate(domain.AggNetProfit)

		if !revenue.IsZero() {
			findings = appendRatio(findings, "ratio_gross_margin", "Gross profit margin",
				gross.Div(revenue).Mul(hundred), "%", priorMargin(pl, domain.AggGrossProfit))
			findings = appendRatio(findings, "ratio_net_margin", "Net profit margin",
				net.Div(revenue).Mul(hundred), "%", priorMargin(pl, domain.AggNetProfit))
		}
	}

	if bs != nil {
		currentAssets, _ := bs.Aggregate(domain.AggCurrentAssets)
		currentLiabilities, _ := bs.Aggregate(domain.AggCurrentLiabilities)
		liabilities, _ := bs.Aggregate(domain.AggTotalLiabilities)
		equity, _ := bs.Aggregate(domain.AggEquity)

		if !currentLiabilities.IsZero() {
			findings = appendRatio(findings, "ratio_current", "Current ratio",
				currentAssets.Div(currentLiabilities), "", priorRatio(bs, domain.AggCurrentAssets, domain.AggCurrentLiabilities))
		}
		if !equity.IsZero() {
			findings = appendRatio(findings, "ratio_debt_equity", "Debt-equity ratio",
				liabilities.Div(equity), "", priorRatio(bs, domain.AggTotalLiabilities, domain.AggEquity))
		}
	}

	if bs != nil && pl != nil {
		revenue, _ := pl.Aggregate(domain.AggRevenue)
		directCosts, _ := pl.Aggregate(domain.AggDirectCosts)

		if receivables, ok := bs.Aggregate(domain.AggTradeReceivables); ok && !revenue.IsZero() {
			findings = appendRatio(findings, "ratio_debtor_days", "Debtor days",
				receivables.Div(revenue).Mul(daysInYear), " days", nil)
		}
		if payables, ok := bs.Aggregate(domain.AggTradePayables); ok && !directCosts.IsZero() {
			findings = appendRatio(findings, "ratio_creditor_days", "Creditor days",
				payables.Div(directCosts).Mul(daysInYear), " days", nil)
		}
	}

	return findings
}

func appendRatio(findings []domain.Finding, check, label string, value decimal.Decimal, unit string, prior *decimal.Decimal) []domain.Finding {
	if prior != nil {
		return append(findings, finding(domain.SeverityNormal, check,
			"%s is %s%s (prior year: %s%s)", label, value.StringFixed(2), unit, prior.StringFixed(2), unit))
	}
	return append(findings, finding(domain.SeverityNormal, check,
		"%s is %s%s", label, value.StringFixed(2), unit))
}

// priorMargin returns the prior-year percentage of aggregate over revenue,
// or nil when the prior summary cannot support it.
func priorMargin(pl *domain.StatementSummary, key string) *decimal.Decimal {
	if pl.Prior == nil {
		return nil
	}
	revenue, ok := pl.Prior.Aggregate(domain.AggRevenue)
	if !ok || revenue.IsZero() {
		return nil
	}
	num, ok := pl.Prior.Aggregate(key)
	if !ok {
		return nil
	}
	v := num.Div(revenue).Mul(hundred)
	return &v
}

// priorRatio returns the prior-year numerator/denominator ratio, or nil.
func priorRatio(bs *domain.StatementSummary, numKey, denKey string) *decimal.Decimal {
	if bs.Prior == nil {
		return nil
	}
	den, ok := bs.Prior.Aggregate(denKey)
	if !ok || den.IsZero() {
		return nil
	}
	num, ok := bs.Prior.Aggregate(numKey)
	if !ok {
		return nil
	}
	v := num.Div(den)
	return &v
}
