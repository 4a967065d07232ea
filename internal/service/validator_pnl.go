package service

import (
	"strings"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/refdata"
)

// profitAndLossChecks recomputes the stated profit figures from their
// components and scans line items for disallowable-expense and cash-limit
// exposure under the statutory cash-payment provision.
func (s *ValidationService) profitAndLossChecks(pl *domain.StatementSummary) []domain.Finding {
	findings := []domain.Finding{}
	if pl == nil {
		return findings
	}

	revenue, _ := pl.Aggregate(domain.AggRevenue)
	directCosts, _ := pl.Aggregate(domain.AggDirectCosts)
	statedGross, _ := pl.Aggregate(domain.AggGrossProfit)
	opex, _ := pl.Aggregate(domain.AggOperatingExpenses)
	otherExpenses, _ := pl.Aggregate(domain.AggOtherExpenses)
	otherIncome, _ := pl.Aggregate(domain.AggOtherIncome)
	statedNet, _ := pl.Aggregate(domain.AggNetProfit)

	computedGross := revenue.Sub(directCosts)
	if !withinTolerance(computedGross, statedGross) {
		findings = append(findings, finding(domain.SeverityHighRisk, "gross_profit_recompute",
			"Gross Profit calculation mismatch: stated %s but revenue less direct costs gives %s",
			statedGross.StringFixed(2), computedGross.StringFixed(2)))
	}

	computedNet := computedGross.Sub(opex).Sub(otherExpenses).Add(otherIncome)
	if !withinTolerance(computedNet, statedNet) {
		findings = append(findings, finding(domain.SeverityHighRisk, "net_profit_recompute",
			"Net Profit calculation mismatch: stated %s but recomputation gives %s",
			statedNet.StringFixed(2), computedNet.StringFixed(2)))
	}

	findings = append(findings, s.disallowableExpenseScan(pl)...)
	findings = append(findings, s.cashPaymentCheck(pl)...)

	return findings
}

func (s *ValidationService) disallowableExpenseScan(pl *domain.StatementSummary) []domain.Finding {
	keywordList, err := s.table.Text(refdata.CategoryDisallowable, refdata.KeyExpenseKeywords)
	if err != nil {
		return []domain.Finding{finding(domain.SeverityRequiresClarification, "disallowable_expense", "%s", err.Error())}
	}

	var keywords []string
	for _, k := range strings.Split(keywordList, ",") {
		if k = strings.TrimSpace(strings.ToLower(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	var findings []domain.Finding
	for _, item := range pl.LineItems {
		desc := strings.ToLower(item.Description)
		for _, kw := range keywords {
			if strings.Contains(desc, kw) {
				findings = append(findings, finding(domain.SeverityRequiresClarification, "disallowable_expense",
					"Possible disallowable expense '%s' of %s; confirm deductibility",
					item.Description, item.Amount.StringFixed(2)))
				break
			}
		}
	}
	return findings
}

// cashPaymentCheck emits a single finding with the count of cash-mode
// items above the statutory limit, in the manner of a Section 40A(3)
// disallowance review.
func (s *ValidationService) cashPaymentCheck(pl *domain.StatementSummary) []domain.Finding {
	limit, err := s.table.Amount(refdata.CategoryCash, refdata.KeyCashPaymentLimit)
	if err != nil {
		return []domain.Finding{finding(domain.SeverityRequiresClarification, "cash_payment_limit", "%s", err.Error())}
	}

	count := 0
	for _, item := range pl.LineItems {
		if item.PaymentMode == domain.PaymentCash && item.Amount.GreaterThan(limit) {
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return []domain.Finding{finding(domain.SeverityRequiresClarification, "cash_payment_limit",
		"%d cash expense payment(s) exceed the statutory cash limit of %s and risk disallowance under the Section 40A(3) cash-payment provision",
		count, limit.StringFixed(0))}
}
