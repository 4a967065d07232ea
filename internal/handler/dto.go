package handler

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/auditlens/auditlens-go/internal/domain"
)

// Request payloads are validated with struct tags before conversion into
// domain value objects. Amounts arrive as JSON numbers; the conversion
// guards against NaN/Inf so nothing non-finite reaches the rule core.

var validate = validator.New()

type profileRequest struct {
	Name                  string  `json:"name" validate:"required"`
	EntityType            string  `json:"entity_type" validate:"required,oneof=individual proprietorship partnership llp private_company public_company other"`
	NatureOfBusiness      string  `json:"nature_of_business"`
	FinancialYear         string  `json:"financial_year" validate:"required"`
	Turnover              float64 `json:"turnover" validate:"gte=0"`
	CapitalContribution   float64 `json:"capital_contribution" validate:"gte=0"`
	GSTStatus             string  `json:"gst_status" validate:"required,oneof=registered unregistered"`
	AccountingMethod      string  `json:"accounting_method" validate:"omitempty,oneof=cash mercantile"`
	PreviousYearAvailable bool    `json:"previous_year_available"`
}

func (r *profileRequest) toDomain(clientID string) (*domain.ClientProfile, error) {
	if err := validate.Struct(r); err != nil {
		return nil, &domain.ErrValidation{Field: "profile", Message: err.Error()}
	}
	turnover, err := finiteAmount("turnover", r.Turnover)
	if err != nil {
		return nil, err
	}
	contribution, err := finiteAmount("capital_contribution", r.CapitalContribution)
	if err != nil {
		return nil, err
	}

	return &domain.ClientProfile{
		ClientID:              clientID,
		Name:                  r.Name,
		EntityType:            domain.EntityType(r.EntityType),
		NatureOfBusiness:      r.NatureOfBusiness,
		FinancialYear:         r.FinancialYear,
		Turnover:              turnover,
		CapitalContribution:   contribution,
		GSTStatus:             domain.GSTStatus(r.GSTStatus),
		AccountingMethod:      r.AccountingMethod,
		PreviousYearAvailable: r.PreviousYearAvailable,
	}, nil
}

type reviewRequest struct {
	Summaries []summaryPayload `json:"summaries" validate:"omitempty,dive"`
}

type summaryPayload struct {
	Kind          string             `json:"kind" validate:"required"`
	Aggregates    map[string]float64 `json:"aggregates"`
	LineItems     []lineItemPayload  `json:"line_items" validate:"omitempty,dive"`
	Accounts      []accountPayload   `json:"accounts" validate:"omitempty,dive"`
	FilingsTimely *bool              `json:"filings_timely"`
	Prior         *summaryPayload    `json:"prior"`
	Upload        *uploadPayload     `json:"upload"`
}

type lineItemPayload struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount"`
	PaymentMode string  `json:"payment_mode" validate:"omitempty,oneof=cash bank credit"`
}

type accountPayload struct {
	Name      string  `json:"name" validate:"required"`
	Group     string  `json:"group" validate:"required,oneof=asset liability equity income expense"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	Provision bool    `json:"provision"`
}

type uploadPayload struct {
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
	MimeType   string    `json:"mime_type"`
	ModifiedAt time.Time `json:"modified_at"`
}

func (r *reviewRequest) toDomain() ([]*domain.StatementSummary, error) {
	if err := validate.Struct(r); err != nil {
		return nil, &domain.ErrValidation{Field: "summaries", Message: err.Error()}
	}
	var summaries []*domain.StatementSummary
	for i := range r.Summaries {
		sum, err := r.Summaries[i].toDomain()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (p *summaryPayload) toDomain() (*domain.StatementSummary, error) {
	kind := domain.DocumentKind(p.Kind)

	aggregates := make(map[string]decimal.Decimal, len(p.Aggregates))
	for key, v := range p.Aggregates {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &domain.ErrInvalidDocumentData{
				Document: kind, Field: key, Message: "aggregate is not a finite number",
			}
		}
		aggregates[key] = decimal.NewFromFloat(v)
	}

	sum := &domain.StatementSummary{
		Kind:          kind,
		Aggregates:    aggregates,
		FilingsTimely: p.FilingsTimely,
	}

	for _, li := range p.LineItems {
		amount, err := finiteAmount("line_items.amount", li.Amount)
		if err != nil {
			return nil, err
		}
		sum.LineItems = append(sum.LineItems, domain.ExpenseLineItem{
			Description: li.Description,
			Amount:      amount,
			PaymentMode: domain.PaymentMode(li.PaymentMode),
		})
	}

	for _, acct := range p.Accounts {
		debit, err := finiteAmount("accounts.debit", acct.Debit)
		if err != nil {
			return nil, err
		}
		credit, err := finiteAmount("accounts.credit", acct.Credit)
		if err != nil {
			return nil, err
		}
		sum.Accounts = append(sum.Accounts, domain.AccountBalance{
			Name:      acct.Name,
			Group:     domain.AccountGroup(acct.Group),
			Debit:     debit,
			Credit:    credit,
			Provision: acct.Provision,
		})
	}

	if p.Prior != nil {
		prior, err := p.Prior.toDomain()
		if err != nil {
			return nil, err
		}
		prior.Kind = kind
		sum.Prior = prior
	}

	if p.Upload != nil {
		sum.Upload = &domain.UploadMetadata{
			FileName:   p.Upload.FileName,
			SizeBytes:  p.Upload.SizeBytes,
			MimeType:   p.Upload.MimeType,
			ModifiedAt: p.Upload.ModifiedAt,
		}
	}

	return sum, nil
}

func finiteAmount(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, &domain.ErrValidation{
			Field: field, Message: fmt.Sprintf("%v is not a finite number", v),
		}
	}
	return decimal.NewFromFloat(v), nil
}
