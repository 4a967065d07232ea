package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType classifies the reviewed entity for threshold selection.
type EntityType string

const (
	EntityIndividual     EntityType = "individual"
	EntityProprietorship EntityType = "proprietorship"
	EntityPartnership    EntityType = "partnership"
	EntityLLP            EntityType = "llp"
	EntityPrivateCompany EntityType = "private_company"
	EntityPublicCompany  EntityType = "public_company"
	EntityOther          EntityType = "other"
)

// ValidEntityTypes is the closed enumeration accepted by the deriver.
var ValidEntityTypes = map[EntityType]bool{
	EntityIndividual:     true,
	EntityProprietorship: true,
	EntityPartnership:    true,
	EntityLLP:            true,
	EntityPrivateCompany: true,
	EntityPublicCompany:  true,
	EntityOther:          true,
}

// GSTStatus is the GST registration status of the client.
type GSTStatus string

const (
	GSTRegistered   GSTStatus = "registered"
	GSTUnregistered GSTStatus = "unregistered"
)

// ClientProfile holds the identity and classification facts for one
// reviewed entity in one financial period. A profile is immutable once a
// review has been run against it; re-profiling starts a new cycle.
type ClientProfile struct {
	ClientID         string          `json:"client_id"`
	Name             string          `json:"name"`
	EntityType       EntityType      `json:"entity_type"`
	NatureOfBusiness string          `json:"nature_of_business"`
	FinancialYear    string          `json:"financial_year"`
	Turnover         decimal.Decimal `json:"turnover"`
	// CapitalContribution is only consulted for LLP audit applicability.
	CapitalContribution   decimal.Decimal `json:"capital_contribution"`
	GSTStatus             GSTStatus       `json:"gst_status"`
	AccountingMethod      string          `json:"accounting_method"`
	PreviousYearAvailable bool            `json:"previous_year_available"`
	CreatedAt             time.Time       `json:"created_at"`
}

// IsCompany reports whether the entity is audited under the Companies Act
// regardless of turnover.
func (p *ClientProfile) IsCompany() bool {
	return p.EntityType == EntityPrivateCompany || p.EntityType == EntityPublicCompany
}

// IsProfession reports whether the free-text nature of business selects the
// (lower) profession audit threshold.
func (p *ClientProfile) IsProfession() bool {
	return strings.Contains(strings.ToLower(p.NatureOfBusiness), "profession")
}
