package property

import (
	"time"

	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// SaleCostsRequest lists the incidental costs of disposal. Missing fields are zero.
type SaleCostsRequest struct {
	AgentCommission decimal.Decimal `json:"agent_commission"`
	LegalFees       decimal.Decimal `json:"legal_fees"`
	MarketingCosts  decimal.Decimal `json:"marketing_costs"`
	Other           decimal.Decimal `json:"other"`
}

// RecordSaleRequest records the disposal of a property
type RecordSaleRequest struct {
	SalePrice      decimal.Decimal  `json:"sale_price"`
	SettlementDate string           `json:"settlement_date" binding:"required,datetime=2006-01-02"`
	SaleCosts      SaleCostsRequest `json:"sale_costs"`
}

// CostBaseResponse is a property's cost base with its per-category breakdown
type CostBaseResponse struct {
	PropertyID      uuid.UUID       `json:"property_id"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	StampDuty       decimal.Decimal `json:"stamp_duty"`
	Conveyancing    decimal.Decimal `json:"conveyancing"`
	BuyersAgentFees decimal.Decimal `json:"buyers_agent_fees"`
	InitialRepairs  decimal.Decimal `json:"initial_repairs"`
	Total           decimal.Decimal `json:"total"`
}

// SaleCostsResponse mirrors SaleCostsRequest with a total
type SaleCostsResponse struct {
	AgentCommission decimal.Decimal `json:"agent_commission"`
	LegalFees       decimal.Decimal `json:"legal_fees"`
	MarketingCosts  decimal.Decimal `json:"marketing_costs"`
	Other           decimal.Decimal `json:"other"`
	Total           decimal.Decimal `json:"total"`
}

// SaleResponse is a recorded sale and its capital gain
type SaleResponse struct {
	ID                   uuid.UUID         `json:"id"`
	PropertyID           uuid.UUID         `json:"property_id"`
	SalePrice            decimal.Decimal   `json:"sale_price"`
	SaleCosts            SaleCostsResponse `json:"sale_costs"`
	CostBase             decimal.Decimal   `json:"cost_base"`
	CapitalGain          decimal.Decimal   `json:"capital_gain"`
	DiscountedGain       decimal.Decimal   `json:"discounted_gain"`
	HeldOverTwelveMonths bool              `json:"held_over_twelve_months"`
	SettlementDate       string            `json:"settlement_date"`
	FinancialYear        string            `json:"financial_year"`
	CreatedAt            time.Time         `json:"created_at"`
}

// PortfolioSummaryResponse is an owner's portfolio roll-up
type PortfolioSummaryResponse struct {
	ActiveProperties    int             `json:"active_properties"`
	ActivePurchaseTotal decimal.Decimal `json:"active_purchase_total"`
	ActiveCostBaseTotal decimal.Decimal `json:"active_cost_base_total"`
	SoldProperties      int             `json:"sold_properties"`
	RealisedGainTotal   decimal.Decimal `json:"realised_gain_total"`
}

func (r SaleCostsRequest) toSaleCosts() property.SaleCosts {
	return property.SaleCosts{
		AgentCommission: r.AgentCommission,
		LegalFees:       r.LegalFees,
		MarketingCosts:  r.MarketingCosts,
		Other:           r.Other,
	}
}

func parseSettlementDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "settlement_date must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ToCostBaseResponse converts a domain CostBase
func ToCostBaseResponse(cb property.CostBase) *CostBaseResponse {
	return &CostBaseResponse{
		PropertyID:      cb.PropertyID,
		PurchasePrice:   cb.PurchasePrice,
		StampDuty:       cb.StampDuty,
		Conveyancing:    cb.Conveyancing,
		BuyersAgentFees: cb.BuyersAgentFees,
		InitialRepairs:  cb.InitialRepairs,
		Total:           cb.Total,
	}
}

// ToSaleResponse converts a domain Sale
func ToSaleResponse(s *property.Sale) *SaleResponse {
	return &SaleResponse{
		ID:         s.ID,
		PropertyID: s.PropertyID,
		SalePrice:  s.SalePrice,
		SaleCosts: SaleCostsResponse{
			AgentCommission: s.SaleCosts.AgentCommission,
			LegalFees:       s.SaleCosts.LegalFees,
			MarketingCosts:  s.SaleCosts.MarketingCosts,
			Other:           s.SaleCosts.Other,
			Total:           s.TotalSaleCosts(),
		},
		CostBase:             s.CostBase,
		CapitalGain:          s.CapitalGain,
		DiscountedGain:       s.DiscountedGain,
		HeldOverTwelveMonths: s.HeldOverTwelveMonths,
		SettlementDate:       s.SettlementDate.Format(dateLayout),
		FinancialYear:        s.SettledIn().String(),
		CreatedAt:            s.CreatedAt,
	}
}

// ToPortfolioSummaryResponse converts a domain PortfolioSummary
func ToPortfolioSummaryResponse(s property.PortfolioSummary) *PortfolioSummaryResponse {
	return &PortfolioSummaryResponse{
		ActiveProperties:    s.ActiveProperties,
		ActivePurchaseTotal: s.ActivePurchaseTotal,
		ActiveCostBaseTotal: s.ActiveCostBaseTotal,
		SoldProperties:      s.SoldProperties,
		RealisedGainTotal:   s.RealisedGainTotal,
	}
}
