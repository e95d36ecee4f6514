package router

import (
	"github.com/propledger/backend/internal/interfaces/http/handler"
)

// LedgerHandlers are the handlers behind the authenticated ledger API
type LedgerHandlers struct {
	Depreciation *handler.DepreciationHandler
	CGT          *handler.CGTHandler
}

// LedgerGroups returns the route groups of the ledger API
func LedgerGroups(h LedgerHandlers) []RouteRegistrar {
	properties := NewDomainGroup("properties", "/properties/:id")
	properties.
		GET("/depreciation", h.Depreciation.ListSchedules).
		POST("/depreciation/schedules", h.Depreciation.CreateSchedule).
		POST("/depreciation/schedules/import", h.Depreciation.ImportSchedule).
		GET("/depreciation/projection", h.Depreciation.GetProjection).
		POST("/capital-works", h.Depreciation.AddCapitalWorks)
	properties.Group("cgt", "/cgt").
		GET("/cost-base", h.CGT.GetCostBase).
		POST("/sale", h.CGT.RecordSale).
		GET("/sale", h.CGT.GetSale)

	depreciation := NewDomainGroup("depreciation", "/depreciation")
	depreciation.
		POST("/validate", h.Depreciation.Validate).
		GET("/preview", h.Depreciation.Preview)
	depreciation.Group("schedules", "/schedules/:id").
		POST("/assets", h.Depreciation.AddAsset).
		POST("/claims", h.Depreciation.ClaimFY).
		DELETE("/claims/:fy", h.Depreciation.UnclaimFY)
	depreciation.Group("assets", "/assets/:id").
		PUT("", h.Depreciation.UpdateAsset).
		DELETE("", h.Depreciation.DeleteAsset).
		POST("/move-to-pool", h.Depreciation.MoveToPool)

	portfolio := NewDomainGroup("portfolio", "/portfolio").
		GET("/summary", h.CGT.GetPortfolioSummary)

	return []RouteRegistrar{properties, depreciation, portfolio}
}
