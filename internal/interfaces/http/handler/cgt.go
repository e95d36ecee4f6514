package handler

import (
	"github.com/gin-gonic/gin"
	propertyapp "github.com/propledger/backend/internal/application/property"
)

// CGTHandler serves cost base, sale and portfolio endpoints
type CGTHandler struct {
	BaseHandler
	cgt *propertyapp.CGTService
}

// NewCGTHandler creates a new CGTHandler
func NewCGTHandler(cgt *propertyapp.CGTService) *CGTHandler {
	return &CGTHandler{cgt: cgt}
}

// GetCostBase handles GET /properties/:id/cgt/cost-base
//
// @ID           getCostBase
// @Summary      Get the CGT cost base
// @Description  Purchase price plus acquisition transactions, by category
// @Tags         cgt
// @Produce      json
// @Param        id path string true "Property ID"
// @Success      200 {object} dto.Response{data=propertyapp.CostBaseResponse}
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/cgt/cost-base [get]
func (h *CGTHandler) GetCostBase(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.cgt.GetCostBase(c.Request.Context(), ownerID, propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordSale handles POST /properties/:id/cgt/sale
//
// @ID           recordPropertySale
// @Summary      Record a property sale
// @Description  Computes the capital gain and discount, then marks the property sold
// @Tags         cgt
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID"
// @Param        request body propertyapp.RecordSaleRequest true "Request body"
// @Success      201 {object} dto.Response{data=propertyapp.SaleResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/cgt/sale [post]
func (h *CGTHandler) RecordSale(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req propertyapp.RecordSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.cgt.RecordSale(c.Request.Context(), ownerID, propertyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetSale handles GET /properties/:id/cgt/sale
//
// @ID           getPropertySale
// @Summary      Get the recorded sale
// @Tags         cgt
// @Produce      json
// @Param        id path string true "Property ID"
// @Success      200 {object} dto.Response{data=propertyapp.SaleResponse}
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/cgt/sale [get]
func (h *CGTHandler) GetSale(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.cgt.GetSale(c.Request.Context(), ownerID, propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetPortfolioSummary handles GET /portfolio/summary
//
// @ID           getPortfolioSummary
// @Summary      Summarise the portfolio
// @Description  Active property aggregates plus realised gains on sold properties
// @Tags         portfolio
// @Produce      json
// @Success      200 {object} dto.Response{data=propertyapp.PortfolioSummaryResponse}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /portfolio/summary [get]
func (h *CGTHandler) GetPortfolioSummary(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}

	resp, err := h.cgt.GetPortfolioSummary(c.Request.Context(), ownerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
