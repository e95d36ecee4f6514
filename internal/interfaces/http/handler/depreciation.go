package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	depreciationapp "github.com/propledger/backend/internal/application/depreciation"
	"github.com/shopspring/decimal"
)

// DepreciationHandler serves schedules, assets, claims, capital works and
// projections
type DepreciationHandler struct {
	BaseHandler
	lifecycle   *depreciationapp.LifecycleService
	projections *depreciationapp.ProjectionService
}

// NewDepreciationHandler creates a new DepreciationHandler
func NewDepreciationHandler(lifecycle *depreciationapp.LifecycleService, projections *depreciationapp.ProjectionService) *DepreciationHandler {
	return &DepreciationHandler{lifecycle: lifecycle, projections: projections}
}

// ListSchedules handles GET /properties/:id/depreciation
//
// @ID           listPropertyDepreciation
// @Summary      List depreciation schedules
// @Description  Schedules with nested assets and claims, plus capital works, for one property
// @Tags         depreciation
// @Produce      json
// @Param        id path string true "Property ID"
// @Success      200 {object} dto.Response{data=depreciationapp.PropertyDepreciationResponse}
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/depreciation [get]
func (h *DepreciationHandler) ListSchedules(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.lifecycle.ListSchedules(c.Request.Context(), ownerID, propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateSchedule handles POST /properties/:id/depreciation/schedules
//
// @ID           createDepreciationSchedule
// @Summary      Create a depreciation schedule
// @Description  Manual entry. Deductions and remaining values are derived
// @Tags         depreciation
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID"
// @Param        request body depreciationapp.CreateScheduleRequest true "Request body"
// @Success      201 {object} dto.Response{data=depreciationapp.ScheduleResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/depreciation/schedules [post]
func (h *DepreciationHandler) CreateSchedule(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req depreciationapp.CreateScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.CreateSchedule(c.Request.Context(), ownerID, propertyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ImportSchedule handles POST /properties/:id/depreciation/schedules/import.
// A rejected import still returns its reconciliation report.
//
// @ID           importDepreciationSchedule
// @Summary      Import extracted schedule candidates
// @Description  Reconciles candidates and persists only recalculated deductions. Any invalid candidate aborts the import
// @Tags         depreciation
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID"
// @Param        request body depreciationapp.ImportScheduleRequest true "Request body"
// @Success      201 {object} dto.Response{data=depreciationapp.ImportScheduleResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/depreciation/schedules/import [post]
func (h *DepreciationHandler) ImportSchedule(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req depreciationapp.ImportScheduleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.ImportSchedule(c.Request.Context(), ownerID, propertyID, req)
	if err != nil && resp != nil {
		h.HandleErrorWithData(c, err, resp)
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Validate handles POST /depreciation/validate. Nothing is persisted.
//
// @ID           validateDepreciationCandidates
// @Summary      Validate and recalculate candidates
// @Description  Runs reconciliation without persisting anything
// @Tags         depreciation
// @Accept       json
// @Produce      json
// @Param        request body depreciationapp.ValidateRequest true "Request body"
// @Success      200 {object} dto.Response{data=depreciationapp.ReconciliationResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/validate [post]
func (h *DepreciationHandler) Validate(c *gin.Context) {
	if _, ok := h.ownerID(c); !ok {
		return
	}
	var req depreciationapp.ValidateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.ValidateAndRecalculate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Preview handles GET /depreciation/preview?cost=&life=&method=&max_years=
//
// @ID           previewDepreciationSchedule
// @Summary      Preview a multi-year schedule
// @Description  Year-by-year rows for a cost, effective life and method
// @Tags         depreciation
// @Produce      json
// @Param        cost query string true "Original cost"
// @Param        life query string true "Effective life in years"
// @Param        method query string false "diminishing_value or prime_cost"
// @Param        max_years query int false "Rows to generate, 1 to 40"
// @Success      200 {object} dto.Response{data=[]depreciation.ScheduleRow}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/preview [get]
func (h *DepreciationHandler) Preview(c *gin.Context) {
	if _, ok := h.ownerID(c); !ok {
		return
	}

	cost, err := decimal.NewFromString(c.Query("cost"))
	if err != nil {
		h.BadRequest(c, "cost must be a decimal amount")
		return
	}
	life, err := decimal.NewFromString(c.Query("life"))
	if err != nil {
		h.BadRequest(c, "life must be a decimal number of years")
		return
	}
	req := depreciationapp.PreviewRequest{Cost: cost, EffectiveLife: life, Method: c.DefaultQuery("method", "diminishing_value")}
	if raw := c.Query("max_years"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "max_years must be an integer")
			return
		}
		req.MaxYears = &n
	}

	rows, err := h.lifecycle.Preview(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// AddAsset handles POST /depreciation/schedules/:id/assets
//
// @ID           addDepreciationAsset
// @Summary      Add an asset to a schedule
// @Tags         depreciation
// @Accept       json
// @Produce      json
// @Param        id path string true "Schedule ID"
// @Param        request body depreciationapp.AssetRequest true "Request body"
// @Success      201 {object} dto.Response{data=depreciationapp.AssetResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/assets [post]
func (h *DepreciationHandler) AddAsset(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	scheduleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req depreciationapp.AssetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.AddAsset(c.Request.Context(), ownerID, scheduleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UpdateAsset handles PUT /depreciation/assets/:id
//
// @ID           updateDepreciationAsset
// @Summary      Update an asset
// @Description  A cost change reclassifies the pool
// @Tags         depreciation
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID"
// @Param        request body depreciationapp.UpdateAssetRequest true "Request body"
// @Success      200 {object} dto.Response{data=depreciationapp.AssetResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/assets/{id} [put]
func (h *DepreciationHandler) UpdateAsset(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	assetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req depreciationapp.UpdateAssetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.UpdateAsset(c.Request.Context(), ownerID, assetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DeleteAsset handles DELETE /depreciation/assets/:id
//
// @ID           deleteDepreciationAsset
// @Summary      Delete an asset
// @Tags         depreciation
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      204
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/assets/{id} [delete]
func (h *DepreciationHandler) DeleteAsset(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	assetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.lifecycle.DeleteAsset(c.Request.Context(), ownerID, assetID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MoveToPool handles POST /depreciation/assets/:id/move-to-pool
//
// @ID           moveAssetToLowValuePool
// @Summary      Move an asset into the low-value pool
// @Description  Allowed for individual assets with a written-down value of at most $1,000
// @Tags         depreciation
// @Produce      json
// @Param        id path string true "Asset ID"
// @Success      200 {object} dto.Response{data=depreciationapp.AssetResponse}
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/assets/{id}/move-to-pool [post]
func (h *DepreciationHandler) MoveToPool(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	assetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.lifecycle.MoveToPool(c.Request.Context(), ownerID, assetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ClaimFY handles POST /depreciation/schedules/:id/claims
//
// @ID           claimFinancialYear
// @Summary      Claim a financial year
// @Description  Records claim lines and recomputes remaining values in one transaction
// @Tags         claims
// @Accept       json
// @Produce      json
// @Param        id path string true "Schedule ID"
// @Param        request body depreciationapp.ClaimFYRequest true "Request body"
// @Success      201 {object} dto.Response{data=depreciationapp.ClaimFYResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/claims [post]
func (h *DepreciationHandler) ClaimFY(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	scheduleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req depreciationapp.ClaimFYRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.ClaimFY(c.Request.Context(), ownerID, scheduleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UnclaimFY handles DELETE /depreciation/schedules/:id/claims/:fy
//
// @ID           unclaimFinancialYear
// @Summary      Remove the claims of a financial year
// @Tags         claims
// @Produce      json
// @Param        id path string true "Schedule ID"
// @Param        fy path int true "Financial year, by ending year"
// @Success      200 {object} dto.Response{data=depreciationapp.UnclaimFYResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /depreciation/schedules/{id}/claims/{fy} [delete]
func (h *DepreciationHandler) UnclaimFY(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	scheduleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	fy, err := strconv.Atoi(c.Param("fy"))
	if err != nil {
		h.BadRequest(c, "fy must be the year a financial year ends in")
		return
	}

	resp, err := h.lifecycle.UnclaimFY(c.Request.Context(), ownerID, scheduleID, fy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddCapitalWorks handles POST /properties/:id/capital-works
//
// @ID           addCapitalWorks
// @Summary      Add a capital works item
// @Description  Division 43 works written off at 2.5% a year
// @Tags         depreciation
// @Accept       json
// @Produce      json
// @Param        id path string true "Property ID"
// @Param        request body depreciationapp.CapitalWorksRequest true "Request body"
// @Success      201 {object} dto.Response{data=depreciationapp.CapitalWorkResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/capital-works [post]
func (h *DepreciationHandler) AddCapitalWorks(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req depreciationapp.CapitalWorksRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.AddCapitalWorks(c.Request.Context(), ownerID, propertyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetProjection handles GET /properties/:id/depreciation/projection?from_fy=&to_fy=
//
// @ID           getDepreciationProjection
// @Summary      Project deductions by financial year
// @Description  Zero-filled rows of Division 40, Division 43 and low-value pool totals
// @Tags         projection
// @Produce      json
// @Param        id path string true "Property ID"
// @Param        from_fy query int true "First financial year"
// @Param        to_fy query int true "Last financial year, at most 60 years later"
// @Success      200 {object} dto.Response{data=depreciationapp.ProjectionResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /properties/{id}/depreciation/projection [get]
func (h *DepreciationHandler) GetProjection(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	propertyID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	fromFY, err := strconv.Atoi(c.Query("from_fy"))
	if err != nil {
		h.BadRequest(c, "from_fy must be the year a financial year ends in")
		return
	}
	toFY, err := strconv.Atoi(c.Query("to_fy"))
	if err != nil {
		h.BadRequest(c, "to_fy must be the year a financial year ends in")
		return
	}

	resp, err := h.projections.GetProjection(c.Request.Context(), ownerID, propertyID, fromFY, toFY)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
