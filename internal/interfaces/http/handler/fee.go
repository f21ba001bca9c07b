package handler

import (
	billingapp "github.com/freightdesk/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// FeeHandler handles fee catalog API endpoints
type FeeHandler struct {
	BaseHandler
	feeService *billingapp.FeeService
}

// NewFeeHandler creates a new FeeHandler
func NewFeeHandler(feeService *billingapp.FeeService) *FeeHandler {
	return &FeeHandler{
		feeService: feeService,
	}
}

// Create adds a fee to the catalog
func (h *FeeHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fee, err := h.feeService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, fee)
}

// List returns catalog fees matching the filter
func (h *FeeHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter billingapp.FeeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fees, err := h.feeService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fees)
}

// GetByID retrieves a fee by its ID
func (h *FeeHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	feeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid fee ID")
		return
	}

	fee, err := h.feeService.Get(c.Request.Context(), tenantID, feeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fee)
}

// Update changes a fee's catalog defaults
func (h *FeeHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	feeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid fee ID")
		return
	}

	var req billingapp.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fee, err := h.feeService.Update(c.Request.Context(), tenantID, feeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fee)
}

// Delete removes a fee from the catalog
func (h *FeeHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	feeID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid fee ID")
		return
	}

	if err := h.feeService.Delete(c.Request.Context(), tenantID, feeID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
