package handler

import (
	billingapp "github.com/freightdesk/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice lifecycle API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoicingService *billingapp.InvoicingService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoicingService *billingapp.InvoicingService) *InvoiceHandler {
	return &InvoiceHandler{
		invoicingService: invoicingService,
	}
}

// GenerateFromJob raises a draft invoice from a job's charges
func (h *InvoiceHandler) GenerateFromJob(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	jobID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	// The body is optional; an empty body means "issue today"
	var req billingapp.GenerateInvoiceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	inv, err := h.invoicingService.GenerateFromJob(c.Request.Context(), tenantID, jobID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inv)
}

// CreateManual raises an invoice that is not backed by a job
func (h *InvoiceHandler) CreateManual(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateManualInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.invoicingService.CreateManual(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, inv)
}

// List returns invoices matching the filter
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter billingapp.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoicingService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID retrieves an invoice by its ID
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoicingService.Get(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// GetByNumber retrieves an invoice by its invoice number
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	inv, err := h.invoicingService.GetByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// MarkSent transitions a draft invoice to sent
func (h *InvoiceHandler) MarkSent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoicingService.MarkSent(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}

// Void voids an unpaid invoice
func (h *InvoiceHandler) Void(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req billingapp.VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	inv, err := h.invoicingService.Void(c.Request.Context(), tenantID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, inv)
}
