package handler

import (
	billingapp "github.com/freightdesk/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// JobHandler handles clearance job API endpoints
type JobHandler struct {
	BaseHandler
	jobService *billingapp.JobService
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService *billingapp.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
	}
}

// Create opens a new clearance job
func (h *JobHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, job)
}

// List returns jobs matching the filter
func (h *JobHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter billingapp.JobListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.jobService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID retrieves a job by its ID
func (h *JobHandler) GetByID(c *gin.Context) {
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

	job, err := h.jobService.Get(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// GetByNumber retrieves a job by its job number
func (h *JobHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	job, err := h.jobService.GetByNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// Start moves a pending job into progress
func (h *JobHandler) Start(c *gin.Context) {
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

	job, err := h.jobService.Start(c.Request.Context(), tenantID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// AddCharge attaches a charge line to a job
func (h *JobHandler) AddCharge(c *gin.Context) {
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

	var req billingapp.AddChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.jobService.AddCharge(c.Request.Context(), tenantID, jobID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// RemoveCharge detaches a charge line from a job
func (h *JobHandler) RemoveCharge(c *gin.Context) {
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

	chargeID, err := parseIDParam(c, "charge_id")
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	job, err := h.jobService.RemoveCharge(c.Request.Context(), tenantID, jobID, chargeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// Cancel cancels a job
func (h *JobHandler) Cancel(c *gin.Context) {
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

	var req billingapp.CancelJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	job, err := h.jobService.Cancel(c.Request.Context(), tenantID, jobID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}
