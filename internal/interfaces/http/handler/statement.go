package handler

import (
	billingapp "github.com/freightdesk/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// StatementHandler handles customer statement API endpoints
type StatementHandler struct {
	BaseHandler
	statementService *billingapp.StatementService
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(statementService *billingapp.StatementService) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
	}
}

// Generate reconciles a customer's invoices and payments into a statement
func (h *StatementHandler) Generate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	statement, err := h.statementService.Generate(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}
