package partner

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to register a customer
type CreateCustomerRequest struct {
	Code             string          `json:"code" binding:"required,min=1,max=50"`
	Name             string          `json:"name" binding:"required,min=1,max=200"`
	ContactName      string          `json:"contact_name" binding:"max=100"`
	Phone            string          `json:"phone" binding:"max=50"`
	Email            string          `json:"email" binding:"omitempty,email,max=200"`
	Address          string          `json:"address" binding:"max=500"`
	Country          string          `json:"country" binding:"max=100"`
	TaxID            string          `json:"tax_id" binding:"max=50"`
	PaymentTermsDays int             `json:"payment_terms_days" binding:"min=0,max=365"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	Notes            string          `json:"notes" binding:"max=1000"`
}

// UpdateCustomerRequest represents a request to update customer details
type UpdateCustomerRequest struct {
	ContactName *string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       *string `json:"phone" binding:"omitempty,max=50"`
	Email       *string `json:"email" binding:"omitempty,email,max=200"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Notes       *string `json:"notes" binding:"omitempty,max=1000"`
}

// SetBillingTermsRequest represents a request to change billing terms
type SetBillingTermsRequest struct {
	PaymentTermsDays int             `json:"payment_terms_days" binding:"min=0,max=365"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
}

// CustomerListFilter represents filter options for customer list queries
type CustomerListFilter struct {
	Search   string                  `form:"search"`
	Status   *partner.CustomerStatus `form:"status"`
	Page     int                     `form:"page" binding:"min=0"`
	PageSize int                     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string                  `form:"order_by"`
	OrderDir string                  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID       `json:"id"`
	TenantID         uuid.UUID       `json:"tenant_id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	ContactName      string          `json:"contact_name,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	Email            string          `json:"email,omitempty"`
	Address          string          `json:"address,omitempty"`
	Country          string          `json:"country,omitempty"`
	TaxID            string          `json:"tax_id,omitempty"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	EffectiveTerms   int             `json:"effective_terms"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	Balance          decimal.Decimal `json:"balance"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes,omitempty"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain customer to its API representation
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		Code:             c.Code,
		Name:             c.Name,
		ContactName:      c.ContactName,
		Phone:            c.Phone,
		Email:            c.Email,
		Address:          c.Address,
		Country:          c.Country,
		TaxID:            c.TaxID,
		PaymentTermsDays: c.PaymentTermsDays,
		EffectiveTerms:   c.EffectivePaymentTerms(),
		CreditLimit:      c.CreditLimit,
		Balance:          c.Balance,
		Status:           string(c.Status),
		Notes:            c.Notes,
		Version:          c.Version,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
