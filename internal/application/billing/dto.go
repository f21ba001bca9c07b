package billing

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Job DTOs ====================

// CreateJobRequest represents a request to open a clearance job
type CreateJobRequest struct {
	JobNumber   string    `json:"job_number" binding:"required,min=1,max=50"`
	CustomerID  uuid.UUID `json:"customer_id" binding:"required"`
	Description string    `json:"description" binding:"max=500"`
}

// AddChargeRequest represents a request to attach a charge to a job.
// Amount and description default to the fee catalog values when omitted.
type AddChargeRequest struct {
	FeeID       uuid.UUID        `json:"fee_id" binding:"required"`
	Description string           `json:"description" binding:"max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
}

// CancelJobRequest represents a request to cancel a job
type CancelJobRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// JobListFilter represents filter options for job list queries
type JobListFilter struct {
	Search     string             `form:"search"`
	Status     *billing.JobStatus `form:"status"`
	CustomerID *uuid.UUID         `form:"customer_id"`
	Page       int                `form:"page" binding:"min=0"`
	PageSize   int                `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string             `form:"order_by"`
	OrderDir   string             `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// JobChargeResponse represents a charge line in API responses
type JobChargeResponse struct {
	ID          uuid.UUID       `json:"id"`
	FeeID       uuid.UUID       `json:"fee_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    decimal.Decimal `json:"quantity"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ChargedAt   time.Time       `json:"charged_at"`
}

// JobResponse represents a job in API responses
type JobResponse struct {
	ID           uuid.UUID           `json:"id"`
	TenantID     uuid.UUID           `json:"tenant_id"`
	JobNumber    string              `json:"job_number"`
	CustomerID   uuid.UUID           `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	Description  string              `json:"description"`
	Status       string              `json:"status"`
	Charges      []JobChargeResponse `json:"charges"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	InvoiceID    *uuid.UUID          `json:"invoice_id,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	Version      int                 `json:"version"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ToJobResponse converts a domain job to its API representation
func ToJobResponse(job *billing.Job) JobResponse {
	charges := make([]JobChargeResponse, 0, len(job.Charges))
	for _, c := range job.Charges {
		charges = append(charges, JobChargeResponse{
			ID:          c.ID,
			FeeID:       c.FeeID,
			Description: c.Description,
			Amount:      c.Amount,
			Quantity:    c.Quantity,
			TaxRate:     c.TaxRate,
			TaxAmount:   c.TaxAmount,
			Total:       c.Total,
			ChargedAt:   c.ChargedAt,
		})
	}

	return JobResponse{
		ID:           job.ID,
		TenantID:     job.TenantID,
		JobNumber:    job.JobNumber,
		CustomerID:   job.CustomerID,
		CustomerName: job.CustomerName,
		Description:  job.Description,
		Status:       job.Status.String(),
		Charges:      charges,
		TotalAmount:  job.TotalAmount,
		InvoiceID:    job.InvoiceID,
		CancelledAt:  job.CancelledAt,
		CancelReason: job.CancelReason,
		Version:      job.Version,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
	}
}

// ==================== Invoice DTOs ====================

// GenerateInvoiceRequest represents a request to invoice a job
type GenerateInvoiceRequest struct {
	IssueDate *time.Time `json:"issue_date"`
}

// ManualLineInput represents one line of a manual invoice request
type ManualLineInput struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// CreateManualInvoiceRequest represents a request to raise an invoice
// that is not backed by a job
type CreateManualInvoiceRequest struct {
	CustomerID uuid.UUID         `json:"customer_id" binding:"required"`
	IssueDate  *time.Time        `json:"issue_date"`
	Lines      []ManualLineInput `json:"lines" binding:"required,min=1"`
}

// VoidInvoiceRequest represents a request to void an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// InvoiceListFilter represents filter options for invoice list queries
type InvoiceListFilter struct {
	Search       string                 `form:"search"`
	Status       *billing.InvoiceStatus `form:"status"`
	CustomerID   *uuid.UUID             `form:"customer_id"`
	JobID        *uuid.UUID             `form:"job_id"`
	IssuedAfter  *time.Time             `form:"issued_after"`
	IssuedBefore *time.Time             `form:"issued_before"`
	OverdueOnly  bool                   `form:"overdue_only"`
	Page         int                    `form:"page" binding:"min=0"`
	PageSize     int                    `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string                 `form:"order_by"`
	OrderDir     string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	TenantID      uuid.UUID             `json:"tenant_id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	JobID         *uuid.UUID            `json:"job_id,omitempty"`
	JobNumber     string                `json:"job_number,omitempty"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       time.Time             `json:"due_date"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	Outstanding   decimal.Decimal       `json:"outstanding"`
	Status        string                `json:"status"`
	Overdue       bool                  `json:"overdue"`
	Items         []InvoiceItemResponse `json:"items"`
	SentAt        *time.Time            `json:"sent_at,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	VoidedAt      *time.Time            `json:"voided_at,omitempty"`
	VoidReason    string                `json:"void_reason,omitempty"`
	Version       int                   `json:"version"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice to its API representation
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			TaxAmount:   it.TaxAmount,
			LineTotal:   it.LineTotal,
		})
	}

	return InvoiceResponse{
		ID:            inv.ID,
		TenantID:      inv.TenantID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.CustomerName,
		JobID:         inv.JobID,
		JobNumber:     inv.JobNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		PaidAmount:    inv.PaidAmount,
		Outstanding:   inv.OutstandingAmount(),
		Status:        inv.Status.String(),
		Overdue:       inv.IsOverdue(),
		Items:         items,
		SentAt:        inv.SentAt,
		PaidAt:        inv.PaidAt,
		VoidedAt:      inv.VoidedAt,
		VoidReason:    inv.VoidReason,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ==================== Payment DTOs ====================

// RecordPaymentRequest represents a request to record a payment against
// an invoice
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"method" binding:"required"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
}

// PaymentListFilter represents filter options for payment list queries
type PaymentListFilter struct {
	InvoiceID  *uuid.UUID             `form:"invoice_id"`
	CustomerID *uuid.UUID             `form:"customer_id"`
	Method     *billing.PaymentMethod `form:"method"`
	PaidAfter  *time.Time             `form:"paid_after"`
	PaidBefore *time.Time             `form:"paid_before"`
	Page       int                    `form:"page" binding:"min=0"`
	PageSize   int                    `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string                 `form:"order_by"`
	OrderDir   string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain payment to its API representation
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		InvoiceID:       p.InvoiceID,
		InvoiceNumber:   p.InvoiceNumber,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          p.Method.String(),
		ReferenceNumber: p.ReferenceNumber,
		CreatedAt:       p.CreatedAt,
	}
}

// RecordPaymentResult carries the payment together with the resulting
// invoice state, so the caller sees both sides of the ledger entry
type RecordPaymentResult struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// ==================== Statement DTOs ====================

// StatementTransactionResponse represents one statement line in API
// responses
type StatementTransactionResponse struct {
	Type           string          `json:"type"`
	SourceID       uuid.UUID       `json:"source_id"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	Date           time.Time       `json:"date"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// StatementResponse represents a customer statement in API responses
type StatementResponse struct {
	CustomerID     uuid.UUID                      `json:"customer_id"`
	CustomerName   string                         `json:"customer_name"`
	GeneratedAt    time.Time                      `json:"generated_at"`
	Transactions   []StatementTransactionResponse `json:"transactions"`
	TotalDebit     decimal.Decimal                `json:"total_debit"`
	TotalCredit    decimal.Decimal                `json:"total_credit"`
	ClosingBalance decimal.Decimal                `json:"closing_balance"`
	FromCache      bool                           `json:"from_cache"`
}

// ToStatementResponse converts a domain statement to its API
// representation
func ToStatementResponse(st *billing.Statement, customerName string, fromCache bool) StatementResponse {
	txs := make([]StatementTransactionResponse, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		txs = append(txs, StatementTransactionResponse{
			Type:           string(tx.Type),
			SourceID:       tx.SourceID,
			Reference:      tx.Reference,
			Description:    tx.Description,
			Date:           tx.Date,
			Debit:          tx.Debit,
			Credit:         tx.Credit,
			RunningBalance: tx.RunningBalance,
		})
	}

	return StatementResponse{
		CustomerID:     st.CustomerID,
		CustomerName:   customerName,
		GeneratedAt:    st.GeneratedAt,
		Transactions:   txs,
		TotalDebit:     st.TotalDebit,
		TotalCredit:    st.TotalCredit,
		ClosingBalance: st.ClosingBalance,
		FromCache:      fromCache,
	}
}

// ==================== Fee DTOs ====================

// CreateFeeRequest represents a request to add a fee to the catalog
type CreateFeeRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	DefaultAmount decimal.Decimal `json:"default_amount" binding:"required"`
	Taxable       bool            `json:"taxable"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Description   string          `json:"description" binding:"max=500"`
}

// UpdateFeeRequest represents a request to change fee catalog defaults
type UpdateFeeRequest struct {
	DefaultAmount decimal.Decimal `json:"default_amount" binding:"required"`
	Taxable       bool            `json:"taxable"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Active        *bool           `json:"active"`
}

// FeeListFilter represents filter options for fee catalog queries
type FeeListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// FeeResponse represents a catalog fee in API responses
type FeeResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	Name          string          `json:"name"`
	DefaultAmount decimal.Decimal `json:"default_amount"`
	Taxable       bool            `json:"taxable"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Active        bool            `json:"active"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToFeeResponse converts a domain fee to its API representation
func ToFeeResponse(fee *billing.Fee) FeeResponse {
	return FeeResponse{
		ID:            fee.ID,
		TenantID:      fee.TenantID,
		Name:          fee.Name,
		DefaultAmount: fee.DefaultAmount,
		Taxable:       fee.Taxable,
		TaxRate:       fee.TaxRate,
		Active:        fee.Active,
		Description:   fee.Description,
		CreatedAt:     fee.CreatedAt,
		UpdatedAt:     fee.UpdatedAt,
	}
}
