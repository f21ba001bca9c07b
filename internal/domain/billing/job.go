package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobStatus represents the status of a clearance job
type JobStatus string

const (
	JobStatusPending       JobStatus = "PENDING"        // Created, work not started
	JobStatusInProgress    JobStatus = "IN_PROGRESS"    // Clearance under way
	JobStatusInvoiced      JobStatus = "INVOICED"       // Invoice generated, unpaid
	JobStatusPartiallyPaid JobStatus = "PARTIALLY_PAID" // Invoice partially settled
	JobStatusCleared       JobStatus = "CLEARED"        // Invoice fully settled
	JobStatusCancelled     JobStatus = "CANCELLED"      // Terminal, user-initiated
)

// IsValid checks if the status is a valid JobStatus
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusInvoiced,
		JobStatusPartiallyPaid, JobStatusCleared, JobStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the job is in a terminal state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCleared || s == JobStatusCancelled
}

// CanModifyCharges returns true if charges may still be added or removed
func (s JobStatus) CanModifyCharges() bool {
	return s == JobStatusPending || s == JobStatusInProgress
}

// JobCharge is a billable line attached to a job. It snapshots the fee
// catalog values at charge time and is never recalculated afterwards.
type JobCharge struct {
	ID          uuid.UUID       `json:"id"`
	FeeID       uuid.UUID       `json:"fee_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`   // unit price snapshot
	Quantity    decimal.Decimal `json:"quantity"` // > 0
	TaxRate     decimal.Decimal `json:"tax_rate"` // percent snapshot
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"` // amount*quantity + tax, rounded
	ChargedAt   time.Time       `json:"charged_at"`
}

// JobCharges is a slice of JobCharge that implements GORM Scanner/Valuer
// for JSONB storage
type JobCharges []JobCharge

// Value implements driver.Valuer interface for GORM to store as JSONB
func (c JobCharges) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (c *JobCharges) Scan(value interface{}) error {
	if value == nil {
		*c = JobCharges{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JobCharges: unsupported type")
	}

	if len(bytes) == 0 {
		*c = JobCharges{}
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// NewJobCharge snapshots a fee into a charge line. The tax amount and
// line total are computed once, here, with half-up cent rounding.
func NewJobCharge(fee *Fee, description string, unitPrice valueobject.Money, quantity decimal.Decimal) (*JobCharge, error) {
	if fee == nil {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee is required for a job charge")
	}
	if !fee.Active {
		return nil, shared.NewDomainError("INACTIVE_FEE", fmt.Sprintf("Fee %s is not active", fee.Name))
	}
	if strings.TrimSpace(description) == "" {
		description = fee.Name
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Charge quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount cannot be negative")
	}

	extended := unitPrice.Multiply(quantity).RoundCurrency()
	tax, err := valueobject.TaxOn(extended, fee.EffectiveTaxRate())
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", err.Error())
	}
	total := extended.MustAdd(tax)

	return &JobCharge{
		ID:          uuid.New(),
		FeeID:       fee.ID,
		Description: description,
		Amount:      unitPrice.Amount(),
		Quantity:    quantity,
		TaxRate:     fee.EffectiveTaxRate(),
		TaxAmount:   tax.Amount(),
		Total:       total.Amount(),
		ChargedAt:   time.Now(),
	}, nil
}

// Job represents a freight clearance job, the unit of work that charges
// accumulate against until it is billed.
type Job struct {
	shared.TenantAggregateRoot
	JobNumber    string          `json:"job_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Description  string          `json:"description"`
	Status       JobStatus       `json:"status"`
	Charges      JobCharges      `json:"charges"`
	TotalAmount  decimal.Decimal `json:"total_amount"` // sum of charge totals
	InvoiceID    *uuid.UUID      `json:"invoice_id"`   // set once, when invoiced
	CancelledAt  *time.Time      `json:"cancelled_at"`
	CancelReason string          `json:"cancel_reason"`
}

// NewJob creates a new clearance job in pending status
func NewJob(tenantID uuid.UUID, jobNumber string, customerID uuid.UUID, customerName, description string) (*Job, error) {
	if strings.TrimSpace(jobNumber) == "" {
		return nil, shared.NewDomainError("INVALID_JOB_NUMBER", "Job number cannot be empty")
	}
	if len(jobNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_JOB_NUMBER", "Job number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	j := &Job{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		JobNumber:           jobNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		Description:         description,
		Status:              JobStatusPending,
		Charges:             JobCharges{},
		TotalAmount:         decimal.Zero,
	}

	j.AddDomainEvent(NewJobCreatedEvent(j))

	return j, nil
}

// AddCharge appends a charge line and recomputes the job total.
// Charges are frozen once the job has been invoiced.
func (j *Job) AddCharge(charge *JobCharge) error {
	if !j.Status.CanModifyCharges() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify charges on a %s job", j.Status))
	}
	if charge == nil {
		return shared.NewDomainError("INVALID_CHARGE", "Charge cannot be nil")
	}

	j.Charges = append(j.Charges, *charge)
	j.recomputeTotal()
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	return nil
}

// RemoveCharge deletes a charge line by ID and recomputes the job total
func (j *Job) RemoveCharge(chargeID uuid.UUID) error {
	if !j.Status.CanModifyCharges() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify charges on a %s job", j.Status))
	}

	for i, c := range j.Charges {
		if c.ID == chargeID {
			j.Charges = append(j.Charges[:i], j.Charges[i+1:]...)
			j.recomputeTotal()
			j.UpdatedAt = time.Now()
			j.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// recomputeTotal keeps TotalAmount equal to the sum of charge totals.
// Holds the invariant: job total == Σ charge totals after every save.
func (j *Job) recomputeTotal() {
	total := decimal.Zero
	for _, c := range j.Charges {
		total = total.Add(c.Total)
	}
	j.TotalAmount = total
}

// Start moves a pending job into progress
func (j *Job) Start() error {
	if j.Status != JobStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start a %s job", j.Status))
	}
	j.Status = JobStatusInProgress
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
	return nil
}

// MarkInvoiced links the generated invoice and advances the job to
// invoiced. This transition happens exactly once.
func (j *Job) MarkInvoiced(invoiceID uuid.UUID, invoiceNumber string) error {
	if j.Status == JobStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot invoice a cancelled job")
	}
	if j.InvoiceID != nil {
		return shared.NewDomainError("DUPLICATE_INVOICE", fmt.Sprintf("Job %s is already invoiced", j.JobNumber))
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	j.InvoiceID = &invoiceID
	previous := j.Status
	j.Status = JobStatusInvoiced
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	j.AddDomainEvent(NewJobStatusChangedEvent(j, previous, invoiceNumber))

	return nil
}

// ApplyProjectedStatus updates the job status from an invoice-driven
// projection (see ProjectJobStatus). Cancelled is sticky and never
// overwritten.
func (j *Job) ApplyProjectedStatus(status JobStatus) {
	if j.Status == JobStatusCancelled || j.Status == status {
		return
	}
	previous := j.Status
	j.Status = status
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
	j.AddDomainEvent(NewJobStatusChangedEvent(j, previous, ""))
}

// DetachInvoice clears the invoice link after a void, allowing the job
// to be re-invoiced. The job returns to in-progress.
func (j *Job) DetachInvoice() {
	if j.InvoiceID == nil {
		return
	}
	j.InvoiceID = nil
	if j.Status != JobStatusCancelled {
		previous := j.Status
		j.Status = JobStatusInProgress
		j.AddDomainEvent(NewJobStatusChangedEvent(j, previous, ""))
	}
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
}

// Cancel terminates the job. A cancelled job is never revived and its
// status is never overwritten by invoice projection.
func (j *Job) Cancel(reason string) error {
	if j.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel a %s job", j.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	previous := j.Status
	j.Status = JobStatusCancelled
	j.CancelledAt = &now
	j.CancelReason = reason
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewJobCancelledEvent(j, previous))

	return nil
}

// GetTotalAmountMoney returns the job total as Money
func (j *Job) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(j.TotalAmount)
}

// HasCharges returns true when at least one charge is attached
func (j *Job) HasCharges() bool {
	return len(j.Charges) > 0
}

// IsInvoiced returns true once an invoice has been generated for the job
func (j *Job) IsInvoiced() bool {
	return j.InvoiceID != nil
}
