package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"          // Created, not yet sent
	InvoiceStatusSent          InvoiceStatus = "SENT"           // Transmitted to the customer
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // 0 < paid < total
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // paid >= total
	InvoiceStatusVoid          InvoiceStatus = "VOID"           // Cancelled, excluded from all balances
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusVoid
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusDraft || s == InvoiceStatusSent || s == InvoiceStatusPartiallyPaid
}

// CanVoid returns true if the invoice can still be voided from this status
func (s InvoiceStatus) CanVoid() bool {
	return s != InvoiceStatusPaid && s != InvoiceStatusVoid
}

// nextStatus derives the lifecycle status from the paid and total
// amounts. The machine is pure: no hidden history, the same inputs
// always produce the same state.
func nextStatus(current InvoiceStatus, paid, total decimal.Decimal) InvoiceStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return InvoiceStatusPaid
	case paid.IsPositive():
		return InvoiceStatusPartiallyPaid
	default:
		return current
	}
}

// InvoiceItem is an immutable line on an invoice, created atomically
// with the invoice from a job charge snapshot.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // percent
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceItems is a slice of InvoiceItem that implements GORM
// Scanner/Valuer for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (i InvoiceItems) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	return json.Marshal(i)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (i *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*i = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*i = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, i)
}

// Invoice is the aggregate root for the billing lifecycle. Its total is
// immutable once created; only the Payment Ledger mutates paid amount
// and status, plus an explicit void operation.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	JobID         *uuid.UUID      `json:"job_id"` // nil for manual invoices
	JobNumber     string          `json:"job_number"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Status        InvoiceStatus   `json:"status"`
	Items         InvoiceItems    `json:"items"`
	Remark        string          `json:"remark"`
	SentAt        *time.Time      `json:"sent_at"`
	PaidAt        *time.Time      `json:"paid_at"`
	VoidedAt      *time.Time      `json:"voided_at"`
	VoidReason    string          `json:"void_reason"`
}

// OutstandingAmount returns total minus paid
func (inv *Invoice) OutstandingAmount() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.PaidAmount)
}

// GetTotalAmountMoney returns the total as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.TotalAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.PaidAmount)
}

// GetOutstandingAmountMoney returns the outstanding amount as Money
func (inv *Invoice) GetOutstandingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.OutstandingAmount())
}

// IsVoid returns true if the invoice has been voided
func (inv *Invoice) IsVoid() bool {
	return inv.Status == InvoiceStatusVoid
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsOverdue returns true if the invoice is past due and not settled
func (inv *Invoice) IsOverdue() bool {
	if inv.Status.IsTerminal() {
		return false
	}
	return time.Now().After(inv.DueDate)
}

// MarkSent records transmission to the customer. No monetary effect.
func (inv *Invoice) MarkSent() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark a %s invoice as sent", inv.Status))
	}
	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// ApplyPayment validates and records a payment against the invoice,
// advancing the lifecycle status. Returns the created Payment record.
//
// The validation here is the authoritative one: callers must run it on
// a row locked inside the storage transaction, not merely in the UI.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, method PaymentMethod, paymentDate time.Time, reference string) (*Payment, error) {
	switch inv.Status {
	case InvoiceStatusVoid:
		return nil, ErrInvoiceVoid
	case InvoiceStatusPaid:
		return nil, ErrInvoiceAlreadyPaid
	}
	if !inv.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to a %s invoice", inv.Status))
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if amount.Amount().GreaterThan(inv.OutstandingAmount()) {
		return nil, ErrPaymentExceedsBalance
	}

	payment := NewPayment(inv, amount, method, paymentDate, reference)

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.Status = nextStatus(inv.Status, inv.PaidAmount, inv.TotalAmount)

	now := time.Now()
	if inv.Status == InvoiceStatusPaid {
		inv.PaidAt = &now
	}
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewPaymentRecordedEvent(inv, payment))
	if inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	return payment, nil
}

// Void cancels the invoice permanently, excluding it from every balance
// computation. An invoice with recorded payments cannot be voided;
// reversing real money movement is out of scope.
func (inv *Invoice) Void(reason string) error {
	if inv.Status == InvoiceStatusVoid {
		return ErrInvoiceVoid
	}
	if !inv.Status.CanVoid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void a %s invoice", inv.Status))
	}
	if inv.PaidAmount.IsPositive() {
		return ErrCannotVoidPaidInvoice
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	previous := inv.Status
	inv.Status = InvoiceStatusVoid
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, previous))

	return nil
}

// CheckInvariants verifies the invoice-level billing invariants after a
// mutation. A violation is a defect, not an expected error.
func (inv *Invoice) CheckInvariants() error {
	if inv.IsVoid() {
		return nil
	}
	if inv.PaidAmount.IsNegative() || inv.PaidAmount.GreaterThan(inv.TotalAmount) {
		return ErrLedgerInconsistent
	}
	paid := inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount)
	if paid != (inv.Status == InvoiceStatusPaid) {
		return ErrLedgerInconsistent
	}
	partial := inv.PaidAmount.IsPositive() && inv.PaidAmount.LessThan(inv.TotalAmount)
	if partial != (inv.Status == InvoiceStatusPartiallyPaid) {
		return ErrLedgerInconsistent
	}
	return nil
}
