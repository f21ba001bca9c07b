package billing

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for the billing context
const (
	EventTypeInvoiceGenerated = "billing.invoice.generated"
	EventTypeInvoiceSent      = "billing.invoice.sent"
	EventTypePaymentRecorded  = "billing.payment.recorded"
	EventTypeInvoicePaid      = "billing.invoice.paid"
	EventTypeInvoiceVoided    = "billing.invoice.voided"
)

// InvoiceGeneratedEvent is published when a draft invoice is created
type InvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    string          `json:"customer_id"`
	JobNumber     string          `json:"job_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       time.Time       `json:"due_date"`
}

// NewInvoiceGeneratedEvent creates an InvoiceGeneratedEvent
func NewInvoiceGeneratedEvent(inv *Invoice) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceGenerated, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID.String(),
		JobNumber:       inv.JobNumber,
		TotalAmount:     inv.TotalAmount,
		DueDate:         inv.DueDate,
	}
}

// InvoiceSentEvent is published when an invoice is marked as sent
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	CustomerID    string `json:"customer_id"`
}

// NewInvoiceSentEvent creates an InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID.String(),
	}
}

// PaymentRecordedEvent is published for every accepted payment
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    string          `json:"customer_id"`
	PaymentID     string          `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	NewStatus     InvoiceStatus   `json:"new_status"`
}

// NewPaymentRecordedEvent creates a PaymentRecordedEvent
func NewPaymentRecordedEvent(inv *Invoice, payment *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID.String(),
		PaymentID:       payment.ID.String(),
		Amount:          payment.Amount,
		Method:          payment.Method,
		PaidAmount:      inv.PaidAmount,
		Outstanding:     inv.OutstandingAmount(),
		NewStatus:       inv.Status,
	}
}

// InvoicePaidEvent is published when an invoice reaches full settlement
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    string          `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates an InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID.String(),
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceVoidedEvent is published when an invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber  string        `json:"invoice_number"`
	CustomerID     string        `json:"customer_id"`
	PreviousStatus InvoiceStatus `json:"previous_status"`
	Reason         string        `json:"reason"`
}

// NewInvoiceVoidedEvent creates an InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice, previous InvoiceStatus) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID.String(),
		PreviousStatus:  previous,
		Reason:          inv.VoidReason,
	}
}
