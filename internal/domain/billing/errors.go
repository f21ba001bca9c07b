package billing

import (
	"fmt"

	"github.com/freightdesk/backend/internal/domain/shared"
)

// Billing-specific domain errors. Codes group into the four kinds the
// API layer cares about: validation, conflict, not-found, consistency.
var (
	ErrEmptyChargeSet        = shared.NewDomainError("EMPTY_CHARGE_SET", "Cannot generate an invoice from a job with no charges")
	ErrInvalidPaymentAmount  = shared.NewDomainError("INVALID_PAYMENT_AMOUNT", "Payment amount must be positive")
	ErrPaymentExceedsBalance = shared.NewDomainError("PAYMENT_EXCEEDS_BALANCE", "Payment amount exceeds the invoice outstanding balance")
	ErrInvoiceAlreadyPaid    = shared.NewDomainError("INVOICE_ALREADY_PAID", "Invoice is already fully paid")
	ErrInvoiceVoid           = shared.NewDomainError("INVOICE_VOID", "Invoice has been voided")
	ErrCannotVoidPaidInvoice = shared.NewDomainError("CANNOT_VOID_PAID_INVOICE", "Cannot void an invoice that has recorded payments")
	ErrLedgerInconsistent    = shared.NewDomainError("LEDGER_INCONSISTENT", "Ledger totals violate a billing invariant")
)

// NewDuplicateInvoiceError reports that a job already carries a non-void
// invoice, naming the conflicting invoice number.
func NewDuplicateInvoiceError(invoiceNumber string) *shared.DomainError {
	return shared.NewDomainError("DUPLICATE_INVOICE",
		fmt.Sprintf("Job already has invoice %s; void it before re-invoicing", invoiceNumber))
}
