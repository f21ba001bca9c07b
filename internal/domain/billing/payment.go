package billing

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck,
		PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is an immutable record of money received against an invoice.
// Corrections are modeled as void-and-reissue of the invoice, never as
// edits to a payment.
type Payment struct {
	shared.TenantAggregateRoot
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          PaymentMethod   `json:"method"`
	ReferenceNumber string          `json:"reference_number"`
}

// NewPayment creates a payment record for an invoice. Validation lives
// in Invoice.ApplyPayment, which is the only caller.
func NewPayment(inv *Invoice, amount valueobject.Money, method PaymentMethod, paymentDate time.Time, reference string) *Payment {
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(inv.TenantID),
		InvoiceID:           inv.ID,
		InvoiceNumber:       inv.InvoiceNumber,
		CustomerID:          inv.CustomerID,
		Amount:              amount.Amount(),
		PaymentDate:         paymentDate,
		Method:              method,
		ReferenceNumber:     reference,
	}
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}
