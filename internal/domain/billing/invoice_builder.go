package billing

import (
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualLine describes one line of a manually raised invoice (no job).
type ManualLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // percent
}

// BuildInvoiceFromJob aggregates a job's charge snapshots into a draft
// invoice. Items copy the charge fields verbatim, preserving order; no
// value is recomputed from the fee catalog. The caller is responsible
// for the duplicate-invoice check against the store (inside the same
// transaction that persists the result) and for supplying a unique
// invoice number.
func BuildInvoiceFromJob(job *Job, invoiceNumber string, issueDate time.Time, paymentTermsDays int) (*Invoice, error) {
	if job == nil {
		return nil, shared.NewDomainError("INVALID_JOB", "Job is required")
	}
	if job.Status == JobStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot invoice a cancelled job")
	}
	if !job.HasCharges() {
		return nil, ErrEmptyChargeSet
	}
	if err := validateInvoiceNumber(invoiceNumber); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if paymentTermsDays <= 0 {
		paymentTermsDays = 30
	}

	items := make(InvoiceItems, 0, len(job.Charges))
	subtotal := valueobject.ZeroUSD()
	tax := valueobject.ZeroUSD()
	total := valueobject.ZeroUSD()

	for _, c := range job.Charges {
		items = append(items, InvoiceItem{
			ID:          uuid.New(),
			Description: c.Description,
			Quantity:    c.Quantity,
			UnitPrice:   c.Amount,
			TaxRate:     c.TaxRate,
			TaxAmount:   c.TaxAmount,
			LineTotal:   c.Total,
		})

		line := valueobject.NewMoneyUSD(c.Amount.Mul(c.Quantity)).RoundCurrency()
		subtotal = subtotal.MustAdd(line)
		tax = tax.MustAdd(valueobject.NewMoneyUSD(c.TaxAmount))
		total = total.MustAdd(valueobject.NewMoneyUSD(c.Total))
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(job.TenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          job.CustomerID,
		CustomerName:        job.CustomerName,
		JobID:               &job.ID,
		JobNumber:           job.JobNumber,
		IssueDate:           issueDate,
		DueDate:             issueDate.AddDate(0, 0, paymentTermsDays),
		Subtotal:            subtotal.Amount(),
		TaxAmount:           tax.Amount(),
		TotalAmount:         total.Amount(),
		PaidAmount:          decimal.Zero,
		Status:              InvoiceStatusDraft,
		Items:               items,
	}

	inv.AddDomainEvent(NewInvoiceGeneratedEvent(inv))

	return inv, nil
}

// BuildManualInvoice raises an invoice that is not backed by a job
// (job_id stays nil). Line taxes are computed here since there is no
// charge snapshot to copy from.
func BuildManualInvoice(tenantID, customerID uuid.UUID, customerName, invoiceNumber string, issueDate time.Time, paymentTermsDays int, lines []ManualLine) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyChargeSet
	}
	if err := validateInvoiceNumber(invoiceNumber); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	if paymentTermsDays <= 0 {
		paymentTermsDays = 30
	}

	items := make(InvoiceItems, 0, len(lines))
	subtotal := valueobject.ZeroUSD()
	tax := valueobject.ZeroUSD()
	total := valueobject.ZeroUSD()

	for _, l := range lines {
		if strings.TrimSpace(l.Description) == "" {
			return nil, shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
		}
		if !l.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		if l.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Line unit price cannot be negative")
		}

		extended := valueobject.NewMoneyUSD(l.UnitPrice.Mul(l.Quantity)).RoundCurrency()
		lineTax, err := valueobject.TaxOn(extended, l.TaxRate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_TAX_RATE", err.Error())
		}
		lineTotal := extended.MustAdd(lineTax)

		items = append(items, InvoiceItem{
			ID:          uuid.New(),
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			TaxAmount:   lineTax.Amount(),
			LineTotal:   lineTotal.Amount(),
		})

		subtotal = subtotal.MustAdd(extended)
		tax = tax.MustAdd(lineTax)
		total = total.MustAdd(lineTotal)
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		IssueDate:           issueDate,
		DueDate:             issueDate.AddDate(0, 0, paymentTermsDays),
		Subtotal:            subtotal.Amount(),
		TaxAmount:           tax.Amount(),
		TotalAmount:         total.Amount(),
		PaidAmount:          decimal.Zero,
		Status:              InvoiceStatusDraft,
		Items:               items,
	}

	inv.AddDomainEvent(NewInvoiceGeneratedEvent(inv))

	return inv, nil
}

func validateInvoiceNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	return nil
}
