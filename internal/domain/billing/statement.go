package billing

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementEntryType distinguishes debits (invoices) from credits (payments)
type StatementEntryType string

const (
	StatementEntryInvoice StatementEntryType = "INVOICE"
	StatementEntryPayment StatementEntryType = "PAYMENT"
)

// StatementTransaction is one row of a customer statement
type StatementTransaction struct {
	Type           StatementEntryType `json:"type"`
	SourceID       uuid.UUID          `json:"source_id"`
	Reference      string             `json:"reference"` // invoice number, or payment reference
	Description    string             `json:"description"`
	Date           time.Time          `json:"date"`
	Debit          decimal.Decimal    `json:"debit"`
	Credit         decimal.Decimal    `json:"credit"`
	RunningBalance decimal.Decimal    `json:"running_balance"`

	createdAt time.Time
}

// Statement is the reconciled view of a customer's billing activity.
// It is derived entirely from invoices and payments; nothing in it is
// stored independently.
type Statement struct {
	CustomerID     uuid.UUID              `json:"customer_id"`
	GeneratedAt    time.Time              `json:"generated_at"`
	Transactions   []StatementTransaction `json:"transactions"`
	TotalDebit     decimal.Decimal        `json:"total_debit"`
	TotalCredit    decimal.Decimal        `json:"total_credit"`
	ClosingBalance decimal.Decimal        `json:"closing_balance"`
}

// BuildStatement reconciles a customer's invoices and payments into a
// chronological statement with a running balance. The function is pure
// and deterministic: entries are ordered by business date with a stable
// tiebreak on creation time then ID, so the output does not depend on
// the order rows were fetched in.
//
// Void invoices and the payments recorded against them (there should be
// none) are excluded from every figure.
func BuildStatement(customerID uuid.UUID, invoices []*Invoice, payments []*Payment) *Statement {
	voided := make(map[uuid.UUID]bool)
	for _, inv := range invoices {
		if inv.IsVoid() {
			voided[inv.ID] = true
		}
	}

	entries := make([]StatementTransaction, 0, len(invoices)+len(payments))

	for _, inv := range invoices {
		if inv.CustomerID != customerID || inv.IsVoid() {
			continue
		}
		entries = append(entries, StatementTransaction{
			Type:        StatementEntryInvoice,
			SourceID:    inv.ID,
			Reference:   inv.InvoiceNumber,
			Description: invoiceDescription(inv),
			Date:        inv.IssueDate,
			Debit:       inv.TotalAmount,
			Credit:      decimal.Zero,
			createdAt:   inv.CreatedAt,
		})
	}

	for _, p := range payments {
		if p.CustomerID != customerID || voided[p.InvoiceID] {
			continue
		}
		entries = append(entries, StatementTransaction{
			Type:        StatementEntryPayment,
			SourceID:    p.ID,
			Reference:   p.ReferenceNumber,
			Description: "Payment for " + p.InvoiceNumber,
			Date:        p.PaymentDate,
			Debit:       decimal.Zero,
			Credit:      p.Amount,
			createdAt:   p.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		ea, eb := entries[a], entries[b]
		if !ea.Date.Equal(eb.Date) {
			return ea.Date.Before(eb.Date)
		}
		if !ea.createdAt.Equal(eb.createdAt) {
			return ea.createdAt.Before(eb.createdAt)
		}
		return ea.SourceID.String() < eb.SourceID.String()
	})

	balance := decimal.Zero
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].Debit).Sub(entries[i].Credit)
		entries[i].RunningBalance = balance
		totalDebit = totalDebit.Add(entries[i].Debit)
		totalCredit = totalCredit.Add(entries[i].Credit)
	}

	return &Statement{
		CustomerID:     customerID,
		GeneratedAt:    time.Now(),
		Transactions:   entries,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		ClosingBalance: totalDebit.Sub(totalCredit),
	}
}

// Validate cross-checks the statement figures. A negative closing
// balance means payments exceed non-void invoices, which the ledger
// should have made impossible.
func (s *Statement) Validate() error {
	sum := decimal.Zero
	for _, t := range s.Transactions {
		sum = sum.Add(t.Debit).Sub(t.Credit)
	}
	if !sum.Equal(s.ClosingBalance) {
		return ErrLedgerInconsistent
	}
	if s.ClosingBalance.IsNegative() {
		return ErrLedgerInconsistent
	}
	return nil
}

func invoiceDescription(inv *Invoice) string {
	if inv.JobNumber != "" {
		return "Invoice " + inv.InvoiceNumber + " (job " + inv.JobNumber + ")"
	}
	return "Invoice " + inv.InvoiceNumber
}
