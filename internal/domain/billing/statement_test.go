package billing

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

// statementInvoice builds a sent invoice for the given customer with an
// explicit issue date, bypassing the job pipeline.
func statementInvoice(t *testing.T, customerID uuid.UUID, number, total string, issueDay int) *Invoice {
	t.Helper()

	job := createTestJobWithCharges(t, total)
	job.CustomerID = customerID
	inv, err := BuildInvoiceFromJob(job, number, testDate(issueDay), 30)
	require.NoError(t, err)
	require.NoError(t, inv.MarkSent())
	return inv
}

func payInvoice(t *testing.T, inv *Invoice, amount string, day int) *Payment {
	t.Helper()

	p, err := inv.ApplyPayment(mustUSD(t, amount), PaymentMethodBankTransfer, testDate(day), "")
	require.NoError(t, err)
	return p
}

func TestBuildStatement(t *testing.T) {
	t.Run("running balance and closing balance", func(t *testing.T) {
		customerID := uuid.New()

		inv1 := statementInvoice(t, customerID, "INV-2026-0001", "500.00", 1)
		inv2 := statementInvoice(t, customerID, "INV-2026-0002", "300.00", 10)
		p1 := payInvoice(t, inv1, "500.00", 5)
		p2 := payInvoice(t, inv2, "300.00", 20)

		s := BuildStatement(customerID, []*Invoice{inv1, inv2}, []*Payment{p1, p2})

		require.Len(t, s.Transactions, 4)
		assert.True(t, s.Transactions[0].RunningBalance.Equal(decimal.RequireFromString("500.00")))
		assert.True(t, s.Transactions[1].RunningBalance.IsZero())
		assert.True(t, s.Transactions[2].RunningBalance.Equal(decimal.RequireFromString("300.00")))
		assert.True(t, s.Transactions[3].RunningBalance.IsZero())

		assert.True(t, s.TotalDebit.Equal(decimal.RequireFromString("800.00")))
		assert.True(t, s.TotalCredit.Equal(decimal.RequireFromString("800.00")))
		assert.True(t, s.ClosingBalance.IsZero())
		assert.NoError(t, s.Validate())
	})

	t.Run("closing balance equals debits minus credits", func(t *testing.T) {
		customerID := uuid.New()

		inv1 := statementInvoice(t, customerID, "INV-2026-0003", "935.00", 2)
		inv2 := statementInvoice(t, customerID, "INV-2026-0004", "400.00", 8)
		p1 := payInvoice(t, inv1, "435.00", 12)

		s := BuildStatement(customerID, []*Invoice{inv1, inv2}, []*Payment{p1})

		assert.True(t, s.ClosingBalance.Equal(decimal.RequireFromString("900.00")))
		assert.True(t, s.ClosingBalance.Equal(s.TotalDebit.Sub(s.TotalCredit)))
		assert.NoError(t, s.Validate())
	})

	t.Run("output is independent of input order", func(t *testing.T) {
		customerID := uuid.New()

		invoices := make([]*Invoice, 0, 5)
		payments := make([]*Payment, 0, 5)
		for i := 0; i < 5; i++ {
			inv := statementInvoice(t, customerID, fmt.Sprintf("INV-2026-010%d", i), "100.00", i+1)
			invoices = append(invoices, inv)
			payments = append(payments, payInvoice(t, inv, "100.00", i+10))
		}

		reference := BuildStatement(customerID, invoices, payments)

		rng := rand.New(rand.NewSource(42))
		for trial := 0; trial < 10; trial++ {
			shuffledInv := append([]*Invoice(nil), invoices...)
			shuffledPay := append([]*Payment(nil), payments...)
			rng.Shuffle(len(shuffledInv), func(a, b int) { shuffledInv[a], shuffledInv[b] = shuffledInv[b], shuffledInv[a] })
			rng.Shuffle(len(shuffledPay), func(a, b int) { shuffledPay[a], shuffledPay[b] = shuffledPay[b], shuffledPay[a] })

			s := BuildStatement(customerID, shuffledInv, shuffledPay)

			require.Len(t, s.Transactions, len(reference.Transactions))
			for i := range s.Transactions {
				assert.Equal(t, reference.Transactions[i].SourceID, s.Transactions[i].SourceID)
				assert.True(t, reference.Transactions[i].RunningBalance.Equal(s.Transactions[i].RunningBalance))
			}
		}
	})

	t.Run("same day entries use a stable tiebreak", func(t *testing.T) {
		customerID := uuid.New()

		inv1 := statementInvoice(t, customerID, "INV-2026-0005", "100.00", 3)
		inv2 := statementInvoice(t, customerID, "INV-2026-0006", "200.00", 3)

		a := BuildStatement(customerID, []*Invoice{inv1, inv2}, nil)
		b := BuildStatement(customerID, []*Invoice{inv2, inv1}, nil)

		require.Len(t, a.Transactions, 2)
		assert.Equal(t, a.Transactions[0].SourceID, b.Transactions[0].SourceID)
		assert.Equal(t, a.Transactions[1].SourceID, b.Transactions[1].SourceID)
	})

	t.Run("void invoices are excluded", func(t *testing.T) {
		customerID := uuid.New()

		kept := statementInvoice(t, customerID, "INV-2026-0007", "250.00", 4)
		voided := statementInvoice(t, customerID, "INV-2026-0008", "999.00", 5)
		require.NoError(t, voided.Void("raised in error"))

		s := BuildStatement(customerID, []*Invoice{kept, voided}, nil)

		require.Len(t, s.Transactions, 1)
		assert.Equal(t, kept.ID, s.Transactions[0].SourceID)
		assert.True(t, s.ClosingBalance.Equal(decimal.RequireFromString("250.00")))
	})

	t.Run("payments on a later-voided invoice are excluded with it", func(t *testing.T) {
		customerID := uuid.New()

		inv := statementInvoice(t, customerID, "INV-2026-0009", "300.00", 4)
		p := payInvoice(t, inv, "100.00", 6)
		// Force-void to model historic data voided before the no-void-
		// after-payment rule was enforced.
		inv.Status = InvoiceStatusVoid

		s := BuildStatement(customerID, []*Invoice{inv}, []*Payment{p})

		assert.Empty(t, s.Transactions)
		assert.True(t, s.ClosingBalance.IsZero())
	})

	t.Run("other customers' records are ignored", func(t *testing.T) {
		customerID := uuid.New()
		otherID := uuid.New()

		mine := statementInvoice(t, customerID, "INV-2026-0010", "100.00", 2)
		theirs := statementInvoice(t, otherID, "INV-2026-0011", "700.00", 2)

		s := BuildStatement(customerID, []*Invoice{mine, theirs}, nil)

		require.Len(t, s.Transactions, 1)
		assert.Equal(t, mine.ID, s.Transactions[0].SourceID)
	})

	t.Run("intermediate negative balance is legal", func(t *testing.T) {
		customerID := uuid.New()

		// Payment on day 5 for an invoice issued day 10: the customer
		// paid on a proforma ahead of the formal issue date.
		inv := statementInvoice(t, customerID, "INV-2026-0012", "300.00", 10)
		p := payInvoice(t, inv, "200.00", 5)
		p2 := payInvoice(t, inv, "100.00", 20)

		s := BuildStatement(customerID, []*Invoice{inv}, []*Payment{p, p2})

		require.Len(t, s.Transactions, 3)
		assert.True(t, s.Transactions[0].RunningBalance.Equal(decimal.RequireFromString("-200.00")))
		assert.True(t, s.Transactions[1].RunningBalance.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, s.Transactions[2].RunningBalance.IsZero())
		assert.True(t, s.ClosingBalance.IsZero())
		assert.NoError(t, s.Validate())
	})

	t.Run("empty history yields an empty statement", func(t *testing.T) {
		s := BuildStatement(uuid.New(), nil, nil)

		assert.Empty(t, s.Transactions)
		assert.True(t, s.ClosingBalance.IsZero())
		assert.NoError(t, s.Validate())
	})
}

func TestStatementValidate(t *testing.T) {
	t.Run("negative closing balance is flagged", func(t *testing.T) {
		customerID := uuid.New()
		inv := statementInvoice(t, customerID, "INV-2026-0013", "300.00", 10)
		p := payInvoice(t, inv, "200.00", 5)

		// Drop the invoice from the inputs so only the credit remains.
		s := BuildStatement(customerID, nil, []*Payment{p})

		assert.ErrorIs(t, s.Validate(), ErrLedgerInconsistent)
	})

	t.Run("tampered closing balance is flagged", func(t *testing.T) {
		customerID := uuid.New()
		inv := statementInvoice(t, customerID, "INV-2026-0014", "300.00", 10)

		s := BuildStatement(customerID, []*Invoice{inv}, nil)
		s.ClosingBalance = decimal.RequireFromString("299.00")

		assert.ErrorIs(t, s.Validate(), ErrLedgerInconsistent)
	})
}
