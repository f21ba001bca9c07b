package billing

import (
	"testing"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInvoice(t *testing.T, total string) *Invoice {
	t.Helper()

	job := createTestJobWithCharges(t, total)
	inv, err := BuildInvoiceFromJob(job, "INV-2026-0001", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 30)
	require.NoError(t, err)
	return inv
}

func mustUSD(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyUSDFromString(s)
	require.NoError(t, err)
	return m
}

func TestInvoiceStatus(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusVoid} {
			assert.True(t, s.IsValid())
		}
		assert.False(t, InvoiceStatus("OPEN").IsValid())
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.True(t, InvoiceStatusPaid.IsTerminal())
		assert.True(t, InvoiceStatusVoid.IsTerminal())
		assert.False(t, InvoiceStatusSent.IsTerminal())
		assert.False(t, InvoiceStatusPartiallyPaid.IsTerminal())
	})

	t.Run("payment application gates", func(t *testing.T) {
		assert.True(t, InvoiceStatusDraft.CanApplyPayment())
		assert.True(t, InvoiceStatusSent.CanApplyPayment())
		assert.True(t, InvoiceStatusPartiallyPaid.CanApplyPayment())
		assert.False(t, InvoiceStatusPaid.CanApplyPayment())
		assert.False(t, InvoiceStatusVoid.CanApplyPayment())
	})
}

func TestInvoiceMarkSent(t *testing.T) {
	t.Run("draft can be sent", func(t *testing.T) {
		inv := createTestInvoice(t, "935.00")

		err := inv.MarkSent()

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.NotNil(t, inv.SentAt)
	})

	t.Run("sent cannot be sent again", func(t *testing.T) {
		inv := createTestInvoice(t, "935.00")
		require.NoError(t, inv.MarkSent())

		err := inv.MarkSent()

		assert.Error(t, err)
	})
}

func TestInvoiceApplyPayment(t *testing.T) {
	t.Run("full payment settles the invoice", func(t *testing.T) {
		inv := createTestInvoice(t, "935.00")
		require.NoError(t, inv.MarkSent())

		payment, err := inv.ApplyPayment(mustUSD(t, "935.00"), PaymentMethodBankTransfer, time.Time{}, "TXN-001")

		require.NoError(t, err)
		require.NotNil(t, payment)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.OutstandingAmount().IsZero())
		assert.NotNil(t, inv.PaidAt)
		assert.Equal(t, inv.ID, payment.InvoiceID)
		assert.True(t, payment.Amount.Equal(decimal.RequireFromString("935.00")))
		require.NoError(t, inv.CheckInvariants())
	})

	t.Run("partial payments advance through partially paid", func(t *testing.T) {
		inv := createTestInvoice(t, "687.50")
		require.NoError(t, inv.MarkSent())

		_, err := inv.ApplyPayment(mustUSD(t, "250.00"), PaymentMethodCash, time.Time{}, "")
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.OutstandingAmount().Equal(decimal.RequireFromString("437.50")))

		_, err = inv.ApplyPayment(mustUSD(t, "437.50"), PaymentMethodBankTransfer, time.Time{}, "TXN-002")
		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.OutstandingAmount().IsZero())

		// A third payment bounces off the settled invoice.
		_, err = inv.ApplyPayment(mustUSD(t, "1.00"), PaymentMethodCash, time.Time{}, "")
		assert.ErrorIs(t, err, ErrInvoiceAlreadyPaid)
		require.NoError(t, inv.CheckInvariants())
	})

	t.Run("overpayment is rejected and leaves the invoice unchanged", func(t *testing.T) {
		inv := createTestInvoice(t, "385.00")
		require.NoError(t, inv.MarkSent())
		versionBefore := inv.GetVersion()

		payment, err := inv.ApplyPayment(mustUSD(t, "400.00"), PaymentMethodCash, time.Time{}, "")

		assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
		assert.Nil(t, payment)
		assert.Equal(t, InvoiceStatusSent, inv.Status)
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Equal(t, versionBefore, inv.GetVersion())
	})

	t.Run("partial overpayment against remaining balance is rejected", func(t *testing.T) {
		inv := createTestInvoice(t, "500.00")
		require.NoError(t, inv.MarkSent())
		_, err := inv.ApplyPayment(mustUSD(t, "300.00"), PaymentMethodCash, time.Time{}, "")
		require.NoError(t, err)

		_, err = inv.ApplyPayment(mustUSD(t, "300.00"), PaymentMethodCash, time.Time{}, "")

		assert.ErrorIs(t, err, ErrPaymentExceedsBalance)
		assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("300.00")))
	})

	t.Run("zero and negative amounts are rejected", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		require.NoError(t, inv.MarkSent())

		_, err := inv.ApplyPayment(valueobject.ZeroUSD(), PaymentMethodCash, time.Time{}, "")
		assert.ErrorIs(t, err, ErrInvalidPaymentAmount)

		_, err = inv.ApplyPayment(valueobject.NewMoneyUSD(decimal.RequireFromString("-5.00")), PaymentMethodCash, time.Time{}, "")
		assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
	})

	t.Run("unknown payment method is rejected", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		require.NoError(t, inv.MarkSent())

		_, err := inv.ApplyPayment(mustUSD(t, "50.00"), PaymentMethod("BARTER"), time.Time{}, "")

		assert.Error(t, err)
	})

	t.Run("payment against void invoice is rejected", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		require.NoError(t, inv.Void("raised in error"))

		_, err := inv.ApplyPayment(mustUSD(t, "50.00"), PaymentMethodCash, time.Time{}, "")

		assert.ErrorIs(t, err, ErrInvoiceVoid)
	})

	t.Run("payment on a draft invoice is allowed", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")

		_, err := inv.ApplyPayment(mustUSD(t, "100.00"), PaymentMethodCash, time.Time{}, "")

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("events are raised per accepted payment", func(t *testing.T) {
		inv := createTestInvoice(t, "200.00")
		require.NoError(t, inv.MarkSent())
		inv.ClearDomainEvents()

		_, err := inv.ApplyPayment(mustUSD(t, "200.00"), PaymentMethodCard, time.Time{}, "ch_123")
		require.NoError(t, err)

		events := inv.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypePaymentRecorded, events[0].EventType())
		assert.Equal(t, EventTypeInvoicePaid, events[1].EventType())
	})
}

func TestInvoiceVoid(t *testing.T) {
	t.Run("draft invoice can be voided", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")

		err := inv.Void("duplicate entry")

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusVoid, inv.Status)
		assert.NotNil(t, inv.VoidedAt)
		assert.Equal(t, "duplicate entry", inv.VoidReason)
	})

	t.Run("sent invoice can be voided", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		require.NoError(t, inv.MarkSent())

		assert.NoError(t, inv.Void("customer dispute"))
	})

	t.Run("paid invoice cannot be voided", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		_, err := inv.ApplyPayment(mustUSD(t, "100.00"), PaymentMethodCash, time.Time{}, "")
		require.NoError(t, err)

		err = inv.Void("change of mind")

		assert.Error(t, err)
	})

	t.Run("partially paid invoice cannot be voided", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		require.NoError(t, inv.MarkSent())
		_, err := inv.ApplyPayment(mustUSD(t, "40.00"), PaymentMethodCash, time.Time{}, "")
		require.NoError(t, err)

		err = inv.Void("customer dispute")

		assert.ErrorIs(t, err, ErrCannotVoidPaidInvoice)
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})

	t.Run("void invoice cannot be voided again", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")
		require.NoError(t, inv.Void("first"))

		err := inv.Void("second")

		assert.ErrorIs(t, err, ErrInvoiceVoid)
	})

	t.Run("void requires a reason", func(t *testing.T) {
		inv := createTestInvoice(t, "100.00")

		err := inv.Void("")

		assert.Error(t, err)
	})
}

func TestInvoiceCheckInvariants(t *testing.T) {
	t.Run("healthy invoice passes", func(t *testing.T) {
		inv := createTestInvoice(t, "300.00")
		assert.NoError(t, inv.CheckInvariants())

		_, err := inv.ApplyPayment(mustUSD(t, "100.00"), PaymentMethodCash, time.Time{}, "")
		require.NoError(t, err)
		assert.NoError(t, inv.CheckInvariants())
	})

	t.Run("status out of step with paid amount is flagged", func(t *testing.T) {
		inv := createTestInvoice(t, "300.00")
		inv.PaidAmount = decimal.RequireFromString("300.00")

		assert.ErrorIs(t, inv.CheckInvariants(), ErrLedgerInconsistent)
	})

	t.Run("paid amount above total is flagged", func(t *testing.T) {
		inv := createTestInvoice(t, "300.00")
		inv.PaidAmount = decimal.RequireFromString("301.00")
		inv.Status = InvoiceStatusPaid

		assert.ErrorIs(t, inv.CheckInvariants(), ErrLedgerInconsistent)
	})

	t.Run("void invoice is exempt", func(t *testing.T) {
		inv := createTestInvoice(t, "300.00")
		require.NoError(t, inv.Void("raised in error"))

		assert.NoError(t, inv.CheckInvariants())
	})
}

func TestNextStatus(t *testing.T) {
	total := decimal.RequireFromString("100.00")

	tests := []struct {
		name    string
		current InvoiceStatus
		paid    string
		want    InvoiceStatus
	}{
		{"no payment keeps draft", InvoiceStatusDraft, "0", InvoiceStatusDraft},
		{"no payment keeps sent", InvoiceStatusSent, "0", InvoiceStatusSent},
		{"partial from sent", InvoiceStatusSent, "40.00", InvoiceStatusPartiallyPaid},
		{"partial from draft", InvoiceStatusDraft, "0.01", InvoiceStatusPartiallyPaid},
		{"exact settlement", InvoiceStatusPartiallyPaid, "100.00", InvoiceStatusPaid},
		{"settlement straight from sent", InvoiceStatusSent, "100.00", InvoiceStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextStatus(tt.current, decimal.RequireFromString(tt.paid), total)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvoiceItemsScan(t *testing.T) {
	t.Run("round trip through driver value", func(t *testing.T) {
		items := InvoiceItems{{
			ID:          uuid.New(),
			Description: "Customs clearance",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.RequireFromString("850.00"),
			TaxRate:     decimal.RequireFromString("5"),
			TaxAmount:   decimal.RequireFromString("42.50"),
			LineTotal:   decimal.RequireFromString("892.50"),
		}}

		v, err := items.Value()
		require.NoError(t, err)

		var out InvoiceItems
		require.NoError(t, out.Scan(v))
		require.Len(t, out, 1)
		assert.Equal(t, items[0].ID, out[0].ID)
		assert.True(t, out[0].LineTotal.Equal(items[0].LineTotal))
	})

	t.Run("nil scans to empty slice", func(t *testing.T) {
		var out InvoiceItems
		require.NoError(t, out.Scan(nil))
		assert.Empty(t, out)
	})
}

func TestDomainErrorKinds(t *testing.T) {
	var de *shared.DomainError

	require.ErrorAs(t, ErrPaymentExceedsBalance, &de)
	assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", de.Code)

	require.ErrorAs(t, NewDuplicateInvoiceError("INV-2026-0007"), &de)
	assert.Equal(t, "DUPLICATE_INVOICE", de.Code)
	assert.Contains(t, de.Message, "INV-2026-0007")
}
