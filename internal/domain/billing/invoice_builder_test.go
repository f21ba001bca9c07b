package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
)

func TestBuildInvoiceFromJob(t *testing.T) {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("aggregates charges into a draft invoice", func(t *testing.T) {
		job := createTestJob(t)
		require.NoError(t, job.Start())

		clearance, err := NewFee(job.TenantID, "Customs clearance", decimal.RequireFromString("850.00"), true, decimal.RequireFromString("5"))
		require.NoError(t, err)
		docs, err := NewFee(job.TenantID, "Documentation", decimal.RequireFromString("50.00"), false, decimal.Zero)
		require.NoError(t, err)

		c1, err := NewJobCharge(clearance, "", mustUSD(t, "850.00"), decimal.NewFromInt(1))
		require.NoError(t, err)
		c2, err := NewJobCharge(docs, "Bill of lading set", mustUSD(t, "50.00"), decimal.NewFromInt(1))
		require.NoError(t, err)
		require.NoError(t, job.AddCharge(c1))
		require.NoError(t, job.AddCharge(c2))

		inv, err := BuildInvoiceFromJob(job, "INV-2026-0007", issue, 30)

		require.NoError(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Equal(t, "INV-2026-0007", inv.InvoiceNumber)
		assert.Equal(t, job.CustomerID, inv.CustomerID)
		require.NotNil(t, inv.JobID)
		assert.Equal(t, job.ID, *inv.JobID)

		assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("900.00")))
		assert.True(t, inv.TaxAmount.Equal(decimal.RequireFromString("42.50")))
		assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("942.50")))
		assert.True(t, inv.PaidAmount.IsZero())
		assert.True(t, inv.TotalAmount.Equal(job.TotalAmount))
	})

	t.Run("items preserve charge order and values", func(t *testing.T) {
		job := createTestJob(t)
		require.NoError(t, job.Start())

		names := []string{"Alpha", "Bravo", "Charlie"}
		for i, name := range names {
			fee, err := NewFee(job.TenantID, name, decimal.NewFromInt(int64(10*(i+1))), false, decimal.Zero)
			require.NoError(t, err)
			charge, err := NewJobCharge(fee, "", mustUSD(t, fee.DefaultAmount.StringFixed(2)), decimal.NewFromInt(1))
			require.NoError(t, err)
			require.NoError(t, job.AddCharge(charge))
		}

		inv, err := BuildInvoiceFromJob(job, "INV-2026-0008", issue, 30)

		require.NoError(t, err)
		require.Len(t, inv.Items, 3)
		for i, name := range names {
			assert.Equal(t, name, inv.Items[i].Description)
			assert.True(t, inv.Items[i].UnitPrice.Equal(job.Charges[i].Amount))
			assert.True(t, inv.Items[i].LineTotal.Equal(job.Charges[i].Total))
		}
	})

	t.Run("empty charge set is rejected", func(t *testing.T) {
		job := createTestJob(t)
		require.NoError(t, job.Start())

		_, err := BuildInvoiceFromJob(job, "INV-2026-0009", issue, 30)

		assert.ErrorIs(t, err, ErrEmptyChargeSet)
	})

	t.Run("cancelled job is rejected", func(t *testing.T) {
		job := createTestJobWithCharges(t, "100.00")
		require.NoError(t, job.Cancel("abandoned"))

		_, err := BuildInvoiceFromJob(job, "INV-2026-0010", issue, 30)

		assert.Error(t, err)
	})

	t.Run("due date honours payment terms", func(t *testing.T) {
		job := createTestJobWithCharges(t, "100.00")

		inv, err := BuildInvoiceFromJob(job, "INV-2026-0011", issue, 45)

		require.NoError(t, err)
		assert.Equal(t, issue.AddDate(0, 0, 45), inv.DueDate)
	})

	t.Run("zero terms default to thirty days", func(t *testing.T) {
		job := createTestJobWithCharges(t, "100.00")

		inv, err := BuildInvoiceFromJob(job, "INV-2026-0012", issue, 0)

		require.NoError(t, err)
		assert.Equal(t, issue.AddDate(0, 0, 30), inv.DueDate)
	})

	t.Run("invoice number is required", func(t *testing.T) {
		job := createTestJobWithCharges(t, "100.00")

		_, err := BuildInvoiceFromJob(job, "  ", issue, 30)

		assert.Error(t, err)
	})

	t.Run("generation raises an event", func(t *testing.T) {
		job := createTestJobWithCharges(t, "100.00")

		inv, err := BuildInvoiceFromJob(job, "INV-2026-0013", issue, 30)

		require.NoError(t, err)
		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceGenerated, events[0].EventType())
	})
}

func TestBuildManualInvoice(t *testing.T) {
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tenantID := uuid.New()
	customerID := uuid.New()

	t.Run("builds an invoice without a job", func(t *testing.T) {
		lines := []ManualLine{
			{Description: "Storage surcharge", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("25.00"), TaxRate: decimal.Zero},
			{Description: "Inspection", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("200.00"), TaxRate: decimal.RequireFromString("5")},
		}

		inv, err := BuildManualInvoice(tenantID, customerID, "Acme Trading LLC", "INV-2026-0020", issue, 30, lines)

		require.NoError(t, err)
		assert.Nil(t, inv.JobID)
		assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("300.00")))
		assert.True(t, inv.TaxAmount.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("310.00")))
	})

	t.Run("empty line set is rejected", func(t *testing.T) {
		_, err := BuildManualInvoice(tenantID, customerID, "Acme", "INV-2026-0021", issue, 30, nil)
		assert.ErrorIs(t, err, ErrEmptyChargeSet)
	})

	t.Run("line validation", func(t *testing.T) {
		tests := []struct {
			name string
			line ManualLine
		}{
			{"empty description", ManualLine{Description: "", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
			{"zero quantity", ManualLine{Description: "x", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(10)}},
			{"negative price", ManualLine{Description: "x", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(-10)}},
			{"negative tax rate", ManualLine{Description: "x", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(-5)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := BuildManualInvoice(tenantID, customerID, "Acme", "INV-2026-0022", issue, 30, []ManualLine{tt.line})
				assert.Error(t, err)
			})
		}
	})
}
