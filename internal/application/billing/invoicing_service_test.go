package billing

import (
	"context"
	"testing"
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newChargedJob builds an in-progress job carrying one taxed charge:
// 850.00 at 5% tax, so the job totals 892.50.
func newChargedJob(t *testing.T, tenantID uuid.UUID, customerID uuid.UUID) *billing.Job {
	t.Helper()

	job, err := billing.NewJob(tenantID, "JOB-2026-0042", customerID, "Acme Trading LLC", "Container clearance")
	require.NoError(t, err)
	require.NoError(t, job.Start())

	fee, err := billing.NewFee(tenantID, "Customs Clearance", decimal.RequireFromString("850.00"), true, decimal.RequireFromString("5"))
	require.NoError(t, err)

	charge, err := billing.NewJobCharge(fee, "", valueobject.NewMoneyUSD(fee.DefaultAmount), decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, job.AddCharge(charge))

	job.ClearDomainEvents()
	return job
}

// newBillableCustomer builds an active customer with 45-day terms
func newBillableCustomer(t *testing.T, tenantID uuid.UUID) *partner.Customer {
	t.Helper()

	customer, err := partner.NewCustomer(tenantID, "ACME", "Acme Trading LLC")
	require.NoError(t, err)
	require.NoError(t, customer.SetBillingTerms(45, decimal.Zero))
	customer.ClearDomainEvents()
	return customer
}

func TestInvoicingService_GenerateFromJob(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates charges into a draft invoice", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		jobRepo.On("FindByIDForUpdate", mock.Anything, tenantID, job.ID).Return(job, nil)
		invoiceRepo.On("FindActiveByJob", mock.Anything, tenantID, job.ID).Return(nil, shared.ErrNotFound)
		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("NextInvoiceNumber", mock.Anything, tenantID, mock.AnythingOfType("int")).Return("INV-2026-0007", nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		jobRepo.On("SaveWithLock", mock.Anything, job).Return(nil)
		customerRepo.On("SaveWithLock", mock.Anything, customer).Return(nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		issueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		resp, err := service.GenerateFromJob(ctx, tenantID, job.ID, GenerateInvoiceRequest{IssueDate: &issueDate})

		require.NoError(t, err)
		assert.Equal(t, "INV-2026-0007", resp.InvoiceNumber)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("850.00")))
		assert.True(t, resp.TaxAmount.Equal(decimal.RequireFromString("42.50")))
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("892.50")))
		assert.Equal(t, issueDate.AddDate(0, 0, 45), resp.DueDate)

		// Job linked and customer balance raised in the same transaction
		assert.Equal(t, billing.JobStatusInvoiced, job.Status)
		require.NotNil(t, job.InvoiceID)
		assert.Equal(t, resp.ID, *job.InvoiceID)
		assert.True(t, customer.Balance.Equal(decimal.RequireFromString("892.50")))

		invoiceRepo.AssertExpectations(t)
		jobRepo.AssertExpectations(t)
		customerRepo.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("falls back to configured terms when the customer has none", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer, err := partner.NewCustomer(tenantID, "NOTERMS", "Harbor Freight Co")
		require.NoError(t, err)
		customer.ClearDomainEvents()
		job := newChargedJob(t, tenantID, customer.ID)

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		jobRepo.On("FindByIDForUpdate", mock.Anything, tenantID, job.ID).Return(job, nil)
		invoiceRepo.On("FindActiveByJob", mock.Anything, tenantID, job.ID).Return(nil, shared.ErrNotFound)
		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("NextInvoiceNumber", mock.Anything, tenantID, mock.AnythingOfType("int")).Return("INV-2026-0008", nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		jobRepo.On("SaveWithLock", mock.Anything, job).Return(nil)
		customerRepo.On("SaveWithLock", mock.Anything, customer).Return(nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil,
			config.BillingConfig{DefaultPaymentTermsDays: 14})

		issueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		resp, err := service.GenerateFromJob(ctx, tenantID, job.ID, GenerateInvoiceRequest{IssueDate: &issueDate})

		require.NoError(t, err)
		assert.Equal(t, issueDate.AddDate(0, 0, 14), resp.DueDate)
	})

	t.Run("rejects a job that already has an active invoice", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		existing, err := billing.BuildInvoiceFromJob(job, "INV-2026-0003", time.Now(), 30)
		require.NoError(t, err)

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		jobRepo.On("FindByIDForUpdate", mock.Anything, tenantID, job.ID).Return(job, nil)
		invoiceRepo.On("FindActiveByJob", mock.Anything, tenantID, job.ID).Return(existing, nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		_, err = service.GenerateFromJob(ctx, tenantID, job.ID, GenerateInvoiceRequest{})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "DUPLICATE_INVOICE", de.Code)
		assert.Contains(t, de.Message, "INV-2026-0003")
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a job with no charges", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job, err := billing.NewJob(tenantID, "JOB-2026-0099", customer.ID, customer.Name, "")
		require.NoError(t, err)

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		jobRepo.On("FindByIDForUpdate", mock.Anything, tenantID, job.ID).Return(job, nil)
		invoiceRepo.On("FindActiveByJob", mock.Anything, tenantID, job.ID).Return(nil, shared.ErrNotFound)
		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("NextInvoiceNumber", mock.Anything, tenantID, mock.AnythingOfType("int")).Return("INV-2026-0008", nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		_, err = service.GenerateFromJob(ctx, tenantID, job.ID, GenerateInvoiceRequest{})

		assert.ErrorIs(t, err, billing.ErrEmptyChargeSet)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoicingService_CreateManual(t *testing.T) {
	ctx := context.Background()

	t.Run("raises an invoice with no job link", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("NextInvoiceNumber", mock.Anything, tenantID, mock.AnythingOfType("int")).Return("INV-2026-0010", nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		customerRepo.On("SaveWithLock", mock.Anything, customer).Return(nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		resp, err := service.CreateManual(ctx, tenantID, CreateManualInvoiceRequest{
			CustomerID: customer.ID,
			Lines: []ManualLineInput{
				{Description: "Storage surcharge", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("25.00")},
				{Description: "Documentation", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("200.00"), TaxRate: decimal.RequireFromString("5")},
			},
		})

		require.NoError(t, err)
		assert.Nil(t, resp.JobID)
		assert.True(t, resp.Subtotal.Equal(decimal.RequireFromString("300.00")))
		assert.True(t, resp.TaxAmount.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("310.00")))
		assert.True(t, customer.Balance.Equal(decimal.RequireFromString("310.00")))
	})

	t.Run("rejects an inactive customer", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		customer.Deactivate()

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		_, err := service.CreateManual(ctx, tenantID, CreateManualInvoiceRequest{
			CustomerID: customer.ID,
			Lines:      []ManualLineInput{{Description: "Storage", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INACTIVE_CUSTOMER", de.Code)
	})
}

func TestInvoicingService_Void(t *testing.T) {
	ctx := context.Background()

	t.Run("voids an unpaid invoice and releases the job", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		inv, err := billing.BuildInvoiceFromJob(job, "INV-2026-0007", time.Now(), 45)
		require.NoError(t, err)
		inv.ClearDomainEvents()
		require.NoError(t, job.MarkInvoiced(inv.ID, inv.InvoiceNumber))
		require.NoError(t, customer.IncreaseBalance(inv.TotalAmount))
		job.ClearDomainEvents()
		customer.ClearDomainEvents()

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		invoiceRepo.On("FindByIDForUpdate", mock.Anything, tenantID, inv.ID).Return(inv, nil)
		invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)
		jobRepo.On("FindByIDForUpdate", mock.Anything, tenantID, job.ID).Return(job, nil)
		jobRepo.On("SaveWithLock", mock.Anything, job).Return(nil)
		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		customerRepo.On("SaveWithLock", mock.Anything, customer).Return(nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		resp, err := service.Void(ctx, tenantID, inv.ID, VoidInvoiceRequest{Reason: "Wrong consignee"})

		require.NoError(t, err)
		assert.Equal(t, "VOID", resp.Status)
		assert.Nil(t, job.InvoiceID)
		assert.Equal(t, billing.JobStatusInProgress, job.Status)
		assert.True(t, customer.Balance.IsZero())
	})

	t.Run("refuses to void a partially paid invoice", func(t *testing.T) {
		db, sqlMock, mockDB := newTestDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		inv, err := billing.BuildInvoiceFromJob(job, "INV-2026-0007", time.Now(), 45)
		require.NoError(t, err)
		require.NoError(t, inv.MarkSent())
		_, err = inv.ApplyPayment(valueobject.NewMoneyUSDFromFloat(100), billing.PaymentMethodBankTransfer, time.Now(), "")
		require.NoError(t, err)
		inv.ClearDomainEvents()

		invoiceRepo := new(MockInvoiceRepository)
		jobRepo := new(MockJobRepository)
		customerRepo := new(MockCustomerRepository)

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		invoiceRepo.On("FindByIDForUpdate", mock.Anything, tenantID, inv.ID).Return(inv, nil)

		service := NewInvoicingService(db, invoiceRepo, jobRepo, customerRepo, nil, nil, nil, config.BillingConfig{})

		_, err = service.Void(ctx, tenantID, inv.ID, VoidInvoiceRequest{Reason: "Mistake"})

		assert.ErrorIs(t, err, billing.ErrCannotVoidPaidInvoice)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}
