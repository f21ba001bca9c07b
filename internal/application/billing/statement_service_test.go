package billing

import (
	"context"
	"testing"
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/infrastructure/cache"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func statementCacheConfig(enabled bool) config.StatementConfig {
	return config.StatementConfig{
		CacheEnabled: enabled,
		CacheTTL:     5 * time.Minute,
	}
}

func TestStatementService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles invoices and payments into a statement", func(t *testing.T) {
		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		inv, err := billing.BuildInvoiceFromJob(job, "INV-2026-0007", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 45)
		require.NoError(t, err)
		require.NoError(t, inv.MarkSent())
		payment, err := inv.ApplyPayment(mustMoney(t, "400.00"), billing.PaymentMethodBankTransfer, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "TX-1")
		require.NoError(t, err)

		invoiceRepo := new(MockInvoiceRepository)
		paymentRepo := new(MockPaymentRepository)
		customerRepo := new(MockCustomerRepository)

		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("FindByCustomer", mock.Anything, tenantID, customer.ID).Return([]*billing.Invoice{inv}, nil)
		paymentRepo.On("FindByCustomer", mock.Anything, tenantID, customer.ID).Return([]*billing.Payment{payment}, nil)

		service := NewStatementService(invoiceRepo, paymentRepo, customerRepo, nil, statementCacheConfig(false), zap.NewNop())

		resp, err := service.Generate(ctx, tenantID, customer.ID)

		require.NoError(t, err)
		assert.Equal(t, customer.Name, resp.CustomerName)
		assert.False(t, resp.FromCache)
		require.Len(t, resp.Transactions, 2)
		assert.True(t, resp.TotalDebit.Equal(decimal.RequireFromString("892.50")))
		assert.True(t, resp.TotalCredit.Equal(decimal.RequireFromString("400.00")))
		assert.True(t, resp.ClosingBalance.Equal(decimal.RequireFromString("492.50")))
	})

	t.Run("second call is served from the cache", func(t *testing.T) {
		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		inv, err := billing.BuildInvoiceFromJob(job, "INV-2026-0007", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 45)
		require.NoError(t, err)

		invoiceRepo := new(MockInvoiceRepository)
		paymentRepo := new(MockPaymentRepository)
		customerRepo := new(MockCustomerRepository)

		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		invoiceRepo.On("FindByCustomer", mock.Anything, tenantID, customer.ID).Return([]*billing.Invoice{inv}, nil).Once()
		paymentRepo.On("FindByCustomer", mock.Anything, tenantID, customer.ID).Return([]*billing.Payment{}, nil).Once()

		statementCache := cache.NewInMemoryStatementCache()
		service := NewStatementService(invoiceRepo, paymentRepo, customerRepo, statementCache, statementCacheConfig(true), zap.NewNop())

		first, err := service.Generate(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.False(t, first.FromCache)

		second, err := service.Generate(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		assert.True(t, second.ClosingBalance.Equal(first.ClosingBalance))

		invoiceRepo.AssertExpectations(t)
		paymentRepo.AssertExpectations(t)
	})

	t.Run("inconsistent ledger is reported but never cached", func(t *testing.T) {
		tenantID := uuid.New()
		customer := newBillableCustomer(t, tenantID)
		job := newChargedJob(t, tenantID, customer.ID)

		inv, err := billing.BuildInvoiceFromJob(job, "INV-2026-0007", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 45)
		require.NoError(t, err)
		require.NoError(t, inv.MarkSent())
		payment, err := inv.ApplyPayment(mustMoney(t, "400.00"), billing.PaymentMethodCash, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "")
		require.NoError(t, err)

		invoiceRepo := new(MockInvoiceRepository)
		paymentRepo := new(MockPaymentRepository)
		customerRepo := new(MockCustomerRepository)

		customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
		// The invoice row is missing from the read, leaving an orphan
		// payment and a negative closing balance.
		invoiceRepo.On("FindByCustomer", mock.Anything, tenantID, customer.ID).Return([]*billing.Invoice{}, nil)
		paymentRepo.On("FindByCustomer", mock.Anything, tenantID, customer.ID).Return([]*billing.Payment{payment}, nil)

		statementCache := cache.NewInMemoryStatementCache()
		service := NewStatementService(invoiceRepo, paymentRepo, customerRepo, statementCache, statementCacheConfig(true), zap.NewNop())

		resp, err := service.Generate(ctx, tenantID, customer.ID)

		require.NoError(t, err)
		assert.True(t, resp.ClosingBalance.IsNegative())

		cached, err := statementCache.Get(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})
}
