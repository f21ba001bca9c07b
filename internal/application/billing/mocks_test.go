package billing

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDB returns a GORM handle over sqlmock for driving the
// transactional services. Callers script Begin/Commit/Rollback on the
// returned sqlmock.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, sqlMock, mockDB
}

func mustMoney(t *testing.T, s string) valueobject.Money {
	t.Helper()

	m, err := valueobject.NewMoneyUSDFromString(s)
	require.NoError(t, err)
	return m
}

// =============================================================================
// Mock Repositories
// =============================================================================

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindActiveByJob(ctx context.Context, tenantID, jobID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	args := m.Called(ctx, tenantID, year)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) WithTx(tx interface{}) billing.InvoiceRepository {
	return m
}

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*billing.Payment, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) WithTx(tx interface{}) billing.PaymentRepository {
	return m
}

// MockJobRepository is a mock implementation of billing.JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Job), args.Error(1)
}

func (m *MockJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Job, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Job), args.Error(1)
}

func (m *MockJobRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Job, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Job), args.Error(1)
}

func (m *MockJobRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (*billing.Job, error) {
	args := m.Called(ctx, tenantID, jobNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Job), args.Error(1)
}

func (m *MockJobRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Job, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Job), args.Error(1)
}

func (m *MockJobRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.JobFilter) ([]billing.Job, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Job), args.Error(1)
}

func (m *MockJobRepository) Save(ctx context.Context, job *billing.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) SaveWithLock(ctx context.Context, job *billing.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.JobFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, jobNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobRepository) WithTx(tx interface{}) billing.JobRepository {
	return m
}

// MockFeeRepository is a mock implementation of billing.FeeRepository
type MockFeeRepository struct {
	mock.Mock
}

func (m *MockFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Fee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Fee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*billing.Fee, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.FeeFilter) ([]billing.Fee, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Fee), args.Error(1)
}

func (m *MockFeeRepository) Save(ctx context.Context, fee *billing.Fee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockFeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFeeRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, tenantID, name)
	return args.Bool(0), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) ([]partner.Customer, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) WithTx(tx interface{}) partner.CustomerRepository {
	return m
}
