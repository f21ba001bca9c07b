package billing

import (
	"context"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	Status       *InvoiceStatus
	CustomerID   *uuid.UUID
	JobID        *uuid.UUID
	IssuedAfter  *time.Time
	IssuedBefore *time.Time
	OverdueOnly  bool
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByIDForUpdate finds an invoice by ID with a row lock. Must be
	// called inside a transaction; the lock is held until commit.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its invoice number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*Invoice, error)

	// FindActiveByJob returns the non-void invoice linked to a job, or
	// shared.ErrNotFound when the job has never been invoiced or its
	// invoice was voided.
	FindActiveByJob(ctx context.Context, tenantID, jobID uuid.UUID) (*Invoice, error)

	// FindAllForTenant finds all invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindByCustomer returns all invoices for a customer, unpaginated,
	// for statement reconciliation
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// CountForTenant counts invoices for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// NextInvoiceNumber allocates the next sequential invoice number for
	// the given year, formatted INV-<year>-<seq>. Allocation is atomic
	// per tenant and year.
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error)

	// WithTx returns a repository bound to the given transaction handle.
	// The handle type matches the persistence layer (a *gorm.DB).
	WithTx(tx interface{}) InvoiceRepository
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	InvoiceID  *uuid.UUID
	CustomerID *uuid.UUID
	Method     *PaymentMethod
	PaidAfter  *time.Time
	PaidBefore *time.Time
}

// PaymentRepository defines the interface for payment persistence.
// Payments are append-only: there is no update or delete.
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByInvoice returns all payments recorded against an invoice,
	// oldest first
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*Payment, error)

	// FindByCustomer returns all payments for a customer, unpaginated,
	// for statement reconciliation
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*Payment, error)

	// FindAllForTenant finds all payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// Save inserts a payment record
	Save(ctx context.Context, payment *Payment) error

	// CountForTenant counts payments for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// WithTx returns a repository bound to the given transaction handle
	WithTx(tx interface{}) PaymentRepository
}

// JobFilter defines filtering options for job queries
type JobFilter struct {
	shared.Filter
	Status     *JobStatus
	CustomerID *uuid.UUID
}

// JobRepository defines the interface for job persistence
type JobRepository interface {
	// FindByID finds a job by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)

	// FindByIDForTenant finds a job by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Job, error)

	// FindByIDForUpdate finds a job by ID with a row lock. Must be
	// called inside a transaction.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Job, error)

	// FindByNumber finds a job by its job number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (*Job, error)

	// FindByInvoice finds the job linked to an invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*Job, error)

	// FindAllForTenant finds all jobs for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter JobFilter) ([]Job, error)

	// Save creates or updates a job
	Save(ctx context.Context, job *Job) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, job *Job) error

	// CountForTenant counts jobs for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter JobFilter) (int64, error)

	// ExistsByNumber checks if a job number exists for a tenant
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (bool, error)

	// WithTx returns a repository bound to the given transaction handle
	WithTx(tx interface{}) JobRepository
}

// FeeFilter defines filtering options for fee catalog queries
type FeeFilter struct {
	shared.Filter
	ActiveOnly bool
}

// FeeRepository defines the interface for fee catalog persistence
type FeeRepository interface {
	// FindByID finds a fee by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Fee, error)

	// FindByIDForTenant finds a fee by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Fee, error)

	// FindByName finds a fee by name for a tenant
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Fee, error)

	// FindAllForTenant finds all fees for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter FeeFilter) ([]Fee, error)

	// Save creates or updates a fee
	Save(ctx context.Context, fee *Fee) error

	// Delete soft deletes a fee
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByName checks if a fee name exists for a tenant
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
}
