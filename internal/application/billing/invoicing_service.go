package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/domain/audit"
	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/infrastructure/cache"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoicingService handles invoice generation and lifecycle transitions.
// Generation runs inside a single storage transaction: the duplicate
// check, number allocation, invoice insert and job link either all
// commit or all roll back.
type InvoicingService struct {
	db             *gorm.DB
	invoiceRepo    billing.InvoiceRepository
	jobRepo        billing.JobRepository
	customerRepo   partner.CustomerRepository
	eventPublisher shared.EventPublisher
	auditRecorder  audit.Recorder
	statementCache cache.StatementCache
	billingCfg     config.BillingConfig
}

// NewInvoicingService creates a new InvoicingService
func NewInvoicingService(
	db *gorm.DB,
	invoiceRepo billing.InvoiceRepository,
	jobRepo billing.JobRepository,
	customerRepo partner.CustomerRepository,
	eventPublisher shared.EventPublisher,
	auditRecorder audit.Recorder,
	statementCache cache.StatementCache,
	billingCfg config.BillingConfig,
) *InvoicingService {
	return &InvoicingService{
		db:             db,
		invoiceRepo:    invoiceRepo,
		jobRepo:        jobRepo,
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
		auditRecorder:  auditRecorder,
		statementCache: statementCache,
		billingCfg:     billingCfg,
	}
}

// paymentTermsFor resolves due-date terms. Explicit customer terms win,
// then the configured tenant default, then the domain fallback.
func (s *InvoicingService) paymentTermsFor(customer *partner.Customer) int {
	if customer.PaymentTermsDays > 0 {
		return customer.PaymentTermsDays
	}
	if s.billingCfg.DefaultPaymentTermsDays > 0 {
		return s.billingCfg.DefaultPaymentTermsDays
	}
	return customer.EffectivePaymentTerms()
}

// GenerateFromJob aggregates a job's charges into a draft invoice.
// The job row is locked for the duration of the transaction so two
// concurrent generations cannot both pass the duplicate check.
func (s *InvoicingService) GenerateFromJob(ctx context.Context, tenantID, jobID uuid.UUID, req GenerateInvoiceRequest) (*InvoiceResponse, error) {
	var inv *billing.Invoice
	var job *billing.Job

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobRepo := s.jobRepo.WithTx(tx)
		invoiceRepo := s.invoiceRepo.WithTx(tx)
		customerRepo := s.customerRepo.WithTx(tx)

		var err error
		job, err = jobRepo.FindByIDForUpdate(ctx, tenantID, jobID)
		if err != nil {
			return err
		}

		// Re-check under the row lock: a non-void invoice already linked
		// to this job blocks generation.
		existing, err := invoiceRepo.FindActiveByJob(ctx, tenantID, job.ID)
		if err == nil {
			return billing.NewDuplicateInvoiceError(existing.InvoiceNumber)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		customer, err := customerRepo.FindByIDForTenant(ctx, tenantID, job.CustomerID)
		if err != nil {
			return err
		}

		issueDate := time.Now()
		if req.IssueDate != nil {
			issueDate = *req.IssueDate
		}

		number, err := invoiceRepo.NextInvoiceNumber(ctx, tenantID, issueDate.Year())
		if err != nil {
			return err
		}

		inv, err = billing.BuildInvoiceFromJob(job, number, issueDate, s.paymentTermsFor(customer))
		if err != nil {
			return err
		}

		if err := invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}

		if err := job.MarkInvoiced(inv.ID, inv.InvoiceNumber); err != nil {
			return err
		}
		if err := jobRepo.SaveWithLock(ctx, job); err != nil {
			return err
		}

		if err := customer.IncreaseBalance(inv.TotalAmount); err != nil {
			return err
		}
		return customerRepo.SaveWithLock(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, inv, job,
		audit.NewRecord(tenantID, audit.ActionInvoiceGenerated, "Invoice", inv.ID,
			fmt.Sprintf("Invoice %s generated from job %s for %s", inv.InvoiceNumber, job.JobNumber, inv.TotalAmount.StringFixed(2))))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// CreateManual raises an invoice that is not backed by a job
func (s *InvoicingService) CreateManual(ctx context.Context, tenantID uuid.UUID, req CreateManualInvoiceRequest) (*InvoiceResponse, error) {
	var inv *billing.Invoice

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceRepo := s.invoiceRepo.WithTx(tx)
		customerRepo := s.customerRepo.WithTx(tx)

		customer, err := customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
		if err != nil {
			return err
		}
		if !customer.IsActive() {
			return shared.NewDomainError("INACTIVE_CUSTOMER", fmt.Sprintf("Customer %s is not active", customer.Code))
		}

		issueDate := time.Now()
		if req.IssueDate != nil {
			issueDate = *req.IssueDate
		}

		number, err := invoiceRepo.NextInvoiceNumber(ctx, tenantID, issueDate.Year())
		if err != nil {
			return err
		}

		lines := make([]billing.ManualLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, billing.ManualLine{
				Description: l.Description,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice,
				TaxRate:     l.TaxRate,
			})
		}

		inv, err = billing.BuildManualInvoice(tenantID, customer.ID, customer.Name, number, issueDate, s.paymentTermsFor(customer), lines)
		if err != nil {
			return err
		}

		if err := invoiceRepo.Save(ctx, inv); err != nil {
			return err
		}

		if err := customer.IncreaseBalance(inv.TotalAmount); err != nil {
			return err
		}
		return customerRepo.SaveWithLock(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, inv, nil,
		audit.NewRecord(tenantID, audit.ActionInvoiceGenerated, "Invoice", inv.ID,
			fmt.Sprintf("Manual invoice %s raised for %s", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2))))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// MarkSent records transmission of the invoice to the customer
func (s *InvoicingService) MarkSent(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkSent(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, inv, nil,
		audit.NewRecord(tenantID, audit.ActionInvoiceSent, "Invoice", inv.ID,
			fmt.Sprintf("Invoice %s sent", inv.InvoiceNumber)))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Void cancels an invoice and releases its job for re-invoicing. Both
// sides commit atomically; the customer balance sheds the invoice total
// in the same transaction.
func (s *InvoicingService) Void(ctx context.Context, tenantID, invoiceID uuid.UUID, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	var inv *billing.Invoice
	var job *billing.Job

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceRepo := s.invoiceRepo.WithTx(tx)
		jobRepo := s.jobRepo.WithTx(tx)
		customerRepo := s.customerRepo.WithTx(tx)

		var err error
		inv, err = invoiceRepo.FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		if err := inv.Void(req.Reason); err != nil {
			return err
		}
		if err := invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}

		if inv.JobID != nil {
			job, err = jobRepo.FindByIDForUpdate(ctx, tenantID, *inv.JobID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					job = nil
				} else {
					return err
				}
			}
			if job != nil && job.InvoiceID != nil && *job.InvoiceID == inv.ID {
				job.DetachInvoice()
				if err := jobRepo.SaveWithLock(ctx, job); err != nil {
					return err
				}
			}
		}

		customer, err := customerRepo.FindByIDForTenant(ctx, tenantID, inv.CustomerID)
		if err != nil {
			return err
		}
		// Only unpaid invoices are voidable, so the full total comes off
		if err := customer.DecreaseBalance(inv.TotalAmount); err != nil {
			return err
		}
		return customerRepo.SaveWithLock(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, inv, job,
		audit.NewRecord(tenantID, audit.ActionInvoiceVoided, "Invoice", inv.ID,
			fmt.Sprintf("Invoice %s voided: %s", inv.InvoiceNumber, req.Reason)))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Get returns an invoice by ID
func (s *InvoicingService) Get(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByNumber returns an invoice by its invoice number
func (s *InvoicingService) GetByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByNumber(ctx, tenantID, invoiceNumber)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List returns invoices matching the filter, paginated
func (s *InvoicingService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status:       filter.Status,
		CustomerID:   filter.CustomerID,
		JobID:        filter.JobID,
		IssuedAfter:  filter.IssuedAfter,
		IssuedBefore: filter.IssuedBefore,
		OverdueOnly:  filter.OverdueOnly,
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[i]))
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// afterCommit runs the post-transaction side effects: event delivery,
// audit trail, and statement cache invalidation. None of them can fail
// the already-committed business operation.
func (s *InvoicingService) afterCommit(ctx context.Context, inv *billing.Invoice, job *billing.Job, record *audit.Record) {
	if s.eventPublisher != nil {
		if events := inv.GetDomainEvents(); len(events) > 0 {
			_ = s.eventPublisher.Publish(ctx, events...)
			inv.ClearDomainEvents()
		}
		if job != nil {
			if events := job.GetDomainEvents(); len(events) > 0 {
				_ = s.eventPublisher.Publish(ctx, events...)
				job.ClearDomainEvents()
			}
		}
	}

	if s.auditRecorder != nil && record != nil {
		s.auditRecorder.Record(ctx, record)
	}

	if s.statementCache != nil {
		_ = s.statementCache.Invalidate(ctx, inv.TenantID, inv.CustomerID)
	}
}
