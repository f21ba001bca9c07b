package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/domain/audit"
	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/freightdesk/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService records payments against invoices. Recording is the
// one mutation the ledger allows: the invoice row is locked, the amount
// re-validated against the live outstanding balance, and the payment
// row, invoice state and job projection committed atomically.
type PaymentService struct {
	db             *gorm.DB
	invoiceRepo    billing.InvoiceRepository
	paymentRepo    billing.PaymentRepository
	jobRepo        billing.JobRepository
	customerRepo   partner.CustomerRepository
	eventPublisher shared.EventPublisher
	auditRecorder  audit.Recorder
	statementCache cache.StatementCache
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	db *gorm.DB,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	jobRepo billing.JobRepository,
	customerRepo partner.CustomerRepository,
	eventPublisher shared.EventPublisher,
	auditRecorder audit.Recorder,
	statementCache cache.StatementCache,
) *PaymentService {
	return &PaymentService{
		db:             db,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		jobRepo:        jobRepo,
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
		auditRecorder:  auditRecorder,
		statementCache: statementCache,
	}
}

// Record applies a payment to an invoice. Validation happens on the
// locked row, not on whatever the caller last read: two clerks posting
// against the same invoice serialize here, and the second sees the
// balance the first one left behind.
func (s *PaymentService) Record(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	method := billing.PaymentMethod(req.Method)

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	var inv *billing.Invoice
	var payment *billing.Payment
	var job *billing.Job

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceRepo := s.invoiceRepo.WithTx(tx)
		paymentRepo := s.paymentRepo.WithTx(tx)
		jobRepo := s.jobRepo.WithTx(tx)
		customerRepo := s.customerRepo.WithTx(tx)

		var err error
		inv, err = invoiceRepo.FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		payment, err = inv.ApplyPayment(valueobject.NewMoneyUSD(req.Amount), method, paymentDate, req.ReferenceNumber)
		if err != nil {
			return err
		}

		if err := invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			return err
		}
		if err := paymentRepo.Save(ctx, payment); err != nil {
			return err
		}

		if inv.JobID != nil {
			job, err = jobRepo.FindByIDForUpdate(ctx, tenantID, *inv.JobID)
			if err != nil {
				return err
			}
			projected := billing.ProjectJobStatus(job, inv)
			if projected != job.Status {
				job.ApplyProjectedStatus(projected)
				if err := jobRepo.SaveWithLock(ctx, job); err != nil {
					return err
				}
			}
		}

		customer, err := customerRepo.FindByIDForTenant(ctx, tenantID, inv.CustomerID)
		if err != nil {
			return err
		}
		if err := customer.DecreaseBalance(payment.Amount); err != nil {
			return err
		}
		return customerRepo.SaveWithLock(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, inv, job,
		audit.NewRecord(tenantID, audit.ActionPaymentRecorded, "Payment", payment.ID,
			fmt.Sprintf("Payment of %s (%s) recorded against invoice %s", payment.Amount.StringFixed(2), payment.Method, inv.InvoiceNumber)))

	return &RecordPaymentResult{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(inv),
	}, nil
}

// Get returns a payment by ID
func (s *PaymentService) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListByInvoice returns all payments recorded against an invoice,
// oldest first
func (s *PaymentService) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses, nil
}

// List returns payments matching the filter, paginated
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := billing.PaymentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		InvoiceID:  filter.InvoiceID,
		CustomerID: filter.CustomerID,
		Method:     filter.Method,
		PaidAfter:  filter.PaidAfter,
		PaidBefore: filter.PaidBefore,
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// afterCommit runs the post-transaction side effects
func (s *PaymentService) afterCommit(ctx context.Context, inv *billing.Invoice, job *billing.Job, record *audit.Record) {
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
