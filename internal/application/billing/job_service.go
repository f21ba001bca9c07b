package billing

import (
	"context"
	"fmt"

	"github.com/freightdesk/backend/internal/domain/audit"
	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// JobService handles clearance job use cases: opening jobs, attaching
// charge lines from the fee catalog, and cancellation.
type JobService struct {
	jobRepo        billing.JobRepository
	feeRepo        billing.FeeRepository
	customerRepo   partner.CustomerRepository
	eventPublisher shared.EventPublisher
	auditRecorder  audit.Recorder
}

// NewJobService creates a new JobService
func NewJobService(
	jobRepo billing.JobRepository,
	feeRepo billing.FeeRepository,
	customerRepo partner.CustomerRepository,
	eventPublisher shared.EventPublisher,
	auditRecorder audit.Recorder,
) *JobService {
	return &JobService{
		jobRepo:        jobRepo,
		feeRepo:        feeRepo,
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
		auditRecorder:  auditRecorder,
	}
}

// Create opens a new clearance job for a customer
func (s *JobService) Create(ctx context.Context, tenantID uuid.UUID, req CreateJobRequest) (*JobResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() {
		return nil, shared.NewDomainError("INACTIVE_CUSTOMER", fmt.Sprintf("Customer %s is not active", customer.Code))
	}

	exists, err := s.jobRepo.ExistsByNumber(ctx, tenantID, req.JobNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_JOB_NUMBER", fmt.Sprintf("Job number %s already exists", req.JobNumber))
	}

	job, err := billing.NewJob(tenantID, req.JobNumber, customer.ID, customer.Name, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, job)

	response := ToJobResponse(job)
	return &response, nil
}

// Get returns a job by ID
func (s *JobService) Get(ctx context.Context, tenantID, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	response := ToJobResponse(job)
	return &response, nil
}

// GetByNumber returns a job by its job number
func (s *JobService) GetByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (*JobResponse, error) {
	job, err := s.jobRepo.FindByNumber(ctx, tenantID, jobNumber)
	if err != nil {
		return nil, err
	}

	response := ToJobResponse(job)
	return &response, nil
}

// List returns jobs matching the filter, paginated
func (s *JobService) List(ctx context.Context, tenantID uuid.UUID, filter JobListFilter) (*shared.Paginated[JobResponse], error) {
	domainFilter := billing.JobFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status:     filter.Status,
		CustomerID: filter.CustomerID,
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	jobs, err := s.jobRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.jobRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, ToJobResponse(&jobs[i]))
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Start moves a pending job into progress
func (s *JobService) Start(ctx context.Context, tenantID, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.Start(); err != nil {
		return nil, err
	}

	if err := s.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}

	response := ToJobResponse(job)
	return &response, nil
}

// AddCharge snapshots a catalog fee onto the job as a charge line.
// Amount and description fall back to the catalog defaults when the
// request leaves them empty.
func (s *JobService) AddCharge(ctx context.Context, tenantID, jobID uuid.UUID, req AddChargeRequest) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	fee, err := s.feeRepo.FindByIDForTenant(ctx, tenantID, req.FeeID)
	if err != nil {
		return nil, err
	}

	amount := fee.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	charge, err := billing.NewJobCharge(fee, req.Description, valueobject.NewMoneyUSD(amount), req.Quantity)
	if err != nil {
		return nil, err
	}

	if err := job.AddCharge(charge); err != nil {
		return nil, err
	}

	if err := s.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}

	response := ToJobResponse(job)
	return &response, nil
}

// RemoveCharge deletes a charge line from a job
func (s *JobService) RemoveCharge(ctx context.Context, tenantID, jobID, chargeID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.RemoveCharge(chargeID); err != nil {
		return nil, err
	}

	if err := s.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}

	response := ToJobResponse(job)
	return &response, nil
}

// Cancel terminates a job. The cancelled status is sticky: it is never
// overwritten by later invoice projections.
func (s *JobService) Cancel(ctx context.Context, tenantID, jobID uuid.UUID, req CancelJobRequest) (*JobResponse, error) {
	job, err := s.jobRepo.FindByIDForTenant(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.jobRepo.SaveWithLock(ctx, job); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, job)

	if s.auditRecorder != nil {
		s.auditRecorder.Record(ctx, audit.NewRecord(tenantID, audit.ActionJobCancelled, "Job", job.ID,
			fmt.Sprintf("Job %s cancelled: %s", job.JobNumber, req.Reason)))
	}

	response := ToJobResponse(job)
	return &response, nil
}

// publishEvents delivers and clears pending domain events. Delivery is
// best-effort; handlers run outside the storage transaction.
func (s *JobService) publishEvents(ctx context.Context, job *billing.Job) {
	if s.eventPublisher == nil {
		return
	}
	if events := job.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		job.ClearDomainEvents()
	}
}
