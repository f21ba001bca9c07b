package billing

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
)

// Event type constants for jobs
const (
	EventTypeJobCreated       = "billing.job.created"
	EventTypeJobStatusChanged = "billing.job.status_changed"
	EventTypeJobCancelled     = "billing.job.cancelled"
)

// JobCreatedEvent is published when a clearance job is opened
type JobCreatedEvent struct {
	shared.BaseDomainEvent
	JobNumber  string `json:"job_number"`
	CustomerID string `json:"customer_id"`
}

// NewJobCreatedEvent creates a JobCreatedEvent
func NewJobCreatedEvent(j *Job) *JobCreatedEvent {
	return &JobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobCreated, "Job", j.ID, j.TenantID),
		JobNumber:       j.JobNumber,
		CustomerID:      j.CustomerID.String(),
	}
}

// JobStatusChangedEvent is published on every job status transition,
// whether user-initiated or projected from the linked invoice.
type JobStatusChangedEvent struct {
	shared.BaseDomainEvent
	JobNumber      string    `json:"job_number"`
	PreviousStatus JobStatus `json:"previous_status"`
	NewStatus      JobStatus `json:"new_status"`
	InvoiceNumber  string    `json:"invoice_number,omitempty"`
}

// NewJobStatusChangedEvent creates a JobStatusChangedEvent
func NewJobStatusChangedEvent(j *Job, previous JobStatus, invoiceNumber string) *JobStatusChangedEvent {
	return &JobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobStatusChanged, "Job", j.ID, j.TenantID),
		JobNumber:       j.JobNumber,
		PreviousStatus:  previous,
		NewStatus:       j.Status,
		InvoiceNumber:   invoiceNumber,
	}
}

// JobCancelledEvent is published when a job is cancelled
type JobCancelledEvent struct {
	shared.BaseDomainEvent
	JobNumber      string    `json:"job_number"`
	PreviousStatus JobStatus `json:"previous_status"`
	Reason         string    `json:"reason"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// NewJobCancelledEvent creates a JobCancelledEvent
func NewJobCancelledEvent(j *Job, previous JobStatus) *JobCancelledEvent {
	cancelledAt := time.Now()
	if j.CancelledAt != nil {
		cancelledAt = *j.CancelledAt
	}
	return &JobCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobCancelled, "Job", j.ID, j.TenantID),
		JobNumber:       j.JobNumber,
		PreviousStatus:  previous,
		Reason:          j.CancelReason,
		CancelledAt:     cancelledAt,
	}
}
