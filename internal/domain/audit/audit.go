package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies what happened to a billing record
type Action string

const (
	ActionInvoiceGenerated Action = "INVOICE_GENERATED"
	ActionInvoiceSent      Action = "INVOICE_SENT"
	ActionInvoiceVoided    Action = "INVOICE_VOIDED"
	ActionPaymentRecorded  Action = "PAYMENT_RECORDED"
	ActionJobCancelled     Action = "JOB_CANCELLED"
	ActionJobStatusChanged Action = "JOB_STATUS_CHANGED"
)

// Record is one immutable audit trail entry. Entries are written after
// the business transaction commits and are never updated.
type Record struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Action     Action    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index" json:"entity_id"`
	ActorID    *uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Detail     string    `gorm:"type:text" json:"detail"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "audit_records"
}

// NewRecord creates an audit record
func NewRecord(tenantID uuid.UUID, action Action, entityType string, entityID uuid.UUID, detail string) *Record {
	return &Record{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
}

// WithActor attaches the acting user
func (r *Record) WithActor(actorID uuid.UUID) *Record {
	r.ActorID = &actorID
	return r
}

// Recorder persists audit records. Recording is best-effort: failures
// are logged by implementations and never surfaced to the caller, so an
// audit outage cannot roll back a payment.
type Recorder interface {
	Record(ctx context.Context, record *Record)
}
