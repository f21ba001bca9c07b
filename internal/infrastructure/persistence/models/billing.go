package models

import (
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName  string                `gorm:"type:varchar(200);not null"`
	JobID         *uuid.UUID            `gorm:"type:uuid;index"`
	JobNumber     string                `gorm:"type:varchar(50)"`
	IssueDate     time.Time             `gorm:"not null;index"`
	DueDate       time.Time             `gorm:"not null;index"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Items         billing.InvoiceItems  `gorm:"type:jsonb;default:'[]'"`
	Remark        string                `gorm:"type:text"`
	SentAt        *time.Time
	PaidAt        *time.Time
	VoidedAt      *time.Time
	VoidReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		JobID:         m.JobID,
		JobNumber:     m.JobNumber,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		Status:        m.Status,
		Items:         m.Items,
		Remark:        m.Remark,
		SentAt:        m.SentAt,
		PaidAt:        m.PaidAt,
		VoidedAt:      m.VoidedAt,
		VoidReason:    m.VoidReason,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.JobID = inv.JobID
	m.JobNumber = inv.JobNumber
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.Status = inv.Status
	m.Items = inv.Items
	m.Remark = inv.Remark
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.VoidedAt = inv.VoidedAt
	m.VoidReason = inv.VoidReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Payment rows are insert-only.
type PaymentModel struct {
	TenantAggregateModel
	InvoiceID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	InvoiceNumber   string                `gorm:"type:varchar(50);not null"`
	CustomerID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate     time.Time             `gorm:"not null;index"`
	Method          billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	ReferenceNumber string                `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *billing.Payment {
	p := &billing.Payment{
		InvoiceID:       m.InvoiceID,
		InvoiceNumber:   m.InvoiceNumber,
		CustomerID:      m.CustomerID,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		Method:          m.Method,
		ReferenceNumber: m.ReferenceNumber,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.InvoiceID = p.InvoiceID
	m.InvoiceNumber = p.InvoiceNumber
	m.CustomerID = p.CustomerID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.ReferenceNumber = p.ReferenceNumber
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// JobModel is the persistence model for the Job aggregate root.
type JobModel struct {
	TenantAggregateModel
	JobNumber    string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_job_tenant_number,priority:2"`
	CustomerID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName string             `gorm:"type:varchar(200);not null"`
	Description  string             `gorm:"type:text"`
	Status       billing.JobStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Charges      billing.JobCharges `gorm:"type:jsonb;default:'[]'"`
	TotalAmount  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	InvoiceID    *uuid.UUID         `gorm:"type:uuid;index"`
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (JobModel) TableName() string {
	return "jobs"
}

// ToDomain converts the persistence model to a domain Job.
func (m *JobModel) ToDomain() *billing.Job {
	j := &billing.Job{
		JobNumber:    m.JobNumber,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		Description:  m.Description,
		Status:       m.Status,
		Charges:      m.Charges,
		TotalAmount:  m.TotalAmount,
		InvoiceID:    m.InvoiceID,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
	m.PopulateTenantAggregateRoot(&j.TenantAggregateRoot)
	return j
}

// FromDomain populates the persistence model from a domain Job.
func (m *JobModel) FromDomain(j *billing.Job) {
	m.FromDomainTenantAggregateRoot(j.TenantAggregateRoot)
	m.JobNumber = j.JobNumber
	m.CustomerID = j.CustomerID
	m.CustomerName = j.CustomerName
	m.Description = j.Description
	m.Status = j.Status
	m.Charges = j.Charges
	m.TotalAmount = j.TotalAmount
	m.InvoiceID = j.InvoiceID
	m.CancelledAt = j.CancelledAt
	m.CancelReason = j.CancelReason
}

// JobModelFromDomain creates a new persistence model from a domain Job.
func JobModelFromDomain(j *billing.Job) *JobModel {
	m := &JobModel{}
	m.FromDomain(j)
	return m
}
