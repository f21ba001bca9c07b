package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultInvoiceNumberPrefix is used when no prefix is configured.
const DefaultInvoiceNumberPrefix = "INV"

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db           *gorm.DB
	numberPrefix string
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return NewGormInvoiceRepositoryWithPrefix(db, DefaultInvoiceNumberPrefix)
}

// NewGormInvoiceRepositoryWithPrefix creates a repository that allocates
// invoice numbers under the given prefix
func NewGormInvoiceRepositoryWithPrefix(db *gorm.DB, numberPrefix string) *GormInvoiceRepository {
	if numberPrefix == "" {
		numberPrefix = DefaultInvoiceNumberPrefix
	}
	return &GormInvoiceRepository{db: db, numberPrefix: numberPrefix}
}

// WithTx returns a repository bound to the given transaction handle
func (r *GormInvoiceRepository) WithTx(tx interface{}) billing.InvoiceRepository {
	gormTx, ok := tx.(*gorm.DB)
	if !ok {
		return r
	}
	return &GormInvoiceRepository{db: gormTx, numberPrefix: r.numberPrefix}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an invoice by ID for a specific tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice with a row lock for the duration of
// the surrounding transaction
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its invoice number for a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByJob finds the non-void invoice linked to a job
func (r *GormInvoiceRepository) FindActiveByJob(ctx context.Context, tenantID, jobID uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_id = ? AND status <> ?", tenantID, jobID, billing.InvoiceStatusVoid).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindByCustomer returns all invoices for a customer, unpaginated
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]*billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("issue_date ASC, created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]*billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextInvoiceNumber allocates the next sequential invoice number for a
// year. Format: <prefix>-<year>-<seq>, zero-padded to four digits.
// Callers allocating inside the invoicing transaction get uniqueness
// from the (tenant_id, invoice_number) unique index.
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", r.numberPrefix, year)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("invoice_number").
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%04d", prefix, nextNum), nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ? OR job_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.JobID != nil {
		query = query.Where("job_id = ?", *filter.JobID)
	}
	if filter.IssuedAfter != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedAfter)
	}
	if filter.IssuedBefore != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedBefore)
	}
	if filter.OverdueOnly {
		query = query.Where("due_date < ? AND status IN ?", time.Now(),
			[]billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusPartiallyPaid})
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
