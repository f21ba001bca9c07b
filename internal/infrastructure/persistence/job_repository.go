package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/freightdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobRepository implements JobRepository using GORM
type GormJobRepository struct {
	db *gorm.DB
}

// NewGormJobRepository creates a new GormJobRepository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *GormJobRepository) WithTx(tx interface{}) billing.JobRepository {
	gormTx, ok := tx.(*gorm.DB)
	if !ok {
		return r
	}
	return &GormJobRepository{db: gormTx}
}

// FindByID finds a job by its ID
func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Job, error) {
	var model models.JobModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a job by ID for a specific tenant
func (r *GormJobRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Job, error) {
	var model models.JobModel
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

// FindByIDForUpdate finds a job with a row lock for the duration of the
// surrounding transaction
func (r *GormJobRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Job, error) {
	var model models.JobModel
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

// FindByNumber finds a job by its job number for a tenant
func (r *GormJobRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (*billing.Job, error) {
	var model models.JobModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND job_number = ?", tenantID, jobNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoice finds the job linked to an invoice
func (r *GormJobRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Job, error) {
	var model models.JobModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all jobs for a tenant with filtering
func (r *GormJobRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.JobFilter) ([]billing.Job, error) {
	var jobModels []models.JobModel
	query := r.db.WithContext(ctx).Model(&models.JobModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&jobModels).Error; err != nil {
		return nil, err
	}
	jobs := make([]billing.Job, len(jobModels))
	for i, model := range jobModels {
		jobs[i] = *model.ToDomain()
	}
	return jobs, nil
}

// Save creates or updates a job
func (r *GormJobRepository) Save(ctx context.Context, job *billing.Job) error {
	model := models.JobModelFromDomain(job)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormJobRepository) SaveWithLock(ctx context.Context, job *billing.Job) error {
	model := models.JobModelFromDomain(job)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", job.ID, job.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// CountForTenant counts jobs for a tenant
func (r *GormJobRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.JobFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.JobModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a job number exists for a tenant
func (r *GormJobRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, jobNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.JobModel{}).
		Where("tenant_id = ? AND job_number = ?", tenantID, jobNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormJobRepository) applyFilter(query *gorm.DB, filter billing.JobFilter) *gorm.DB {
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
func (r *GormJobRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.JobFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("job_number ILIKE ? OR customer_name ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	return query
}

// Ensure GormJobRepository implements JobRepository
var _ billing.JobRepository = (*GormJobRepository)(nil)
