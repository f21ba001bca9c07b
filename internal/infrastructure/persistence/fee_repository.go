package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFeeRepository implements FeeRepository using GORM. Like customers,
// fees are persisted directly from the domain type.
type GormFeeRepository struct {
	db *gorm.DB
}

// NewGormFeeRepository creates a new GormFeeRepository
func NewGormFeeRepository(db *gorm.DB) *GormFeeRepository {
	return &GormFeeRepository{db: db}
}

// FindByID finds a fee by its ID
func (r *GormFeeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Fee, error) {
	var fee billing.Fee
	if err := r.db.WithContext(ctx).
		First(&fee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &fee, nil
}

// FindByIDForTenant finds a fee by ID for a specific tenant
func (r *GormFeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Fee, error) {
	var fee billing.Fee
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&fee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &fee, nil
}

// FindByName finds a fee by name for a tenant
func (r *GormFeeRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*billing.Fee, error) {
	var fee billing.Fee
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&fee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &fee, nil
}

// FindAllForTenant finds all fees for a tenant with filtering
func (r *GormFeeRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.FeeFilter) ([]billing.Fee, error) {
	var fees []billing.Fee
	query := r.db.WithContext(ctx).Model(&billing.Fee{}).
		Where("tenant_id = ?", tenantID)

	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ?", searchPattern)
	}
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
		query = query.Order("name ASC")
	}

	if err := query.Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

// Save creates or updates a fee
func (r *GormFeeRepository) Save(ctx context.Context, fee *billing.Fee) error {
	return r.db.WithContext(ctx).Save(fee).Error
}

// Delete soft deletes a fee
func (r *GormFeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.Fee{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName checks if a fee name exists for a tenant
func (r *GormFeeRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Fee{}).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormFeeRepository implements FeeRepository
var _ billing.FeeRepository = (*GormFeeRepository)(nil)
