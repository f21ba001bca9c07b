package partner

import (
	"context"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerFilter defines filtering options for customer queries
type CustomerFilter struct {
	shared.Filter
	Status *CustomerStatus
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForTenant finds a customer by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByCode finds a customer by code for a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Customer, error)

	// FindAllForTenant finds all customers for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error

	// Delete soft deletes a customer
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts customers for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) (int64, error)

	// ExistsByCode checks if a customer code exists for a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// WithTx returns a repository bound to the given transaction handle.
	// The handle type matches the persistence layer (a *gorm.DB).
	WithTx(tx interface{}) CustomerRepository
}
