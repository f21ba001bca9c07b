package billing

import (
	"context"
	"fmt"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FeeService manages the fee catalog. Catalog edits only shape future
// charges; existing job charges and invoices keep their snapshots.
type FeeService struct {
	feeRepo billing.FeeRepository
}

// NewFeeService creates a new FeeService
func NewFeeService(feeRepo billing.FeeRepository) *FeeService {
	return &FeeService{feeRepo: feeRepo}
}

// Create adds a fee to the catalog
func (s *FeeService) Create(ctx context.Context, tenantID uuid.UUID, req CreateFeeRequest) (*FeeResponse, error) {
	exists, err := s.feeRepo.ExistsByName(ctx, tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_FEE_NAME", fmt.Sprintf("Fee %s already exists", req.Name))
	}

	fee, err := billing.NewFee(tenantID, req.Name, req.DefaultAmount, req.Taxable, req.TaxRate)
	if err != nil {
		return nil, err
	}
	fee.Description = req.Description

	if err := s.feeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}

	response := ToFeeResponse(fee)
	return &response, nil
}

// Get returns a fee by ID
func (s *FeeService) Get(ctx context.Context, tenantID, feeID uuid.UUID) (*FeeResponse, error) {
	fee, err := s.feeRepo.FindByIDForTenant(ctx, tenantID, feeID)
	if err != nil {
		return nil, err
	}

	response := ToFeeResponse(fee)
	return &response, nil
}

// List returns catalog fees matching the filter
func (s *FeeService) List(ctx context.Context, tenantID uuid.UUID, filter FeeListFilter) ([]FeeResponse, error) {
	domainFilter := billing.FeeFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		ActiveOnly: filter.ActiveOnly,
	}

	fees, err := s.feeRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]FeeResponse, 0, len(fees))
	for i := range fees {
		responses = append(responses, ToFeeResponse(&fees[i]))
	}
	return responses, nil
}

// Update changes catalog defaults and activation for future charges
func (s *FeeService) Update(ctx context.Context, tenantID, feeID uuid.UUID, req UpdateFeeRequest) (*FeeResponse, error) {
	fee, err := s.feeRepo.FindByIDForTenant(ctx, tenantID, feeID)
	if err != nil {
		return nil, err
	}

	if err := fee.UpdateDefaults(req.DefaultAmount, req.TaxRate, req.Taxable); err != nil {
		return nil, err
	}
	if req.Active != nil {
		if *req.Active {
			fee.Activate()
		} else {
			fee.Deactivate()
		}
	}

	if err := s.feeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}

	response := ToFeeResponse(fee)
	return &response, nil
}

// Delete removes a fee from the catalog. Historical charges keep their
// snapshots; only new charges lose the template.
func (s *FeeService) Delete(ctx context.Context, tenantID, feeID uuid.UUID) error {
	fee, err := s.feeRepo.FindByIDForTenant(ctx, tenantID, feeID)
	if err != nil {
		return err
	}
	return s.feeRepo.Delete(ctx, fee.ID)
}
