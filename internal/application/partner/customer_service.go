package partner

import (
	"context"
	"fmt"

	"github.com/freightdesk/backend/internal/domain/partner"
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer registration and maintenance
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	eventPublisher shared.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, eventPublisher shared.EventPublisher) *CustomerService {
	return &CustomerService{
		customerRepo:   customerRepo,
		eventPublisher: eventPublisher,
	}
}

// Create registers a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	exists, err := s.customerRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_CUSTOMER_CODE", fmt.Sprintf("Customer code %s already exists", req.Code))
	}

	customer, err := partner.NewCustomer(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	customer.UpdateContact(req.ContactName, req.Phone, req.Email, req.Address)
	customer.Country = req.Country
	customer.TaxID = req.TaxID
	customer.Notes = req.Notes

	if err := customer.SetBillingTerms(req.PaymentTermsDays, req.CreditLimit); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Get returns a customer by ID
func (s *CustomerService) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByCode returns a customer by its code
func (s *CustomerService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List returns customers matching the filter, paginated
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	domainFilter := partner.CustomerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: filter.Status,
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.customerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Update changes contact details and notes
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	contactName := customer.ContactName
	if req.ContactName != nil {
		contactName = *req.ContactName
	}
	phone := customer.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	email := customer.Email
	if req.Email != nil {
		email = *req.Email
	}
	address := customer.Address
	if req.Address != nil {
		address = *req.Address
	}
	customer.UpdateContact(contactName, phone, email, address)
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// SetBillingTerms updates payment terms and credit limit
func (s *CustomerService) SetBillingTerms(ctx context.Context, tenantID, customerID uuid.UUID, req SetBillingTermsRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.SetBillingTerms(req.PaymentTermsDays, req.CreditLimit); err != nil {
		return nil, err
	}

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Activate makes the customer billable again
func (s *CustomerService) Activate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	customer.Activate()

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Deactivate blocks new jobs and invoices for the customer. Existing
// invoices and payments are unaffected.
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	customer.Deactivate()

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// publishEvents delivers and clears pending domain events
func (s *CustomerService) publishEvents(ctx context.Context, customer *partner.Customer) {
	if s.eventPublisher == nil {
		return
	}
	if events := customer.GetDomainEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
		customer.ClearDomainEvents()
	}
}
