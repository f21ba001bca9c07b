package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended" // Suspended due to credit issues
)

// DefaultPaymentTermsDays is applied when a customer has no explicit terms
const DefaultPaymentTermsDays = 30

// Customer represents a billing customer (consignee/shipper) in the
// partner context. It is the aggregate root for customer-related
// operations and carries the billing terms used by invoicing.
type Customer struct {
	shared.TenantAggregateRoot
	Code             string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_tenant_code,priority:2"`
	Name             string          `gorm:"type:varchar(200);not null"`
	ContactName      string          `gorm:"type:varchar(100)"`
	Phone            string          `gorm:"type:varchar(50);index"`
	Email            string          `gorm:"type:varchar(200);index"`
	Address          string          `gorm:"type:text"`
	Country          string          `gorm:"type:varchar(100)"`
	TaxID            string          `gorm:"type:varchar(50)"`
	PaymentTermsDays int             `gorm:"not null;default:0"` // 0 means "use DefaultPaymentTermsDays"
	CreditLimit      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Balance          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Outstanding balance snapshot
	Status           CustomerStatus  `gorm:"type:varchar(20);not null;default:'active'"`
	Notes            string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

var customerCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewCustomer creates a new customer with required fields
func NewCustomer(tenantID uuid.UUID, code, name string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	c := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		CreditLimit:         decimal.Zero,
		Balance:             decimal.Zero,
		Status:              CustomerStatusActive,
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c))

	return c, nil
}

func validateCustomerCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code cannot exceed 50 characters")
	}
	if !customerCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CUSTOMER_CODE", "Customer code may only contain letters, digits, hyphen and underscore")
	}
	return nil
}

func validateCustomerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

// EffectivePaymentTerms returns the customer's payment terms in days,
// falling back to DefaultPaymentTermsDays when none are configured.
func (c *Customer) EffectivePaymentTerms() int {
	if c.PaymentTermsDays <= 0 {
		return DefaultPaymentTermsDays
	}
	return c.PaymentTermsDays
}

// SetBillingTerms updates payment terms and credit limit
func (c *Customer) SetBillingTerms(paymentTermsDays int, creditLimit decimal.Decimal) error {
	if paymentTermsDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.PaymentTermsDays = paymentTermsDays
	c.CreditLimit = creditLimit
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IncreaseBalance raises the customer's outstanding balance snapshot.
// Called when an invoice is issued, within the same transaction.
func (c *Customer) IncreaseBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Balance adjustment must be positive")
	}
	before := c.Balance
	c.Balance = c.Balance.Add(amount)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCustomerBalanceChangedEvent(c, before, c.Balance))
	return nil
}

// DecreaseBalance lowers the customer's outstanding balance snapshot.
// Called when a payment is recorded or an unpaid invoice is voided,
// within the same transaction as that mutation.
func (c *Customer) DecreaseBalance(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Balance adjustment must be positive")
	}
	if amount.GreaterThan(c.Balance) {
		return shared.NewDomainError("LEDGER_INCONSISTENT", "Balance adjustment exceeds recorded balance")
	}
	before := c.Balance
	c.Balance = c.Balance.Sub(amount)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCustomerBalanceChangedEvent(c, before, c.Balance))
	return nil
}

// Deactivate marks the customer inactive
func (c *Customer) Deactivate() {
	c.Status = CustomerStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate marks the customer active
func (c *Customer) Activate() {
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsActive returns true if the customer can be billed
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// UpdateContact updates contact information
func (c *Customer) UpdateContact(contactName, phone, email, address string) {
	c.ContactName = contactName
	c.Phone = phone
	c.Email = email
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
