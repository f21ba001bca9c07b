package billing

import (
	"strings"
	"time"

	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"

	"github.com/google/uuid"
)

// Fee is a catalog item: a billable service with a default amount and
// tax treatment. Fees are templates only - a job charge copies the fee's
// values at charge time, so later edits never touch historical invoices.
type Fee struct {
	shared.TenantAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_fee_tenant_name,priority:2"`
	DefaultAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Taxable       bool            `gorm:"not null;default:false"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"` // percent
	Active        bool            `gorm:"not null;default:true"`
	Description   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Fee) TableName() string {
	return "fees"
}

// NewFee creates a new catalog fee
func NewFee(tenantID uuid.UUID, name string, defaultAmount decimal.Decimal, taxable bool, taxRate decimal.Decimal) (*Fee, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_FEE_NAME", "Fee name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_FEE_NAME", "Fee name cannot exceed 200 characters")
	}
	if defaultAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE_AMOUNT", "Fee default amount cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	if !taxable && !taxRate.IsZero() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Non-taxable fee cannot carry a tax rate")
	}

	return &Fee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		DefaultAmount:       defaultAmount,
		Taxable:             taxable,
		TaxRate:             taxRate,
		Active:              true,
	}, nil
}

// EffectiveTaxRate returns the tax rate to apply, zero for non-taxable fees
func (f *Fee) EffectiveTaxRate() decimal.Decimal {
	if !f.Taxable {
		return decimal.Zero
	}
	return f.TaxRate
}

// Deactivate hides the fee from new charges without touching history
func (f *Fee) Deactivate() {
	f.Active = false
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// Activate makes the fee selectable again
func (f *Fee) Activate() {
	f.Active = true
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}

// UpdateDefaults changes the template values for future charges only
func (f *Fee) UpdateDefaults(defaultAmount, taxRate decimal.Decimal, taxable bool) error {
	if defaultAmount.IsNegative() {
		return shared.NewDomainError("INVALID_FEE_AMOUNT", "Fee default amount cannot be negative")
	}
	if taxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	f.DefaultAmount = defaultAmount
	f.TaxRate = taxRate
	f.Taxable = taxable
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
	return nil
}
