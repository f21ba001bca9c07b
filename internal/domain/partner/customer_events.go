package partner

import (
	"github.com/freightdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerCreatedEvent is raised when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
}

// EventType returns the event type name
func (e *CustomerCreatedEvent) EventType() string {
	return "CustomerCreated"
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerCreated", "Customer", c.ID, c.TenantID),
		CustomerID:      c.ID,
		Code:            c.Code,
		Name:            c.Name,
	}
}

// CustomerBalanceChangedEvent is raised whenever the outstanding balance
// snapshot moves. The snapshot only changes inside the transaction that
// caused it (invoice issued, payment recorded, invoice voided), never as
// an independent write path.
type CustomerBalanceChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// EventType returns the event type name
func (e *CustomerBalanceChangedEvent) EventType() string {
	return "CustomerBalanceChanged"
}

// NewCustomerBalanceChangedEvent creates a new CustomerBalanceChangedEvent
func NewCustomerBalanceChangedEvent(c *Customer, before, after decimal.Decimal) *CustomerBalanceChangedEvent {
	return &CustomerBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerBalanceChanged", "Customer", c.ID, c.TenantID),
		CustomerID:      c.ID,
		BalanceBefore:   before,
		BalanceAfter:    after,
	}
}
