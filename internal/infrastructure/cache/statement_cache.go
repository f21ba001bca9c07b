package cache

import (
	"context"
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// StatementCache caches reconciled customer statements. Statements are
// pure projections of invoices and payments, so a cached copy is valid
// until any of the customer's billing records change; writers must call
// Invalidate after commit.
type StatementCache interface {
	// Get returns the cached statement for a customer, or nil on a miss
	Get(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.Statement, error)

	// Set stores a statement with the given TTL
	Set(ctx context.Context, tenantID, customerID uuid.UUID, statement *billing.Statement, ttl time.Duration) error

	// Invalidate drops the cached statement for a customer
	Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error
}

func statementKey(tenantID, customerID uuid.UUID) string {
	return "statement:" + tenantID.String() + ":" + customerID.String()
}
