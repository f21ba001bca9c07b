package cache

import (
	"context"
	"sync"
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
)

// InMemoryStatementCache implements StatementCache with a process-local
// map. Suitable for single-instance deployments and testing; cached
// entries are not shared across instances.
type InMemoryStatementCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryStatementEntry
}

type inMemoryStatementEntry struct {
	statement *billing.Statement
	expiresAt time.Time
}

// NewInMemoryStatementCache creates a new in-memory statement cache
func NewInMemoryStatementCache() *InMemoryStatementCache {
	return &InMemoryStatementCache{
		entries: make(map[string]inMemoryStatementEntry),
	}
}

// Get returns the cached statement for a customer, or nil on a miss
func (c *InMemoryStatementCache) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.Statement, error) {
	c.mu.RLock()
	entry, ok := c.entries[statementKey(tenantID, customerID)]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, statementKey(tenantID, customerID))
		c.mu.Unlock()
		return nil, nil
	}
	return entry.statement, nil
}

// Set stores a statement with the given TTL
func (c *InMemoryStatementCache) Set(ctx context.Context, tenantID, customerID uuid.UUID, statement *billing.Statement, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[statementKey(tenantID, customerID)] = inMemoryStatementEntry{
		statement: statement,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops the cached statement for a customer
func (c *InMemoryStatementCache) Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, statementKey(tenantID, customerID))
	return nil
}

var _ StatementCache = (*InMemoryStatementCache)(nil)
