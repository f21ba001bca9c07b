package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/freightdesk/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStatementCache implements StatementCache using Redis
// This is suitable for distributed deployments where multiple instances
// serve statement reads for the same customers
type RedisStatementCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStatementCache creates a new Redis-based statement cache
func NewRedisStatementCache(cfg RedisConfig) (*RedisStatementCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStatementCache{
		client:    client,
		keyPrefix: "billing:",
	}, nil
}

// NewRedisStatementCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisStatementCacheWithClient(client *redis.Client, keyPrefix string) *RedisStatementCache {
	if keyPrefix == "" {
		keyPrefix = "billing:"
	}
	return &RedisStatementCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached statement for a customer, or nil on a miss
func (c *RedisStatementCache) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.Statement, error) {
	key := c.keyPrefix + statementKey(tenantID, customerID)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached statement: %w", err)
	}

	var statement billing.Statement
	if err := json.Unmarshal(data, &statement); err != nil {
		// A corrupt entry is treated as a miss so the caller rebuilds it
		_ = c.client.Del(ctx, key).Err()
		return nil, nil
	}
	return &statement, nil
}

// Set stores a statement with the given TTL
func (c *RedisStatementCache) Set(ctx context.Context, tenantID, customerID uuid.UUID, statement *billing.Statement, ttl time.Duration) error {
	key := c.keyPrefix + statementKey(tenantID, customerID)

	data, err := json.Marshal(statement)
	if err != nil {
		return fmt.Errorf("failed to encode statement: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache statement: %w", err)
	}
	return nil
}

// Invalidate drops the cached statement for a customer
func (c *RedisStatementCache) Invalidate(ctx context.Context, tenantID, customerID uuid.UUID) error {
	key := c.keyPrefix + statementKey(tenantID, customerID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached statement: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisStatementCache) Close() error {
	return c.client.Close()
}

// Ensure RedisStatementCache implements StatementCache
var _ StatementCache = (*RedisStatementCache)(nil)
