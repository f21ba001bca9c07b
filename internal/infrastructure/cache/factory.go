package cache

import (
	"fmt"

	"github.com/freightdesk/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StatementCacheFactory creates statement caches based on configuration
type StatementCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StatementCacheFactoryOption is a functional option for configuring the factory
type StatementCacheFactoryOption func(*StatementCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StatementCacheFactoryOption {
	return func(f *StatementCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StatementCacheFactoryOption {
	return func(f *StatementCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStatementCacheFactory creates a new factory
func NewStatementCacheFactory(cfg config.RedisConfig, opts ...StatementCacheFactoryOption) *StatementCacheFactory {
	f := &StatementCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based statement cache
func (f *StatementCacheFactory) CreateRedisCache() (StatementCache, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	cache, err := NewRedisStatementCache(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis statement cache: %w", err)
	}

	return cache, nil
}

// CreateCache creates a statement cache based on whether Redis is enabled
// and reachable. It tries Redis first and falls back to in-memory when
// allowed. WARNING: in-memory caches do not share invalidations across
// process instances, which can serve stale statements in distributed
// deployments until the TTL expires.
func (f *StatementCacheFactory) CreateCache() (StatementCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory statement cache")
		return NewInMemoryStatementCache(), nil
	}

	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis statement cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for statement cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory statement cache. "+
		"Invalidations will not propagate across instances.",
		zap.Error(err),
	)
	return NewInMemoryStatementCache(), nil
}
