package cache

import (
	"github.com/hortifruti/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks an idempotency store implementation
type IdempotencyStoreFactory struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithKeyPrefix sets the Redis key prefix
func WithKeyPrefix(prefix string) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.keyPrefix = prefix
	}
}

// NewIdempotencyStoreFactory creates a factory. client may be nil when
// Redis is not configured.
func NewIdempotencyStoreFactory(client *redis.Client, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when a client is available and falls
// back to an in-memory store otherwise.
// WARNING: in-memory stores do not share state across process instances,
// so a retried sale can be applied twice when requests land on different
// instances.
func (f *IdempotencyStoreFactory) CreateStore() shared.IdempotencyStore {
	if f.client != nil {
		f.logger.Info("Using Redis idempotency store")
		return NewRedisIdempotencyStore(f.client, f.keyPrefix)
	}
	f.logger.Warn("Redis not configured, using in-memory idempotency store")
	return NewInMemoryIdempotencyStore()
}
