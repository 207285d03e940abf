package cache

import (
	"fmt"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory builds the idempotency store selected by
// configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store instead of failing startup. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create builds the store for the configured backend. With fallback enabled,
// a Redis connection failure logs a warning and returns the in-memory store;
// replay detection then only covers this instance.
func (f *IdempotencyStoreFactory) Create(backend string) (shared.IdempotencyStore, error) {
	switch backend {
	case "memory":
		return NewInMemoryIdempotencyStore(), nil
	case "redis":
		store, err := NewRedisIdempotencyStore(f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB)
		if err != nil {
			if !f.allowInMemoryFallback {
				return nil, fmt.Errorf("redis idempotency store: %w", err)
			}
			f.logger.Warn("redis unavailable, falling back to in-memory idempotency store",
				zap.String("addr", f.redisConfig.Addr()),
				zap.Error(err))
			return NewInMemoryIdempotencyStore(), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", backend)
	}
}
