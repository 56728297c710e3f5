package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreOptions tune NewIdempotencyStore
type StoreOptions struct {
	Logger *zap.Logger
	// RequireRedis turns an unreachable Redis into an error instead of a
	// fallback to the per-process store.
	RequireRedis bool
	// CleanupInterval of the in-memory store; zero uses its default
	CleanupInterval time.Duration
}

// NewIdempotencyStore picks the idempotency store for cfg. An enabled and
// reachable Redis wins; otherwise keys are kept in process, which detects
// repeated uploads on this instance only.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts StoreOptions) (shared.IdempotencyStore, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if !cfg.Enabled {
		log.Info("Redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(opts.CleanupInterval), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, cfg)
	switch {
	case err == nil:
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	case opts.RequireRedis:
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	log.Warn("Redis unavailable, idempotency keys are tracked per instance", zap.Error(err))
	return NewInMemoryIdempotencyStore(opts.CleanupInterval), nil
}
