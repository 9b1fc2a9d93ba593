// Package lock provides a Redis-backed per-vendor mutex for allocation runs.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/vendorledger/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotObtained is returned when another holder kept the lock for the whole wait window.
var ErrNotObtained = errors.New("vendor lock not obtained")

const keyPrefix = "ledger:vendor-lock:"

// Obtainer is the subset of *redislock.Client the locker needs.
type Obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// RedisVendorLocker serializes allocation runs for one vendor across server
// instances. The lock expires after TTL even if the holder dies.
type RedisVendorLocker struct {
	client  Obtainer
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	logger  *zap.Logger
}

// NewRedisVendorLocker creates a locker from a redislock client
func NewRedisVendorLocker(client Obtainer, cfg config.VendorLockConfig, logger *zap.Logger) *RedisVendorLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisVendorLocker{
		client:  client,
		ttl:     cfg.TTL,
		wait:    cfg.Wait,
		backoff: 50 * time.Millisecond,
		logger:  logger,
	}
}

// Key returns the Redis key guarding vendorID
func Key(vendorID uuid.UUID) string {
	return keyPrefix + vendorID.String()
}

// LockVendor blocks for up to the configured wait and returns a release func.
func (l *RedisVendorLocker) LockVendor(ctx context.Context, vendorID uuid.UUID) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	key := Key(vendorID)
	lk, err := l.client.Obtain(waitCtx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
		}
		return nil, fmt.Errorf("failed to obtain vendor lock %s: %w", key, err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := lk.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release vendor lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
