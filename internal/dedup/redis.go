package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "placementbot:event:"

// RedisStore keeps event keys in Redis with a TTL equal to the retention
// window, so expiry replaces explicit cleanup.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a store over an existing client. ttl bounds how long
// a key blocks re-emission.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("dedup exists: %w", err)
	}

	return n > 0, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, at time.Time) error {
	if err := s.rdb.SetNX(ctx, keyPrefix+key, at.UnixMilli(), s.ttl).Err(); err != nil {
		return fmt.Errorf("dedup setnx: %w", err)
	}

	return nil
}

// DeleteOlderThan is a no-op for Redis: TTL expiry already enforces the
// retention window.
func (s *RedisStore) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

const leaseKey = "placementbot:run-lease"

// RunLease serializes runs across instances with a SETNX lease. The TTL
// bounds how long a crashed holder can block the next run.
type RunLease struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRunLease(rdb *redis.Client, ttl time.Duration) *RunLease {
	return &RunLease{rdb: rdb, ttl: ttl}
}

// TryLock acquires the lease without blocking. The returned release deletes
// the lease; an expired lease is already gone and the delete is harmless.
func (l *RunLease) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	ok, err := l.rdb.SetNX(ctx, leaseKey, time.Now().UnixMilli(), l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("run lease setnx: %w", err)
	}

	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := l.rdb.Del(ctx, leaseKey).Err(); err != nil {
			return fmt.Errorf("run lease release: %w", err)
		}

		return nil
	}

	return release, true, nil
}
