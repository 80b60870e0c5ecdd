package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld indicates another run already holds the lock.
var ErrLockHeld = errors.New("lock already held")

// OnboardingLockKey builds the redis key guarding a community's bulk
// onboarding run.
func OnboardingLockKey(communityID int64) string {
	return fmt.Sprintf("community:%d:onboarding:lock", communityID)
}

// RedisLock provides a best-effort mutual exclusion primitive backed by
// SETNX with a TTL so an abandoned run cannot wedge a community forever.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLock constructs a RedisLock.
func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLock{client: client, ttl: ttl}
}

// Acquire takes the lock or reports ErrLockHeld.
func (l *RedisLock) Acquire(ctx context.Context, key string) error {
	if l == nil || l.client == nil {
		return errors.New("redis lock not initialised")
	}
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockHeld
	}
	return nil
}

// Release frees the lock. Releasing an unheld lock is a no-op.
func (l *RedisLock) Release(ctx context.Context, key string) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, key).Err()
}
