package common

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

type RedisLockOptions struct {
	TtlS    int
	Retries int
}

func (o RedisLockOptions) ttl() time.Duration {
	if o.TtlS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(o.TtlS) * time.Second
}

// RedisLock tracks locks obtained through bsm/redislock by key so callers only
// need the key to refresh or release.
type RedisLock struct {
	client *redislock.Client
	mu     sync.Mutex
	held   map[string]*redislock.Lock
}

func NewRedisLock(rdb *RedisClient) *RedisLock {
	return &RedisLock{
		client: redislock.New(rdb.UniversalClient),
		held:   make(map[string]*redislock.Lock),
	}
}

func (l *RedisLock) Acquire(ctx context.Context, key string, opts RedisLockOptions) error {
	strategy := redislock.NoRetry()
	if opts.Retries > 0 {
		strategy = redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), opts.Retries)
	}

	lock, err := l.client.Obtain(ctx, key, opts.ttl(), &redislock.Options{RetryStrategy: strategy})
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.held[key] = lock
	l.mu.Unlock()
	return nil
}

func (l *RedisLock) Refresh(ctx context.Context, key string, opts RedisLockOptions) error {
	l.mu.Lock()
	lock, ok := l.held[key]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
	}
	return lock.Refresh(ctx, opts.ttl(), nil)
}

func (l *RedisLock) Release(key string) error {
	l.mu.Lock()
	lock, ok := l.held[key]
	delete(l.held, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}

	err := lock.Release(context.Background())
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
