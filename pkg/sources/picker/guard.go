package picker

import (
	"context"
	"time"

	"github.com/anthonypate54/familynest/pkg/common"
)

// Guard extends the single-session rule across processes.
type Guard interface {
	Acquire(ctx context.Context) error
	Refresh(ctx context.Context) error
	Release() error
	TTL() time.Duration
}

// RedisGuard holds the picker lock in Redis while a session is pending.
type RedisGuard struct {
	lock *common.RedisLock
	key  string
	ttl  time.Duration
}

func NewRedisGuard(rdb *common.RedisClient, ttl time.Duration) *RedisGuard {
	if ttl < time.Second {
		ttl = 30 * time.Second
	}
	return &RedisGuard{
		lock: common.NewRedisLock(rdb),
		key:  common.Keys.PickerLock(),
		ttl:  ttl,
	}
}

func (g *RedisGuard) options() common.RedisLockOptions {
	return common.RedisLockOptions{TtlS: int(g.ttl / time.Second)}
}

func (g *RedisGuard) Acquire(ctx context.Context) error {
	return g.lock.Acquire(ctx, g.key, g.options())
}

func (g *RedisGuard) Refresh(ctx context.Context) error {
	return g.lock.Refresh(ctx, g.key, g.options())
}

func (g *RedisGuard) Release() error {
	return g.lock.Release(g.key)
}

func (g *RedisGuard) TTL() time.Duration {
	return g.ttl
}
