package notify

import (
	"context"
	"sync"
	"time"

	"prontoplus/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Locker serializes the gate-check + send pair per lead. Webhook handling is
// fire-and-forget, so two completion events for one caller can be in flight at
// once; without the lock both would pass the cooldown read before either
// appended a log row.
type Locker interface {
	Acquire(ctx context.Context, leadID string) (bool, error)
	Release(ctx context.Context, leadID string)
}

const sendLockTTL = 30 * time.Second

type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker { return &RedisLocker{rdb: rdb} }

func (l *RedisLocker) Acquire(ctx context.Context, leadID string) (bool, error) {
	return utils.AcquireSendLock(ctx, l.rdb, lockKey(leadID), sendLockTTL)
}

func (l *RedisLocker) Release(ctx context.Context, leadID string) {
	_ = utils.ReleaseSendLock(ctx, l.rdb, lockKey(leadID))
}

func lockKey(leadID string) string { return "notify:lock:" + leadID }

// MemoryLocker is a process-local Locker for tests and single-instance runs.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]struct{}{}}
}

func (l *MemoryLocker) Acquire(ctx context.Context, leadID string) (bool, error) {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[leadID]; ok {
		return false, nil
	}
	l.held[leadID] = struct{}{}
	return true, nil
}

func (l *MemoryLocker) Release(ctx context.Context, leadID string) {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, leadID)
}
