package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript releases a lock only when the caller still holds it, so a
// lock that expired and was re-acquired elsewhere cannot be released by
// the original holder.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

// RedisLock is a best-effort distributed lock over SET NX, used to keep
// scheduled jobs single-flight across replicas.
type RedisLock struct {
	client *redis.Client
	prefix string
}

// NewRedisLock creates a distributed lock manager
func NewRedisLock(client *redis.Client, prefix string) *RedisLock {
	if prefix == "" {
		prefix = "lock"
	}
	return &RedisLock{client: client, prefix: prefix}
}

// Lease is a held lock. Release it when the protected work finishes.
type Lease struct {
	lock  *RedisLock
	key   string
	token string
}

// Acquire attempts to take the named lock for ttl. It does not block:
// when another holder owns the lock it returns (nil, false, nil).
func (l *RedisLock) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, bool, error) {
	key := fmt.Sprintf("%s:%s", l.prefix, name)
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	return &Lease{lock: l, key: key, token: token}, true, nil
}

// Release gives the lock back if this lease still holds it
func (le *Lease) Release(ctx context.Context) error {
	return unlockScript.Run(ctx, le.lock.client, []string{le.key}, le.token).Err()
}
