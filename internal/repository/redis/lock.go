package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const LockKeyPrefix = "lock"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock is a single-key lease. The holder is identified by a token so a
// lease that expired and was taken by someone else is never released.
type DistLock struct {
	RDB *redis.Client
	Key string
	TTL time.Duration
}

func NewDistLock(rdb *redis.Client, name string, ttl time.Duration) *DistLock {
	return &DistLock{RDB: rdb, Key: fmt.Sprintf("%s:%s", LockKeyPrefix, name), TTL: ttl}
}

func (l *DistLock) Acquire(ctx context.Context, token string) (bool, error) {
	return l.RDB.SetNX(ctx, l.Key, token, l.TTL).Result()
}

func (l *DistLock) Release(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{l.Key}, token).Err()
}
