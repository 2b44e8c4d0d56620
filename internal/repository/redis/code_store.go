package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Social_Hub/internal/errs"

	"github.com/redis/go-redis/v9"
)

const (
	EmailCodePrefix = "email:code"

	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

// promoteScript moves a pending code to its confirmed key with a fresh TTL
// in one step.
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

// CodeStore keeps verification codes per scope and email. A code is written
// as pending, promoted to confirmed once its mail was sent, and consumed on
// use.
type CodeStore struct {
	RDB *redis.Client
}

func NewCodeStore(rdb *redis.Client) *CodeStore {
	return &CodeStore{RDB: rdb}
}

func codeKey(scope, phase, email string) string {
	return fmt.Sprintf("%s:%s:%s:%s", EmailCodePrefix, scope, phase, email)
}

func (s *CodeStore) Pending(ctx context.Context, scope, email, code string, ttl time.Duration) error {
	if err := s.RDB.Set(ctx, codeKey(scope, PendingSuffix, email), code, ttl).Err(); err != nil {
		return errs.Internal(fmt.Errorf("store pending code: %w", err))
	}
	return nil
}

func (s *CodeStore) Confirm(ctx context.Context, scope, email string, ttl time.Duration) error {
	keys := []string{codeKey(scope, PendingSuffix, email), codeKey(scope, ConfirmedSuffix, email)}
	n, err := promoteScript.Run(ctx, s.RDB, keys, ttl.Milliseconds()).Int()
	if err != nil {
		return errs.Internal(fmt.Errorf("confirm code: %w", err))
	}
	if n != 1 {
		return errs.NotFound("pending code not found")
	}
	return nil
}

func (s *CodeStore) DropPending(ctx context.Context, scope, email string) error {
	if err := s.RDB.Del(ctx, codeKey(scope, PendingSuffix, email)).Err(); err != nil {
		return errs.Internal(fmt.Errorf("drop pending code: %w", err))
	}
	return nil
}

func (s *CodeStore) Confirmed(ctx context.Context, scope, email string) (string, error) {
	val, err := s.RDB.Get(ctx, codeKey(scope, ConfirmedSuffix, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.NotFound("code not found")
	}
	if err != nil {
		return "", errs.Internal(fmt.Errorf("read code: %w", err))
	}
	return val, nil
}

// Consume deletes the confirmed code. It reports NotFound when another
// request consumed it first, so a code works once.
func (s *CodeStore) Consume(ctx context.Context, scope, email string) error {
	n, err := s.RDB.Del(ctx, codeKey(scope, ConfirmedSuffix, email)).Result()
	if err != nil {
		return errs.Internal(fmt.Errorf("consume code: %w", err))
	}
	if n == 0 {
		return errs.NotFound("code not found")
	}
	return nil
}
