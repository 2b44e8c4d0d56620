package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Social_Hub/internal/errs"

	"github.com/redis/go-redis/v9"
)

const UserTokenPrefix = "login:user:token"

// SessionStore keeps one access token per user under a sliding expiry.
type SessionStore struct {
	RDB *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{RDB: rdb}
}

func tokenKey(userRef string) string {
	return fmt.Sprintf("%s:%s", UserTokenPrefix, userRef)
}

func (s *SessionStore) Save(ctx context.Context, userRef, token string, ttl time.Duration) error {
	if err := s.RDB.Set(ctx, tokenKey(userRef), token, ttl).Err(); err != nil {
		return errs.Internal(fmt.Errorf("save session: %w", err))
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, userRef string) (string, error) {
	token, err := s.RDB.Get(ctx, tokenKey(userRef)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.Unauthorized("session expired")
	}
	if err != nil {
		return "", errs.Internal(fmt.Errorf("get session: %w", err))
	}
	return token, nil
}

func (s *SessionStore) Extend(ctx context.Context, userRef string, ttl time.Duration) error {
	if err := s.RDB.Expire(ctx, tokenKey(userRef), ttl).Err(); err != nil {
		return errs.Internal(fmt.Errorf("extend session: %w", err))
	}
	return nil
}

// Delete is idempotent.
func (s *SessionStore) Delete(ctx context.Context, userRef string) error {
	if err := s.RDB.Del(ctx, tokenKey(userRef)).Err(); err != nil {
		return errs.Internal(fmt.Errorf("delete session: %w", err))
	}
	return nil
}
