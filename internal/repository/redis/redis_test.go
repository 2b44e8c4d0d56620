package redis

import (
	"context"
	"testing"
	"time"

	"Social_Hub/internal/errs"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := New(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestNewUnreachable(t *testing.T) {
	if _, err := New("127.0.0.1:1", "", 0); err == nil {
		t.Fatal("New() on a closed port should fail")
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	s := NewSessionStore(rdb)

	if _, err := s.Get(ctx, "u1"); !errs.Is(err, errs.KindUnauthorized) {
		t.Fatalf("Get(missing) error = %v, want unauthorized", err)
	}
	if err := s.Save(ctx, "u1", "tok", time.Minute); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("login:user:token:u1") {
		t.Fatal("session key not written")
	}
	if got, err := s.Get(ctx, "u1"); err != nil || got != "tok" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	mr.FastForward(50 * time.Second)
	if err := s.Extend(ctx, "u1", time.Minute); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(50 * time.Second)
	if _, err := s.Get(ctx, "u1"); err != nil {
		t.Fatalf("extended session expired early: %v", err)
	}
	mr.FastForward(time.Minute)
	if _, err := s.Get(ctx, "u1"); !errs.Is(err, errs.KindUnauthorized) {
		t.Fatalf("Get(expired) error = %v, want unauthorized", err)
	}

	if err := s.Save(ctx, "u1", "tok2", time.Minute); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, "u1"); err != nil {
			t.Fatalf("Delete() #%d error = %v", i, err)
		}
	}
	if mr.Exists("login:user:token:u1") {
		t.Error("session survived Delete")
	}
}

func TestCodeStoreTwoPhase(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	s := NewCodeStore(rdb)
	const scope, email = "reset", "a@x.com"

	if err := s.Confirm(ctx, scope, email, time.Minute); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("Confirm(no pending) error = %v, want not found", err)
	}
	if err := s.Pending(ctx, scope, email, "123456", time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Confirmed(ctx, scope, email); !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("pending code readable as confirmed: %v", err)
	}
	if err := s.Confirm(ctx, scope, email, 5*time.Minute); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if mr.Exists("email:code:reset:pending:a@x.com") {
		t.Error("pending key left behind after Confirm")
	}
	if ttl := mr.TTL("email:code:reset:confirmed:a@x.com"); ttl != 5*time.Minute {
		t.Errorf("confirmed ttl = %v, want 5m", ttl)
	}

	got, err := s.Confirmed(ctx, scope, email)
	if err != nil || got != "123456" {
		t.Fatalf("Confirmed() = %q, %v", got, err)
	}
	if err := s.Consume(ctx, scope, email); err != nil {
		t.Fatal(err)
	}
	if err := s.Consume(ctx, scope, email); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("second Consume() error = %v, want not found", err)
	}
}

func TestCodeStoreDropPending(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestClient(t)
	s := NewCodeStore(rdb)

	if err := s.Pending(ctx, "reset", "b@x.com", "000111", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.DropPending(ctx, "reset", "b@x.com"); err != nil {
		t.Fatal(err)
	}
	if err := s.Confirm(ctx, "reset", "b@x.com", time.Minute); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("Confirm(dropped) error = %v, want not found", err)
	}
}

func TestDistLock(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	l := NewDistLock(rdb, "outbox", time.Second)

	ok, err := l.Acquire(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("first Acquire() = %v, %v", ok, err)
	}
	if ok, _ := l.Acquire(ctx, "b"); ok {
		t.Fatal("second holder acquired a held lock")
	}
	if err := l.Release(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("lock:outbox") {
		t.Fatal("foreign token released the lock")
	}
	if err := l.Release(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := l.Acquire(ctx, "b"); !ok {
		t.Fatal("lock not free after release")
	}

	mr.FastForward(2 * time.Second)
	if ok, _ := l.Acquire(ctx, "c"); !ok {
		t.Error("expired lease was not reclaimed")
	}
}
