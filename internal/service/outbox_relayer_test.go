package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"Social_Hub/internal/model"
	"Social_Hub/internal/pkg"
	"Social_Hub/internal/repository/redis"

	"github.com/google/go-cmp/cmp"
)

type recordingSender struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (s *recordingSender) send(_ context.Context, ev *model.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, ev.EventType)
	if s.fail[ev.EventType] {
		return errors.New("broker unavailable")
	}
	return nil
}

func TestRelayerDrainsInteractionEvents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "Alice"), e.user(t, "Bob")
	p := e.post(t, a, "hello")
	if _, err := e.interaction.ApplyReaction(ctx, p.ID, b.ID, model.ReactionLike); err != nil {
		t.Fatal(err)
	}
	if _, err := e.interaction.ToggleFollow(ctx, b.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	snd := &recordingSender{fail: map[string]bool{model.EventUserFollow: true}}
	r := NewOutboxRelayer(e.store.Outbox, snd.send, nil, RelayerConfig{MaxRetry: 2}, pkg.NopLogger())

	if n := r.DrainOnce(ctx); n != 2 {
		t.Fatalf("first drain sent %d, want 2", n)
	}
	want := []string{model.EventPostCreate, model.EventPostLike, model.EventUserFollow}
	if len(snd.seen) != len(want) {
		t.Fatalf("seen = %v", snd.seen)
	}
	for i := range want {
		if snd.seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", snd.seen, want)
		}
	}

	// The failed event is retried once more, then left alone.
	if n := r.DrainOnce(ctx); n != 0 {
		t.Fatalf("second drain sent %d", n)
	}
	if n := r.DrainOnce(ctx); n != 0 {
		t.Fatalf("third drain sent %d", n)
	}
	if len(snd.seen) != 4 {
		t.Fatalf("seen = %v", snd.seen)
	}
}

func TestRelayerHoldsKeyAfterFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, b := e.user(t, "Alice"), e.user(t, "Bob")
	p := e.post(t, a, "hello")
	for range 2 {
		if _, err := e.interaction.ApplyReaction(ctx, p.ID, b.ID, model.ReactionLike); err != nil {
			t.Fatal(err)
		}
	}

	snd := &recordingSender{fail: map[string]bool{model.EventPostLike: true}}
	r := NewOutboxRelayer(e.store.Outbox, snd.send, nil, RelayerConfig{MaxRetry: 3}, pkg.NopLogger())

	if n := r.DrainOnce(ctx); n != 1 {
		t.Fatalf("first drain sent %d, want 1", n)
	}
	want := []string{model.EventPostCreate, model.EventPostLike}
	if diff := cmp.Diff(want, snd.seen); diff != "" {
		t.Fatalf("first drain (-want +got):\n%s", diff)
	}

	snd.fail = nil
	if n := r.DrainOnce(ctx); n != 2 {
		t.Fatalf("second drain sent %d, want 2", n)
	}
	want = append(want, model.EventPostLike, model.EventPostUnreact)
	if diff := cmp.Diff(want, snd.seen); diff != "" {
		t.Fatalf("after retry (-want +got):\n%s", diff)
	}
}

func TestRelayerSkipsWithoutLease(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.post(t, e.user(t, "Alice"), "hello")

	rdb, err := redis.New(e.redis.Addr(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer rdb.Close()
	lock := redis.NewDistLock(rdb, "outbox", time.Minute)
	held, err := lock.Acquire(ctx, "other-process")
	if err != nil || !held {
		t.Fatalf("acquire: %v %v", held, err)
	}

	snd := &recordingSender{}
	r := NewOutboxRelayer(e.store.Outbox, snd.send, lock, RelayerConfig{}, pkg.NopLogger())
	if n := r.DrainOnce(ctx); n != 0 || len(snd.seen) != 0 {
		t.Fatalf("drained %d while another process held the lease", n)
	}

	if err := lock.Release(ctx, "other-process"); err != nil {
		t.Fatal(err)
	}
	if n := r.DrainOnce(ctx); n != 1 {
		t.Fatalf("drain after release sent %d", n)
	}
	if e.redis.Exists("lock:outbox") {
		t.Fatal("lease was not released after the drain")
	}
}

func TestRelayerRunStopsOnCancel(t *testing.T) {
	e := newEnv(t)
	e.post(t, e.user(t, "Alice"), "hello")
	snd := &recordingSender{}
	r := NewOutboxRelayer(e.store.Outbox, snd.send, nil, RelayerConfig{Interval: 10 * time.Millisecond}, pkg.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		snd.mu.Lock()
		n := len(snd.seen)
		snd.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("relayer never sent")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
