package service

import (
	"context"
	"log/slog"
	"time"

	"Social_Hub/internal/model"
	"Social_Hub/internal/pkg"

	"github.com/google/uuid"
)

// Sender delivers one outbox event to the stream.
type Sender func(ctx context.Context, ev *model.OutboxEvent) error

// Lease guards a drain so only one process relays at a time.
type Lease interface {
	Acquire(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) error
}

// OutboxRelayer polls the outbox and forwards events with the sender.
// Failed deliveries are retried on later drains until maxRetry.
type OutboxRelayer struct {
	repo     OutboxRepository
	sender   Sender
	lease    Lease
	interval time.Duration
	batch    int
	maxRetry int
	log      *slog.Logger
}

type RelayerConfig struct {
	Interval time.Duration
	Batch    int
	MaxRetry int
}

// NewOutboxRelayer builds a relayer. lease may be nil for a single process.
func NewOutboxRelayer(repo OutboxRepository, sender Sender, lease Lease, cfg RelayerConfig, log *slog.Logger) *OutboxRelayer {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 200
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 5
	}
	return &OutboxRelayer{
		repo:     repo,
		sender:   sender,
		lease:    lease,
		interval: cfg.Interval,
		batch:    cfg.Batch,
		maxRetry: cfg.MaxRetry,
		log:      log,
	}
}

// Run drains on every tick until ctx is cancelled.
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce relays one batch and reports how many events were sent.
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	if r.lease != nil {
		token := uuid.NewString()
		ok, err := r.lease.Acquire(ctx, token)
		if err != nil {
			r.log.WarnContext(ctx, "outbox lease failed", "err", err)
			return 0
		}
		if !ok {
			return 0
		}
		defer r.lease.Release(context.WithoutCancel(ctx), token)
	}

	events, err := r.repo.Pending(ctx, r.batch, r.maxRetry)
	if err != nil {
		r.log.ErrorContext(ctx, "outbox query failed", "err", err)
		return 0
	}
	sent := 0
	// Keys with a failed event wait for the next drain so later events of
	// the same aggregate are not sent ahead of it.
	held := map[string]bool{}
	for i := range events {
		ev := &events[i]
		if held[ev.Key] {
			continue
		}
		if err := r.sender(ctx, ev); err != nil {
			r.log.WarnContext(ctx, "outbox send failed", "id", ev.ID, "event", ev.EventType, "retry", ev.Retry, "err", err)
			if err := r.repo.MarkFailed(ctx, ev.ID); err != nil {
				r.log.ErrorContext(ctx, "outbox mark failed", "id", ev.ID, "err", err)
			}
			held[ev.Key] = true
			continue
		}
		if err := r.repo.MarkSent(ctx, ev.ID); err != nil {
			r.log.ErrorContext(ctx, "outbox mark sent", "id", ev.ID, "err", err)
			continue
		}
		sent++
	}
	return sent
}

// LogSender writes events to the log instead of a stream.
func LogSender(log *slog.Logger) Sender {
	return func(ctx context.Context, ev *model.OutboxEvent) error {
		log.InfoContext(ctx, "outbox event", "id", ev.ID, "event", ev.EventType, "key", ev.Key, "payload", ev.Payload)
		return nil
	}
}

// KafkaSender publishes events keyed by aggregate id, so events of one post
// or user land on one partition. Order holds until an event exhausts its
// retries and is dropped.
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ev *model.OutboxEvent) error {
		return p.Send(ctx, ev.Key, []byte(ev.Payload), map[string]string{
			"event_type": ev.EventType,
			"event_id":   ev.ID,
		})
	}
}
