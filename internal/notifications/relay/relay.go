package relay

import (
	"context"
	"sync"
	"time"

	"marketplace/internal/notifications/repository"
	"marketplace/pkg/config"
	"marketplace/pkg/kafka"
	"marketplace/pkg/model"
)

const source = "marketplace-api"

// Relay moves pending outbox rows onto the notifications topic.
type Relay struct {
	repo      repository.OutboxRepository
	publisher kafka.Publisher
	cfg       *config.Config

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewRelay(repo repository.OutboxRepository, publisher kafka.Publisher, cfg *config.Config) *Relay {
	return &Relay{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		done:      make(chan struct{}),
	}
}

// Start polls the outbox every OutboxInterval until Stop is called or ctx ends.
func (r *Relay) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	go r.run(ctx)
}

// Stop cancels polling and waits for the in-flight batch to finish.
func (r *Relay) Stop() {
	r.once.Do(func() {
		if r.cancel == nil {
			close(r.done)
			return
		}
		r.cancel()
		<-r.done
		r.cfg.Log.Info("Outbox relay stopped")
	})
}

func (r *Relay) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.OutboxInterval)
	defer ticker.Stop()

	r.cfg.Log.Info("Outbox relay started",
		"interval", r.cfg.OutboxInterval,
		"batch_size", r.cfg.OutboxBatchSize,
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.cfg.Log.Error("Outbox relay iteration failed", "error", err)
			}
		}
	}
}

// RunOnce publishes one batch and returns how many messages went out.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	messages, err := r.repo.FetchPending(ctx, r.cfg.OutboxBatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, msg := range messages {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := r.publish(ctx, msg); err != nil {
			r.recordFailure(ctx, msg, err)
			continue
		}
		if err := r.repo.MarkPublished(ctx, msg.ID); err != nil {
			// the notifier dedups on event id, so a re-publish is harmless
			r.cfg.Log.Error("Failed to mark outbox message published", "id", msg.ID, "error", err)
			continue
		}
		published++
	}

	if published > 0 {
		r.cfg.Log.Debug("Outbox batch published", "published", published, "fetched", len(messages))
	}
	return published, nil
}

func (r *Relay) publish(ctx context.Context, msg *model.OutboxMessage) error {
	km, err := kafka.NewMessage().
		WithKey(msg.Key).
		WithValue(msg.Payload).
		WithEventID(msg.ID).
		WithEventType(msg.EventType).
		WithSource(source).
		WithTimestamp(msg.CreatedAt).
		Build()
	if err != nil {
		return err
	}
	return r.publisher.Publish(ctx, km)
}

func (r *Relay) recordFailure(ctx context.Context, msg *model.OutboxMessage, cause error) {
	failed, err := r.repo.RecordFailure(ctx, msg.ID, cause.Error(), r.cfg.OutboxMaxAttempts)
	if err != nil {
		r.cfg.Log.Error("Failed to record outbox failure", "id", msg.ID, "error", err)
		return
	}
	if failed {
		r.cfg.Log.Error("Outbox message abandoned after max attempts",
			"id", msg.ID,
			"event_type", msg.EventType,
			"attempts", r.cfg.OutboxMaxAttempts,
			"error", cause,
		)
		return
	}
	r.cfg.Log.Warn("Failed to publish outbox message", "id", msg.ID, "event_type", msg.EventType, "error", cause)
}
