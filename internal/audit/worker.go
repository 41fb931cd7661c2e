package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventPublisher delivers audit events to the external audit trail.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

const (
	defaultDrainInterval = 2 * time.Second
	defaultDrainBatch    = 100
)

// OutboxWorker drains unpublished events from the store to the publisher.
// Events are only marked published after a successful produce, so delivery
// is at-least-once and consumers must tolerate duplicates.
type OutboxWorker struct {
	store     Store
	publisher EventPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// WorkerOption configures the OutboxWorker.
type WorkerOption func(*OutboxWorker)

// WithInterval sets the drain poll interval.
func WithInterval(d time.Duration) WorkerOption {
	return func(w *OutboxWorker) {
		w.interval = d
	}
}

// WithBatchSize sets the maximum events drained per tick.
func WithBatchSize(n int) WorkerOption {
	return func(w *OutboxWorker) {
		w.batchSize = n
	}
}

// WithWorkerLogger sets the worker's logger.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *OutboxWorker) {
		w.logger = logger
	}
}

// NewOutboxWorker creates a worker over the given store and publisher.
func NewOutboxWorker(store Store, publisher EventPublisher, opts ...WorkerOption) *OutboxWorker {
	w := &OutboxWorker{
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  defaultDrainInterval,
		batchSize: defaultDrainBatch,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the outbox until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.DrainOnce(ctx); err != nil {
				w.logger.Error("audit outbox drain failed", "error", err)
			}
		}
	}
}

// DrainOnce publishes one batch of unpublished events.
func (w *OutboxWorker) DrainOnce(ctx context.Context) error {
	events, err := w.store.Unpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(events))
	for _, event := range events {
		if err := w.publisher.Publish(ctx, event); err != nil {
			// Stop on the first failure so ordering per entity holds.
			w.logger.Error("publish audit event",
				"event_id", event.ID, "action", event.Action, "error", err)
			break
		}
		published = append(published, event.ID)
	}
	if len(published) == 0 {
		return nil
	}
	return w.store.MarkPublished(ctx, published)
}
