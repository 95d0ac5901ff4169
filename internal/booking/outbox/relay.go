package outbox

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"medbook/pkg/kafka"
	"medbook/pkg/logger"
	"medbook/pkg/metrics"
)

// Relay publishes outbox rows in creation order. A row is marked published only
// after the broker accepted it, so a crash between the two republishes it.
type Relay struct {
	repo      Repository
	publisher kafka.Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewRelay(repo Repository, publisher kafka.Publisher, m *metrics.Metrics, log *logger.Logger, interval time.Duration, batchSize int) *Relay {
	return &Relay{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		log:       log.WithComponent("outbox-relay"),
		interval:  interval,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Relay) Name() string {
	return "outbox-relay"
}

func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("Outbox relay started", "interval", r.interval, "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			r.safeTick(ctx)
		}
	}
}

func (r *Relay) safeTick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Outbox relay panic recovered", "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	for {
		published, err := r.PublishPending(ctx)
		if err != nil {
			r.log.Error("Outbox publish failed", "error", err, "published", published)
			return
		}
		if published < r.batchSize {
			return
		}
	}
}

// PublishPending publishes one batch and returns how many rows were published.
// It stops at the first failure so later rows for the same key stay behind it.
func (r *Relay) PublishPending(ctx context.Context) (int, error) {
	rows, err := r.repo.FetchPending(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, row := range rows {
		if err := r.publisher.Publish(ctx, ToMessage(row)); err != nil {
			r.reportBacklog(ctx)
			return published, fmt.Errorf("publish outbox message %s: %w", row.ID, err)
		}
		if err := r.repo.MarkPublished(ctx, row.ID, r.now()); err != nil {
			r.reportBacklog(ctx)
			return published, err
		}
		published++
		r.log.Debug("Outbox message published",
			logger.CORRELATION_ID, row.CorrelationID,
			"event_type", row.EventType,
			"topic", row.Topic,
		)
	}

	r.reportBacklog(ctx)
	return published, nil
}

func (r *Relay) reportBacklog(ctx context.Context) {
	pending, err := r.repo.CountPending(ctx)
	if err != nil {
		r.log.Warn("Failed to count pending outbox messages", "error", err)
		return
	}
	r.metrics.SetOutboxPending(int(pending))
}
