// Package sweeper fails booking sagas whose slot reservation never got an
// answer, so they reach Faulted through the normal saga input.
package sweeper

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"medbook/internal/booking/saga"
	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/robfig/cron/v3"
)

const defaultBatchSize = 100

// StuckFinder is implemented by saga.Store.
type StuckFinder interface {
	FindStuck(ctx context.Context, state model.SagaState, updatedBefore time.Time, limit int) ([]model.BookingSaga, error)
}

type Sweeper struct {
	sagas     StuckFinder
	publisher kafka.Publisher
	topics    contracts.Topics
	log       *logger.Logger
	schedule  string
	timeout   time.Duration
	batchSize int
	source    string
	now       func() time.Time
}

func New(sagas StuckFinder, publisher kafka.Publisher, topics contracts.Topics, log *logger.Logger, schedule string, timeout time.Duration, source string) *Sweeper {
	return &Sweeper{
		sagas:     sagas,
		publisher: publisher,
		topics:    topics,
		log:       log.WithComponent("reservation-sweeper"),
		schedule:  schedule,
		timeout:   timeout,
		batchSize: defaultBatchSize,
		source:    source,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Sweeper) Name() string {
	return "reservation-sweeper"
}

// Run sweeps on the cron schedule until ctx is canceled and waits for a running
// sweep to finish before returning.
func (s *Sweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.safeSweep(ctx) }); err != nil {
		return fmt.Errorf("schedule sweeper %q: %w", s.schedule, err)
	}

	c.Start()
	s.log.Info("Reservation sweeper started", "schedule", s.schedule, "timeout", s.timeout)

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("Reservation sweeper stopped")
	return nil
}

func (s *Sweeper) safeSweep(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("Reservation sweeper panic recovered", "panic", rec, "stack", string(debug.Stack()))
		}
	}()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.log.Error("Reservation sweep failed", "error", err, "timed_out", n)
		return
	}
	if n > 0 {
		s.log.Info("Reservation sweep finished", "timed_out", n)
	}
}

// Sweep publishes a reservation failure for every saga that has waited longer
// than the timeout. A saga that already moved on ignores the failure, so a
// repeated sweep is harmless.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stuck, err := s.sagas.FindStuck(ctx, model.SagaStateAwaitingSlotReservation, s.now().Add(-s.timeout), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("find stuck sagas: %w", err)
	}

	for i, st := range stuck {
		event := contracts.TimeSlotReservationFailedEvent{
			CorrelationID: st.CorrelationID,
			DoctorID:      st.DoctorID,
			SlotID:        st.SlotID,
			AppointmentID: st.AppointmentID,
			Reason:        saga.ReservationTimedOut,
		}
		msg, err := kafka.FromContract(s.topics, event, s.source)
		if err != nil {
			return i, fmt.Errorf("encode timeout for %s: %w", st.CorrelationID, err)
		}
		if err := s.publisher.Publish(ctx, msg); err != nil {
			return i, fmt.Errorf("publish timeout for %s: %w", st.CorrelationID, err)
		}
		s.log.WithCorrelation(st.CorrelationID).Warn("Slot reservation timed out",
			"doctor_id", st.DoctorID,
			"slot_id", st.SlotID,
			"waiting_since", st.UpdatedAt,
		)
	}
	return len(stuck), nil
}
