package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/internal/booking/outbox"
	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/lock"
	"medbook/pkg/logger"
	"medbook/pkg/metrics"
	"medbook/pkg/model"
)

// Appointments is the part of the appointment service the saga drives.
type Appointments interface {
	SetInitialDetails(ctx context.Context, appointmentID string, details model.AppointmentDetails) error
	Confirm(ctx context.Context, appointmentID string) error
	Cancel(ctx context.Context, appointmentID string) error
	MarkAsCompleted(ctx context.Context, appointmentID string) error
	ClearState(ctx context.Context, appointmentID string) error
}

// SlotReleaser gives a doctor's slot back during cancellation.
type SlotReleaser interface {
	ReleaseTimeSlot(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error)
}

// Orchestrator runs booking sagas. One event for one correlation id is handled
// at a time: lock, load, transition, run entity steps, commit state and outbox.
type Orchestrator struct {
	store        Store
	appointments Appointments
	slots        SlotReleaser
	locker       lock.Locker
	topics       contracts.Topics
	metrics      *metrics.Metrics
	log          *logger.Logger
	source       string
	now          func() time.Time
}

func NewOrchestrator(
	store Store,
	appointments Appointments,
	slots SlotReleaser,
	locker lock.Locker,
	topics contracts.Topics,
	m *metrics.Metrics,
	log *logger.Logger,
	source string,
) *Orchestrator {
	return &Orchestrator{
		store:        store,
		appointments: appointments,
		slots:        slots,
		locker:       locker,
		topics:       topics,
		metrics:      m,
		log:          log.WithComponent("saga"),
		source:       source,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Handle applies one inbound command or event. Events the saga does not accept
// in its current state are logged and dropped. The returned error is always an
// infrastructure failure and the delivery should be retried.
func (o *Orchestrator) Handle(ctx context.Context, event contracts.Message) error {
	correlationID := event.GetCorrelationID()
	if correlationID == "" {
		return fmt.Errorf("%s without correlation id", event.EventType())
	}
	log := o.log.WithCorrelation(correlationID)

	return o.locker.WithLock(ctx, lock.SagaKey(correlationID), func(ctx context.Context) error {
		current, err := o.store.Load(ctx, correlationID)
		if err != nil {
			return fmt.Errorf("load saga: %w", err)
		}
		if current == nil {
			if event.EventType() != contracts.BookAppointment {
				log.Debug("Saga event ignored", "event", event.EventType(), "state", stateNone, "reason", ignoredNotStarted)
				o.metrics.IncSagaIgnored(stateNone, event.EventType())
				return nil
			}
			current = model.NewBookingSaga(correlationID)
		}

		now := o.now()
		plan := Transition(*current, event, now)
		if !plan.Accepted {
			log.Debug("Saga event ignored", "event", event.EventType(), "state", string(plan.From), "reason", plan.Reason)
			o.metrics.IncSagaIgnored(string(plan.From), event.EventType())
			return nil
		}

		plan, err = o.runSteps(ctx, log, plan, now)
		if err != nil {
			return err
		}

		if err := o.commit(ctx, plan, now); err != nil {
			return err
		}

		o.metrics.IncSagaTransition(string(plan.From), string(plan.To()), event.EventType())
		log.Info("Saga transitioned",
			"from", string(plan.From),
			"to", string(plan.To()),
			"event", event.EventType(),
			"appointment_id", plan.Saga.AppointmentID,
		)
		return nil
	})
}

// runSteps executes the plan's entity steps in order. A guard violation that
// shows the step already happened is skipped; any other guard violation faults
// the saga.
func (o *Orchestrator) runSteps(ctx context.Context, log *logger.Logger, plan Plan, now time.Time) (Plan, error) {
	for _, step := range plan.Steps {
		err := o.runStep(ctx, plan.Saga, step)
		if err == nil {
			continue
		}

		var stateErr *model.StateError
		if !errors.As(err, &stateErr) {
			return plan, fmt.Errorf("saga step %s: %w", step, err)
		}
		if target, ok := step.targetStatus(); ok && stateErr.Status == target {
			log.Debug("Saga step already applied", "step", step.String(), "status", stateErr.Status.String())
			continue
		}

		log.Warn("Saga step rejected by appointment, faulting saga",
			"step", step.String(),
			"status", stateErr.Status.String(),
			"error", stateErr.Message,
		)
		return plan.Fault(stateErr.Message, now), nil
	}
	return plan, nil
}

func (o *Orchestrator) runStep(ctx context.Context, saga model.BookingSaga, step StepKind) error {
	switch step {
	case StepInitializeAppointment:
		return o.appointments.SetInitialDetails(ctx, saga.AppointmentID, model.AppointmentDetails{
			PatientID:       saga.PatientID,
			DoctorID:        saga.DoctorID,
			SlotID:          saga.SlotID,
			AppointmentTime: saga.AppointmentTime,
			Duration:        saga.Duration,
			ReasonForVisit:  saga.ReasonForVisit,
			CorrelationID:   saga.CorrelationID,
		})
	case StepConfirmAppointment:
		return o.appointments.Confirm(ctx, saga.AppointmentID)
	case StepCancelAppointment:
		return o.appointments.Cancel(ctx, saga.AppointmentID)
	case StepReleaseTimeSlot:
		_, err := o.slots.ReleaseTimeSlot(ctx, saga.DoctorID, saga.SlotID, saga.AppointmentID)
		return err
	case StepCompleteAppointment:
		return o.appointments.MarkAsCompleted(ctx, saga.AppointmentID)
	case StepClearAppointment:
		return o.appointments.ClearState(ctx, saga.AppointmentID)
	default:
		return fmt.Errorf("unknown saga step %s", step)
	}
}

func (o *Orchestrator) commit(ctx context.Context, plan Plan, now time.Time) error {
	rows := make([]model.OutboxMessage, 0, len(plan.Emits))
	for _, emit := range plan.Emits {
		msg, err := kafka.FromContract(o.topics, emit, o.source)
		if err != nil {
			return fmt.Errorf("encode %s: %w", emit.EventType(), err)
		}
		rows = append(rows, outbox.FromMessage(msg, now))
	}

	saga := plan.Saga
	if err := o.store.Commit(ctx, &saga, rows, plan.Finalize); err != nil {
		return fmt.Errorf("commit saga: %w", err)
	}
	return nil
}
