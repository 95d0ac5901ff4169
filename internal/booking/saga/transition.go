package saga

import (
	"fmt"
	"time"

	"medbook/pkg/contracts"
	"medbook/pkg/model"
)

const (
	DefaultCancelReason    = "Canceled by user/system"
	ReservationTimedOut    = "Slot reservation timed out."
	failureReasonTemplate  = "Slot reservation failed: %s"
	stateNone              = "None"
	ignoredNoTransition    = "no transition for event in current state"
	ignoredNotStarted      = "saga does not exist"
	ignoredCorrelationDiff = "event correlation id does not match saga"
	ignoredFinalized       = "saga is finalized"
)

// StepKind names an entity operation the orchestrator runs before committing a
// transition.
type StepKind int

const (
	StepInitializeAppointment StepKind = iota + 1
	StepConfirmAppointment
	StepCancelAppointment
	StepReleaseTimeSlot
	StepCompleteAppointment
	StepClearAppointment
)

func (k StepKind) String() string {
	switch k {
	case StepInitializeAppointment:
		return "InitializeAppointment"
	case StepConfirmAppointment:
		return "ConfirmAppointment"
	case StepCancelAppointment:
		return "CancelAppointment"
	case StepReleaseTimeSlot:
		return "ReleaseTimeSlot"
	case StepCompleteAppointment:
		return "CompleteAppointment"
	case StepClearAppointment:
		return "ClearAppointment"
	default:
		return fmt.Sprintf("Step(%d)", int(k))
	}
}

// targetStatus is the appointment status a step leaves behind. A guard failure
// that reports this status means the step already ran.
func (k StepKind) targetStatus() (model.AppointmentStatus, bool) {
	switch k {
	case StepInitializeAppointment:
		return model.AppointmentStatusPendingConfirmation, true
	case StepConfirmAppointment:
		return model.AppointmentStatusConfirmed, true
	case StepCancelAppointment:
		return model.AppointmentStatusCanceled, true
	case StepCompleteAppointment:
		return model.AppointmentStatusCompleted, true
	default:
		return "", false
	}
}

// Plan is the outcome of applying one event to one saga.
type Plan struct {
	Accepted bool
	// Reason explains why an event was not accepted.
	Reason string
	From   model.SagaState
	Saga   model.BookingSaga
	Steps  []StepKind
	Emits  []contracts.Message
	// Finalize stores the saga as an expiring Finalized record.
	Finalize bool
}

func (p Plan) To() model.SagaState {
	return p.Saga.CurrentState
}

// Fault turns the plan into a move to Faulted with no steps. A saga that may
// hold the slot hands it back with ReleaseTimeSlot.
func (p Plan) Fault(reason string, now time.Time) Plan {
	p.Saga.CurrentState = model.SagaStateFaulted
	p.Saga.FailureReason = reason
	p.Saga.UpdatedAt = now
	p.Steps = nil
	p.Emits = nil
	p.Finalize = false
	if holdsSlot(p.From) {
		p.Emits = []contracts.Message{releaseCommand(p.Saga)}
	}
	return p
}

func holdsSlot(state model.SagaState) bool {
	switch state {
	case model.SagaStateAwaitingSlotReservation, model.SagaStateAppointmentInitialized, model.SagaStateConfirmed:
		return true
	default:
		return false
	}
}

func ignore(saga model.BookingSaga, reason string) Plan {
	return Plan{Reason: reason, From: saga.CurrentState, Saga: saga}
}

// Transition applies event to saga. It has no side effects; the returned plan
// lists the entity steps to run and the messages to emit if they succeed.
func Transition(saga model.BookingSaga, event contracts.Message, now time.Time) Plan {
	if saga.CorrelationID != "" && event.GetCorrelationID() != saga.CorrelationID {
		return ignore(saga, ignoredCorrelationDiff)
	}

	now = now.UTC()
	plan := Plan{Accepted: true, From: saga.CurrentState, Saga: saga}
	next := &plan.Saga

	switch saga.CurrentState {
	case model.SagaStateInitial:
		book, ok := event.(contracts.BookAppointmentCommand)
		if !ok {
			return ignore(saga, ignoredNoTransition)
		}
		next.CorrelationID = book.CorrelationID
		next.AppointmentID = book.AppointmentID
		next.PatientID = book.PatientID
		next.DoctorID = book.DoctorID
		next.SlotID = book.SlotID
		next.AppointmentTime = book.AppointmentTime.UTC()
		next.Duration = book.Duration
		next.ReasonForVisit = book.ReasonForVisit
		next.CreatedAt = now
		next.UpdatedAt = now
		next.CurrentState = model.SagaStateAwaitingSlotReservation
		plan.Emits = []contracts.Message{contracts.ReserveTimeSlotCommand{
			CorrelationID: next.CorrelationID,
			DoctorID:      next.DoctorID,
			SlotID:        next.SlotID,
			AppointmentID: next.AppointmentID,
			PatientID:     next.PatientID,
		}}

	case model.SagaStateAwaitingSlotReservation:
		switch e := event.(type) {
		case contracts.TimeSlotReservedEvent:
			next.UpdatedAt = now
			next.CurrentState = model.SagaStateAppointmentInitialized
			plan.Steps = []StepKind{StepInitializeAppointment}
			plan.Emits = []contracts.Message{contracts.AppointmentInitializedEvent{
				CorrelationID:   next.CorrelationID,
				AppointmentID:   next.AppointmentID,
				PatientID:       next.PatientID,
				DoctorID:        next.DoctorID,
				SlotID:          next.SlotID,
				AppointmentTime: next.AppointmentTime,
				Duration:        next.Duration,
				ReasonForVisit:  next.ReasonForVisit,
			}}
		case contracts.TimeSlotReservationFailedEvent:
			next.FailureReason = fmt.Sprintf(failureReasonTemplate, e.Reason)
			next.UpdatedAt = now
			next.CurrentState = model.SagaStateFaulted
			plan.Emits = []contracts.Message{canceledEvent(*next, next.FailureReason)}
		default:
			return ignore(saga, ignoredNoTransition)
		}

	case model.SagaStateAppointmentInitialized:
		switch e := event.(type) {
		case contracts.ConfirmAppointmentCommand:
			next.UpdatedAt = now
			next.CurrentState = model.SagaStateConfirmed
			plan.Steps = []StepKind{StepConfirmAppointment}
			plan.Emits = []contracts.Message{contracts.AppointmentConfirmedEvent{
				CorrelationID: next.CorrelationID,
				AppointmentID: next.AppointmentID,
				PatientID:     next.PatientID,
				DoctorID:      next.DoctorID,
			}}
		case contracts.CancelAppointmentCommand:
			cancel(&plan, e, now)
		default:
			return ignore(saga, ignoredNoTransition)
		}

	case model.SagaStateConfirmed:
		switch e := event.(type) {
		case contracts.MarkAppointmentCompletedCommand:
			next.UpdatedAt = now
			next.CurrentState = model.SagaStateCompleted
			plan.Steps = []StepKind{StepCompleteAppointment}
			plan.Emits = []contracts.Message{contracts.AppointmentCompletedEvent{
				CorrelationID:  next.CorrelationID,
				AppointmentID:  next.AppointmentID,
				PatientID:      next.PatientID,
				DoctorID:       next.DoctorID,
				CompletionTime: now,
			}}
		case contracts.CancelAppointmentCommand:
			cancel(&plan, e, now)
		case contracts.DeleteAppointmentCommand:
			finalize(&plan, now)
		default:
			return ignore(saga, ignoredNoTransition)
		}

	case model.SagaStateCanceled, model.SagaStateCompleted:
		if _, ok := event.(contracts.DeleteAppointmentCommand); !ok {
			return ignore(saga, ignoredNoTransition)
		}
		finalize(&plan, now)

	case model.SagaStateFaulted:
		switch event.(type) {
		case contracts.DeleteAppointmentCommand:
			finalize(&plan, now)
		case contracts.TimeSlotReservedEvent:
			// A reservation that lands after the saga gave up is handed back.
			next.UpdatedAt = now
			plan.Emits = []contracts.Message{releaseCommand(*next)}
		default:
			return ignore(saga, ignoredNoTransition)
		}

	case model.SagaStateFinalized:
		return ignore(saga, ignoredFinalized)

	default:
		return ignore(saga, ignoredNoTransition)
	}

	return plan
}

func cancel(plan *Plan, cmd contracts.CancelAppointmentCommand, now time.Time) {
	reason := cmd.Reason
	if reason == "" {
		reason = DefaultCancelReason
	}
	plan.Saga.UpdatedAt = now
	plan.Saga.CurrentState = model.SagaStateCanceled
	plan.Steps = []StepKind{StepCancelAppointment, StepReleaseTimeSlot}
	plan.Emits = []contracts.Message{canceledEvent(plan.Saga, reason)}
}

func finalize(plan *Plan, now time.Time) {
	plan.Saga.UpdatedAt = now
	plan.Saga.CurrentState = model.SagaStateFinalized
	plan.Finalize = true
	plan.Steps = []StepKind{StepClearAppointment}
	plan.Emits = []contracts.Message{contracts.AppointmentDeletedEvent{
		CorrelationID: plan.Saga.CorrelationID,
		AppointmentID: plan.Saga.AppointmentID,
		PatientID:     plan.Saga.PatientID,
		DoctorID:      plan.Saga.DoctorID,
	}}
}

func releaseCommand(saga model.BookingSaga) contracts.ReleaseTimeSlotCommand {
	return contracts.ReleaseTimeSlotCommand{
		CorrelationID: saga.CorrelationID,
		DoctorID:      saga.DoctorID,
		SlotID:        saga.SlotID,
		AppointmentID: saga.AppointmentID,
		PatientID:     saga.PatientID,
	}
}

func canceledEvent(saga model.BookingSaga, reason string) contracts.AppointmentCanceledEvent {
	return contracts.AppointmentCanceledEvent{
		CorrelationID: saga.CorrelationID,
		AppointmentID: saga.AppointmentID,
		PatientID:     saga.PatientID,
		DoctorID:      saga.DoctorID,
		Reason:        reason,
	}
}
