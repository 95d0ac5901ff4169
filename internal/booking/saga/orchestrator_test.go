package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"medbook/internal/booking/outbox"
	"medbook/pkg/contracts"
	"medbook/pkg/lock"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

type mockAppointments struct {
	calls              []string
	setInitialDetailsF func() error
	confirmF           func() error
	cancelF            func() error
}

func (m *mockAppointments) SetInitialDetails(ctx context.Context, id string, d model.AppointmentDetails) error {
	m.calls = append(m.calls, "SetInitialDetails")
	if m.setInitialDetailsF != nil {
		return m.setInitialDetailsF()
	}
	return nil
}

func (m *mockAppointments) Confirm(ctx context.Context, id string) error {
	m.calls = append(m.calls, "Confirm")
	if m.confirmF != nil {
		return m.confirmF()
	}
	return nil
}

func (m *mockAppointments) Cancel(ctx context.Context, id string) error {
	m.calls = append(m.calls, "Cancel")
	if m.cancelF != nil {
		return m.cancelF()
	}
	return nil
}

func (m *mockAppointments) MarkAsCompleted(ctx context.Context, id string) error {
	m.calls = append(m.calls, "MarkAsCompleted")
	return nil
}

func (m *mockAppointments) ClearState(ctx context.Context, id string) error {
	m.calls = append(m.calls, "ClearState")
	return nil
}

type mockSlots struct {
	released int
	err      error
}

func (m *mockSlots) ReleaseTimeSlot(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.released++
	return true, nil
}

type fixture struct {
	orchestrator *Orchestrator
	store        *MemoryStore
	outbox       *outbox.MemoryRepository
	appointments *mockAppointments
	slots        *mockSlots
}

func newFixture() *fixture {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Service: "test"})
	repo := outbox.NewMemoryRepository()
	store := NewMemoryStore(repo)
	appointments := &mockAppointments{}
	slots := &mockSlots{}
	topics := contracts.Topics{Saga: "saga", DoctorCommands: "doctor", AppointmentEvents: "events", DeadLetter: "dlq"}
	o := NewOrchestrator(store, appointments, slots, lock.NewKeyedMutex(), topics, nil, log, "test")
	o.now = func() time.Time { return testNow }
	return &fixture{orchestrator: o, store: store, outbox: repo, appointments: appointments, slots: slots}
}

func (f *fixture) handle(t *testing.T, events ...contracts.Message) {
	t.Helper()
	for _, e := range events {
		if err := f.orchestrator.Handle(context.Background(), e); err != nil {
			t.Fatalf("%s: unexpected error: %v", e.EventType(), err)
		}
	}
}

func (f *fixture) state(t *testing.T) *model.BookingSaga {
	t.Helper()
	s, err := f.store.Load(context.Background(), "c1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func (f *fixture) outboxTypes() []string {
	rows, _ := f.outbox.FetchPending(context.Background(), 0)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.EventType)
	}
	return out
}

func TestHandle_HappyPath(t *testing.T) {
	f := newFixture()
	f.handle(t,
		bookCommand(),
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
		contracts.ConfirmAppointmentCommand{CorrelationID: "c1"},
		contracts.MarkAppointmentCompletedCommand{CorrelationID: "c1"},
	)

	if s := f.state(t); s.CurrentState != model.SagaStateCompleted || s.Version != 4 {
		t.Fatalf("expected Completed at version 4, got %+v", s)
	}
	want := []string{contracts.ReserveTimeSlot, contracts.AppointmentInitialized, contracts.AppointmentConfirmed, contracts.AppointmentCompleted}
	got := f.outboxTypes()
	if len(got) != len(want) {
		t.Fatalf("expected outbox %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected outbox %v, got %v", want, got)
		}
	}

	f.handle(t, contracts.DeleteAppointmentCommand{CorrelationID: "c1"})
	s := f.state(t)
	if s == nil || s.CurrentState != model.SagaStateFinalized {
		t.Fatalf("expected Finalized record, got %+v", s)
	}
	if s.ExpiresAt == nil || !s.ExpiresAt.Equal(testNow.Add(FinalizedRetention)) {
		t.Errorf("expected finalized record to expire after retention, got %v", s.ExpiresAt)
	}
	// A redelivered delete after finalize is a no-op.
	f.handle(t, contracts.DeleteAppointmentCommand{CorrelationID: "c1"})
	if n := len(f.outboxTypes()); n != 5 {
		t.Errorf("expected 5 outbox rows, got %d", n)
	}
}

func TestHandle_RedeliveredBookAfterFinalizeIgnored(t *testing.T) {
	f := newFixture()
	f.handle(t,
		bookCommand(),
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
		contracts.ConfirmAppointmentCommand{CorrelationID: "c1"},
		contracts.MarkAppointmentCompletedCommand{CorrelationID: "c1"},
		contracts.DeleteAppointmentCommand{CorrelationID: "c1"},
	)
	before := len(f.outboxTypes())
	calls := len(f.appointments.calls)

	f.handle(t, bookCommand(), contracts.TimeSlotReservedEvent{CorrelationID: "c1"})

	if got := f.outboxTypes(); len(got) != before {
		t.Errorf("expected no new outbox rows, got %v", got[before:])
	}
	if len(f.appointments.calls) != calls {
		t.Errorf("expected no appointment calls, got %v", f.appointments.calls[calls:])
	}
	if s := f.state(t); s.CurrentState != model.SagaStateFinalized || s.Version != 5 {
		t.Errorf("expected Finalized at version 5, got %+v", s)
	}
}

func TestHandle_ReplayedReservationDoesNotReinitialize(t *testing.T) {
	f := newFixture()
	f.handle(t,
		bookCommand(),
		bookCommand(),
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
	)

	initCalls := 0
	for _, c := range f.appointments.calls {
		if c == "SetInitialDetails" {
			initCalls++
		}
	}
	if initCalls != 1 {
		t.Errorf("expected one SetInitialDetails call, got %d", initCalls)
	}
	if got := f.outboxTypes(); len(got) != 2 {
		t.Errorf("expected only the first book and reservation to emit, got %v", got)
	}
	if s := f.state(t); s.CurrentState != model.SagaStateAppointmentInitialized {
		t.Errorf("expected AppointmentInitialized, got %s", s.CurrentState)
	}
}

func TestHandle_UnknownSagaIgnored(t *testing.T) {
	f := newFixture()
	f.handle(t, contracts.ConfirmAppointmentCommand{CorrelationID: "c1"})
	if s := f.state(t); s != nil {
		t.Errorf("expected no saga to be created, got %+v", s)
	}
}

func TestHandle_GuardViolationFaults(t *testing.T) {
	f := newFixture()
	f.appointments.confirmF = func() error {
		return &model.StateError{Status: model.AppointmentStatusCanceled, Message: "Appointment status is Canceled, expected PendingConfirmation to confirm."}
	}
	f.handle(t,
		bookCommand(),
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
		contracts.ConfirmAppointmentCommand{CorrelationID: "c1"},
	)

	s := f.state(t)
	if s.CurrentState != model.SagaStateFaulted {
		t.Fatalf("expected Faulted, got %s", s.CurrentState)
	}
	if s.FailureReason == "" {
		t.Error("expected a failure reason")
	}
	got := f.outboxTypes()
	if len(got) != 3 || got[2] != contracts.ReleaseTimeSlot {
		t.Errorf("expected only ReleaseTimeSlot for the faulted transition, got %v", got)
	}
}

func TestHandle_RefusedInitializationReleasesSlot(t *testing.T) {
	f := newFixture()
	f.appointments.setInitialDetailsF = func() error {
		return &model.StateError{Status: model.AppointmentStatusCanceled, Message: "Appointment status is Canceled, expected Unknown to initialize."}
	}
	f.handle(t, bookCommand(), contracts.TimeSlotReservedEvent{CorrelationID: "c1"})

	if s := f.state(t); s.CurrentState != model.SagaStateFaulted {
		t.Fatalf("expected Faulted, got %s", s.CurrentState)
	}
	want := []string{contracts.ReserveTimeSlot, contracts.ReleaseTimeSlot}
	got := f.outboxTypes()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected outbox %v, got %v", want, got)
	}
}

func TestHandle_GuardViolationAlreadyAppliedIsBenign(t *testing.T) {
	f := newFixture()
	f.appointments.confirmF = func() error {
		return &model.StateError{Status: model.AppointmentStatusConfirmed, Message: "already confirmed"}
	}
	f.handle(t,
		bookCommand(),
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
		contracts.ConfirmAppointmentCommand{CorrelationID: "c1"},
	)

	if s := f.state(t); s.CurrentState != model.SagaStateConfirmed {
		t.Errorf("expected Confirmed, got %s", s.CurrentState)
	}
}

func TestHandle_InfrastructureErrorLeavesStateUntouched(t *testing.T) {
	f := newFixture()
	f.handle(t, bookCommand(), contracts.TimeSlotReservedEvent{CorrelationID: "c1"})

	f.slots.err = errors.New("connection refused")
	err := f.orchestrator.Handle(context.Background(), contracts.CancelAppointmentCommand{CorrelationID: "c1"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if s := f.state(t); s.CurrentState != model.SagaStateAppointmentInitialized {
		t.Errorf("expected state unchanged, got %s", s.CurrentState)
	}

	// Redelivery after recovery converges.
	f.slots.err = nil
	f.handle(t, contracts.CancelAppointmentCommand{CorrelationID: "c1"})
	if s := f.state(t); s.CurrentState != model.SagaStateCanceled {
		t.Errorf("expected Canceled, got %s", s.CurrentState)
	}
	if f.slots.released != 1 {
		t.Errorf("expected slot released once, got %d", f.slots.released)
	}
}

func TestHandle_LateReservationIsReleased(t *testing.T) {
	f := newFixture()
	f.handle(t,
		bookCommand(),
		contracts.TimeSlotReservationFailedEvent{CorrelationID: "c1", Reason: ReservationTimedOut},
		contracts.TimeSlotReservedEvent{CorrelationID: "c1"},
	)

	if s := f.state(t); s.CurrentState != model.SagaStateFaulted {
		t.Errorf("expected Faulted, got %s", s.CurrentState)
	}
	got := f.outboxTypes()
	want := []string{contracts.ReserveTimeSlot, contracts.AppointmentCanceled, contracts.ReleaseTimeSlot}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
	for _, c := range f.appointments.calls {
		if c == "SetInitialDetails" {
			t.Error("a faulted saga must not initialize the appointment")
		}
	}
}
