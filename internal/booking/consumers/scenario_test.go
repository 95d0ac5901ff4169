package consumers

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	appointmentrepo "medbook/internal/appointments/repository"
	appointmentservice "medbook/internal/appointments/service"
	"medbook/internal/booking/outbox"
	"medbook/internal/booking/saga"
	"medbook/internal/booking/sweeper"
	doctorrepo "medbook/internal/doctors/repository"
	doctorservice "medbook/internal/doctors/service"
	doctorvalidator "medbook/internal/doctors/validator"
	notificationrepo "medbook/internal/notifications/repository"
	patientrepo "medbook/internal/patients/repository"
	patientservice "medbook/internal/patients/service"
	patientvalidator "medbook/internal/patients/validator"
	"medbook/pkg/config"
	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/kafka/kafkatest"
	"medbook/pkg/lock"
	"medbook/pkg/model"

	"github.com/google/uuid"
)

var testTopics = contracts.Topics{
	Saga:              "booking.saga",
	DoctorCommands:    "booking.doctor-commands",
	AppointmentEvents: "booking.appointment-events",
	DeadLetter:        "booking.dlq",
}

// harness wires the real services, state machine and routers over in-memory
// stores and an in-memory message channel.
type harness struct {
	t             *testing.T
	doctors       doctorservice.DoctorService
	doctorRepo    *doctorrepo.MemoryDoctorRepository
	appointments  *appointmentrepo.MemoryAppointmentRepository
	patients      *patientrepo.MemoryPatientRepository
	notifications *notificationrepo.MemoryNotificationRepository
	store         *saga.MemoryStore
	relay         *outbox.Relay
	channel       *kafkatest.Recorder
	routes        map[string][]*Router

	mu       sync.Mutex
	seen     []kafka.Message
	doctorID string
	slotID   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testLogger()
	cfg := &config.Config{Log: log, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	locker := lock.NewKeyedMutex()

	h := &harness{
		t:             t,
		doctorRepo:    doctorrepo.NewMemoryDoctorRepository(),
		appointments:  appointmentrepo.NewMemoryAppointmentRepository(),
		patients:      patientrepo.NewMemoryPatientRepository(),
		notifications: notificationrepo.NewMemoryNotificationRepository(),
		channel:       &kafkatest.Recorder{},
	}
	h.doctors = doctorservice.NewDoctorService(h.doctorRepo, doctorvalidator.NewDoctorValidator(), locker, nil, cfg)
	appointmentSvc := appointmentservice.NewAppointmentService(h.appointments, locker, cfg)
	patientSvc := patientservice.NewPatientService(h.patients, patientvalidator.NewPatientValidator(), locker, cfg)

	outboxRepo := outbox.NewMemoryRepository()
	h.store = saga.NewMemoryStore(outboxRepo)
	h.relay = outbox.NewRelay(outboxRepo, h.channel, nil, log, time.Second, 100)
	orchestrator := saga.NewOrchestrator(h.store, appointmentSvc, h.doctors, locker, testTopics, nil, log, "orchestrator")

	h.routes = map[string][]*Router{
		testTopics.Saga:           {NewSagaRouter(orchestrator, log)},
		testTopics.DoctorCommands: {NewDoctorCommandConsumer(h.doctors, h.channel, testTopics, "workers", log).Router()},
		testTopics.AppointmentEvents: {
			NewPatientRegistrar(patientSvc, log),
			NewNotificationRecorder(h.notifications, log),
		},
	}

	h.doctorID, h.slotID = uuid.NewString(), uuid.NewString()
	_, err := h.doctors.DefineAvailability(context.Background(), h.doctorID, []model.SlotDefinition{{
		ID:              h.slotID,
		Start:           time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	}})
	if err != nil {
		t.Fatalf("define availability: %v", err)
	}
	return h
}

// send publishes a command and runs the system until no message is in flight.
func (h *harness) send(cmd contracts.Message) {
	h.t.Helper()
	msg, err := kafka.FromContract(testTopics, cmd, "api")
	if err != nil {
		h.t.Fatalf("encode: %v", err)
	}
	if err := h.channel.Publish(context.Background(), msg); err != nil {
		h.t.Fatalf("publish: %v", err)
	}
	h.pump()
}

func (h *harness) pump() {
	h.t.Helper()
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		if _, err := h.relay.PublishPending(ctx); err != nil {
			h.t.Fatalf("relay: %v", err)
		}
		batch := h.channel.Drain()
		if len(batch) == 0 {
			return
		}
		for _, msg := range batch {
			h.mu.Lock()
			h.seen = append(h.seen, msg)
			h.mu.Unlock()
			for _, r := range h.routes[msg.Topic] {
				if err := r.Handle(ctx, msg); err != nil {
					h.t.Fatalf("%s on %s: %v", msg.GetEventType(), msg.Topic, err)
				}
			}
		}
	}
	h.t.Fatal("message flow did not settle")
}

func (h *harness) book(correlationID, appointmentID, patientID string) {
	h.t.Helper()
	h.send(contracts.BookAppointmentCommand{
		CorrelationID:   correlationID,
		AppointmentID:   appointmentID,
		PatientID:       patientID,
		DoctorID:        h.doctorID,
		SlotID:          h.slotID,
		AppointmentTime: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		Duration:        30 * time.Minute,
		ReasonForVisit:  "annual checkup",
	})
}

func (h *harness) seenTypes(correlationID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, m := range h.seen {
		if m.GetCorrelationID() == correlationID {
			out = append(out, m.GetEventType())
		}
	}
	return out
}

func (h *harness) sagaState(correlationID string) *model.BookingSaga {
	s, _ := h.store.Load(context.Background(), correlationID)
	return s
}

func (h *harness) appointment(id string) *model.Appointment {
	a, _ := h.appointments.Load(context.Background(), id)
	return a
}

func (h *harness) slot() model.TimeSlot {
	d, _ := h.doctorRepo.Load(context.Background(), h.doctorID)
	return *d.FindSlot(h.slotID)
}

func (h *harness) patientAppointments(patientID string) []string {
	p, _ := h.patients.Load(context.Background(), patientID)
	return p.Appointments
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestScenario_BookConfirmComplete(t *testing.T) {
	h := newHarness(t)
	c, a, p := uuid.NewString(), uuid.NewString(), uuid.NewString()

	h.book(c, a, p)
	types := h.seenTypes(c)
	if !contains(types, contracts.TimeSlotReserved) || !contains(types, contracts.AppointmentInitialized) {
		t.Fatalf("expected reservation and initialization, saw %v", types)
	}
	if got := h.appointment(a).Status; got != model.AppointmentStatusPendingConfirmation {
		t.Fatalf("expected PendingConfirmation, got %s", got)
	}
	if slot := h.slot(); !slot.IsReserved || slot.ReservedByAppointmentID != a || slot.ReservedByPatientID != p {
		t.Fatalf("expected slot reserved by the appointment, got %+v", slot)
	}
	if !contains(h.patientAppointments(p), a) {
		t.Fatalf("expected patient to list the appointment")
	}

	h.send(contracts.ConfirmAppointmentCommand{CorrelationID: c})
	if got := h.appointment(a).Status; got != model.AppointmentStatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", got)
	}

	h.send(contracts.MarkAppointmentCompletedCommand{CorrelationID: c})
	if got := h.appointment(a).Status; got != model.AppointmentStatusCompleted {
		t.Fatalf("expected Completed, got %s", got)
	}
	if got := h.sagaState(c).CurrentState; got != model.SagaStateCompleted {
		t.Errorf("expected saga Completed, got %s", got)
	}

	notes, _ := h.notifications.Count(context.Background())
	if notes != 3 {
		t.Errorf("expected 3 notifications, got %d", notes)
	}
}

func TestScenario_SlotAlreadyReserved(t *testing.T) {
	h := newHarness(t)
	outcome, err := h.doctors.TryReserveTimeSlot(context.Background(), h.doctorID, h.slotID, "other-appointment", "other-patient")
	if err != nil || outcome != model.ReservationSuccess {
		t.Fatalf("pre-reserve: %v/%v", outcome, err)
	}

	c, a, p := uuid.NewString(), uuid.NewString(), uuid.NewString()
	h.book(c, a, p)

	var failed *contracts.TimeSlotReservationFailedEvent
	for _, m := range h.seen {
		if m.GetEventType() == contracts.TimeSlotReservationFailed && m.GetCorrelationID() == c {
			decoded, _ := contracts.Decode(m.GetEventType(), m.Value)
			e := decoded.(contracts.TimeSlotReservationFailedEvent)
			failed = &e
		}
	}
	if failed == nil {
		t.Fatalf("expected TimeSlotReservationFailed, saw %v", h.seenTypes(c))
	}
	if failed.Reason != "Slot already reserved by another party." {
		t.Errorf("unexpected reason %q", failed.Reason)
	}

	s := h.sagaState(c)
	if s.CurrentState != model.SagaStateFaulted {
		t.Fatalf("expected Faulted, got %s", s.CurrentState)
	}
	if !strings.HasPrefix(s.FailureReason, "Slot reservation failed: ") {
		t.Errorf("unexpected failure reason %q", s.FailureReason)
	}
	if !h.appointment(a).IsEmpty() {
		t.Errorf("expected no appointment to be initialized")
	}
	if h.slot().ReservedByAppointmentID != "other-appointment" {
		t.Errorf("original reservation must be untouched")
	}
	if contains(h.seenTypes(c), contracts.AppointmentInitialized) {
		t.Errorf("no AppointmentInitialized expected")
	}
}

func TestScenario_CancelReleasesSlot(t *testing.T) {
	h := newHarness(t)
	c, a, p := uuid.NewString(), uuid.NewString(), uuid.NewString()

	h.book(c, a, p)
	h.send(contracts.ConfirmAppointmentCommand{CorrelationID: c})
	h.send(contracts.CancelAppointmentCommand{CorrelationID: c, Reason: "patient request"})

	if got := h.appointment(a).Status; got != model.AppointmentStatusCanceled {
		t.Errorf("expected Canceled, got %s", got)
	}
	if slot := h.slot(); slot.IsReserved || slot.ReservedByAppointmentID != "" || slot.ReservedByPatientID != "" {
		t.Errorf("expected slot released, got %+v", slot)
	}
	if got := h.sagaState(c).CurrentState; got != model.SagaStateCanceled {
		t.Errorf("expected saga Canceled, got %s", got)
	}
	if contains(h.patientAppointments(p), a) {
		t.Errorf("expected appointment removed from patient")
	}

	// Redelivered cancel is ignored and leaves the slot free for the next booking.
	h.send(contracts.CancelAppointmentCommand{CorrelationID: c, Reason: "patient request"})
	c2, a2 := uuid.NewString(), uuid.NewString()
	h.book(c2, a2, p)
	if got := h.sagaState(c2).CurrentState; got != model.SagaStateAppointmentInitialized {
		t.Errorf("expected rebooking to succeed, got %s", got)
	}
}

func TestScenario_DeleteFinalizes(t *testing.T) {
	h := newHarness(t)
	c, a, p := uuid.NewString(), uuid.NewString(), uuid.NewString()

	h.book(c, a, p)
	h.send(contracts.ConfirmAppointmentCommand{CorrelationID: c})
	h.send(contracts.MarkAppointmentCompletedCommand{CorrelationID: c})
	h.send(contracts.DeleteAppointmentCommand{CorrelationID: c})

	if appt := h.appointment(a); !appt.IsEmpty() || appt.Version != 0 {
		t.Errorf("expected appointment cleared, got %+v", appt)
	}
	if s := h.sagaState(c); s == nil || s.CurrentState != model.SagaStateFinalized {
		t.Errorf("expected saga finalized, got %+v", s)
	}
	if !contains(h.seenTypes(c), contracts.AppointmentDeleted) {
		t.Errorf("expected AppointmentDeleted")
	}

	before := len(h.seenTypes(c))
	h.send(contracts.DeleteAppointmentCommand{CorrelationID: c})
	if after := len(h.seenTypes(c)); after != before+1 {
		t.Errorf("delete after finalize must not emit anything, saw %d new messages", after-before-1)
	}
}

func TestScenario_RedeliveredBookAfterDeleteIsIgnored(t *testing.T) {
	h := newHarness(t)
	c, a, p := uuid.NewString(), uuid.NewString(), uuid.NewString()

	h.book(c, a, p)
	h.send(contracts.ConfirmAppointmentCommand{CorrelationID: c})
	h.send(contracts.MarkAppointmentCompletedCommand{CorrelationID: c})
	h.send(contracts.DeleteAppointmentCommand{CorrelationID: c})
	before := len(h.seenTypes(c))

	h.book(c, a, p)

	if after := len(h.seenTypes(c)); after != before+1 {
		t.Errorf("redelivered book must not emit anything, saw %v", h.seenTypes(c)[before:])
	}
	if got := h.sagaState(c).CurrentState; got != model.SagaStateFinalized {
		t.Errorf("expected saga to stay Finalized, got %s", got)
	}
	if appt := h.appointment(a); !appt.IsEmpty() {
		t.Errorf("expected appointment to stay cleared, got %+v", appt)
	}
	if contains(h.patientAppointments(p), a) {
		t.Errorf("expected patient not to list the deleted appointment")
	}
}

func TestScenario_CompetingBookingsOneWins(t *testing.T) {
	h := newHarness(t)
	c1, a1 := uuid.NewString(), uuid.NewString()
	c2, a2 := uuid.NewString(), uuid.NewString()

	for _, b := range []struct{ c, a string }{{c1, a1}, {c2, a2}} {
		msg, _ := kafka.FromContract(testTopics, contracts.BookAppointmentCommand{
			CorrelationID: b.c, AppointmentID: b.a, PatientID: uuid.NewString(),
			DoctorID: h.doctorID, SlotID: h.slotID, Duration: 30 * time.Minute,
		}, "api")
		_ = h.channel.Publish(context.Background(), msg)
	}
	h.pump()

	states := []model.SagaState{h.sagaState(c1).CurrentState, h.sagaState(c2).CurrentState}
	initialized, faulted := 0, 0
	for _, s := range states {
		switch s {
		case model.SagaStateAppointmentInitialized:
			initialized++
		case model.SagaStateFaulted:
			faulted++
		}
	}
	if initialized != 1 || faulted != 1 {
		t.Errorf("expected one winner and one loser, got %v", states)
	}
}

func TestScenario_ReservationTimeoutThenLateReply(t *testing.T) {
	h := newHarness(t)
	doctorRoutes := h.routes[testTopics.DoctorCommands]
	var held []kafka.Message
	h.routes[testTopics.DoctorCommands] = []*Router{NewRouter(testLogger()).On(contracts.ReserveTimeSlot,
		func(_ context.Context, raw kafka.Message, _ contracts.Message) error {
			held = append(held, raw)
			return nil
		})}

	c, a, p := uuid.NewString(), uuid.NewString(), uuid.NewString()
	h.book(c, a, p)
	if got := h.sagaState(c).CurrentState; got != model.SagaStateAwaitingSlotReservation {
		t.Fatalf("expected AwaitingSlotReservation, got %s", got)
	}

	// A negative timeout treats every waiting saga as overdue.
	sw := sweeper.New(h.store, h.channel, testTopics, testLogger(), "@every 1m", -time.Minute, "orchestrator")
	if n, err := sw.Sweep(context.Background()); err != nil || n != 1 {
		t.Fatalf("sweep: %d/%v", n, err)
	}
	h.pump()

	s := h.sagaState(c)
	if s.CurrentState != model.SagaStateFaulted || s.FailureReason != "Slot reservation failed: "+saga.ReservationTimedOut {
		t.Fatalf("expected timed out saga, got %s %q", s.CurrentState, s.FailureReason)
	}

	// The doctor answers after the saga gave up; the reservation is handed back.
	h.routes[testTopics.DoctorCommands] = doctorRoutes
	for _, msg := range held {
		if err := doctorRoutes[0].Handle(context.Background(), msg); err != nil {
			t.Fatalf("late reserve: %v", err)
		}
	}
	h.pump()

	if slot := h.slot(); slot.IsReserved {
		t.Errorf("expected late reservation to be released, got %+v", slot)
	}
	if got := h.sagaState(c).CurrentState; got != model.SagaStateFaulted {
		t.Errorf("expected saga to stay Faulted, got %s", got)
	}
	if !h.appointment(a).IsEmpty() {
		t.Errorf("no appointment expected for a timed out booking")
	}
	if !contains(h.seenTypes(c), contracts.TimeSlotReleased) {
		t.Errorf("expected TimeSlotReleased, saw %v", h.seenTypes(c))
	}
}
