package consumers

import (
	"context"
	"errors"
	"testing"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/kafka/kafkatest"
	"medbook/pkg/model"
)

type mockCalendar struct {
	reserveFunc func(ctx context.Context, doctorID, slotID, appointmentID, patientID string) (model.ReservationOutcome, error)
	releaseFunc func(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error)
}

func (m *mockCalendar) TryReserveTimeSlot(ctx context.Context, doctorID, slotID, appointmentID, patientID string) (model.ReservationOutcome, error) {
	return m.reserveFunc(ctx, doctorID, slotID, appointmentID, patientID)
}

func (m *mockCalendar) ReleaseTimeSlot(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error) {
	return m.releaseFunc(ctx, doctorID, slotID, appointmentID)
}

type mockPatients struct {
	added   []string
	removed []string
}

func (m *mockPatients) AddAppointment(_ context.Context, patientID, appointmentID string) error {
	m.added = append(m.added, patientID+"/"+appointmentID)
	return nil
}

func (m *mockPatients) RemoveAppointment(_ context.Context, patientID, appointmentID string) error {
	m.removed = append(m.removed, patientID+"/"+appointmentID)
	return nil
}

type mockSink struct {
	saved []*model.Notification
}

func (m *mockSink) Save(_ context.Context, n *model.Notification) error {
	m.saved = append(m.saved, n)
	return nil
}

func decodeOnly(t *testing.T, recorder *kafkatest.Recorder) contracts.Message {
	t.Helper()
	msgs := recorder.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one reply, got %d", len(msgs))
	}
	event, err := contracts.Decode(msgs[0].GetEventType(), msgs[0].Value)
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return event
}

func TestDoctorCommands_Reserve(t *testing.T) {
	cmd := contracts.ReserveTimeSlotCommand{CorrelationID: "c1", DoctorID: "d1", SlotID: "s1", AppointmentID: "a1", PatientID: "p1"}

	tests := []struct {
		name       string
		outcome    model.ReservationOutcome
		wantType   string
		wantReason string
	}{
		{"success", model.ReservationSuccess, contracts.TimeSlotReserved, ""},
		{"taken", model.ReservationAlreadyReserved, contracts.TimeSlotReservationFailed, "Slot already reserved by another party."},
		{"unknown slot", model.ReservationNotFound, contracts.TimeSlotReservationFailed, "Slot not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &kafkatest.Recorder{}
			calendar := &mockCalendar{reserveFunc: func(_ context.Context, doctorID, slotID, appointmentID, patientID string) (model.ReservationOutcome, error) {
				if doctorID != "d1" || slotID != "s1" || appointmentID != "a1" || patientID != "p1" {
					t.Errorf("unexpected arguments %s %s %s %s", doctorID, slotID, appointmentID, patientID)
				}
				return tt.outcome, nil
			}}
			router := NewDoctorCommandConsumer(calendar, recorder, testTopics, "workers", testLogger()).Router()

			if err := router.Handle(context.Background(), mustMessage(t, cmd)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			reply := decodeOnly(t, recorder)
			if reply.EventType() != tt.wantType || reply.GetCorrelationID() != "c1" {
				t.Fatalf("unexpected reply %+v", reply)
			}
			if failed, ok := reply.(contracts.TimeSlotReservationFailedEvent); ok && failed.Reason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, failed.Reason)
			}
			if recorder.Messages()[0].Topic != testTopics.Saga {
				t.Errorf("reply must go to the saga topic")
			}
		})
	}
}

func TestDoctorCommands_Failures(t *testing.T) {
	reserve := mustMessage(t, contracts.ReserveTimeSlotCommand{CorrelationID: "c1", DoctorID: "d1"})

	t.Run("calendar failure publishes nothing", func(t *testing.T) {
		recorder := &kafkatest.Recorder{}
		calendar := &mockCalendar{reserveFunc: func(context.Context, string, string, string, string) (model.ReservationOutcome, error) {
			return "", errors.New("version conflict")
		}}
		err := NewDoctorCommandConsumer(calendar, recorder, testTopics, "workers", testLogger()).Router().
			Handle(context.Background(), reserve)
		var kafkaErr *kafka.KafkaError
		if !errors.As(err, &kafkaErr) || !kafkaErr.IsTransient() {
			t.Errorf("expected transient error, got %v", err)
		}
		if len(recorder.Messages()) != 0 {
			t.Errorf("nothing should be published")
		}
	})

	t.Run("reply publish failure is retried", func(t *testing.T) {
		recorder := &kafkatest.Recorder{Err: errors.New("broker down")}
		calendar := &mockCalendar{reserveFunc: func(context.Context, string, string, string, string) (model.ReservationOutcome, error) {
			return model.ReservationSuccess, nil
		}}
		err := NewDoctorCommandConsumer(calendar, recorder, testTopics, "workers", testLogger()).Router().
			Handle(context.Background(), reserve)
		if err == nil {
			t.Error("expected error so the command is redelivered")
		}
	})
}

func TestDoctorCommands_Release(t *testing.T) {
	recorder := &kafkatest.Recorder{}
	calls := 0
	calendar := &mockCalendar{releaseFunc: func(_ context.Context, doctorID, slotID, appointmentID string) (bool, error) {
		calls++
		return calls == 1, nil
	}}
	router := NewDoctorCommandConsumer(calendar, recorder, testTopics, "workers", testLogger()).Router()
	msg := mustMessage(t, contracts.ReleaseTimeSlotCommand{CorrelationID: "c1", DoctorID: "d1", SlotID: "s1", AppointmentID: "a1", PatientID: "p1"})

	for i := 0; i < 2; i++ {
		if err := router.Handle(context.Background(), msg); err != nil {
			t.Fatalf("release %d: %v", i, err)
		}
	}
	types := recorder.EventTypes()
	if len(types) != 2 || types[0] != contracts.TimeSlotReleased || types[1] != contracts.TimeSlotReleased {
		t.Errorf("expected a TimeSlotReleased reply per command, got %v", types)
	}
	if key := recorder.Messages()[0].Key; key != "p1" {
		t.Errorf("expected reply keyed by patient, got %q", key)
	}
}

func TestPatientRegistrar(t *testing.T) {
	patients := &mockPatients{}
	router := NewPatientRegistrar(patients, testLogger())
	ctx := context.Background()

	events := []contracts.Message{
		contracts.AppointmentInitializedEvent{CorrelationID: "c1", AppointmentID: "a1", PatientID: "p1"},
		contracts.AppointmentConfirmedEvent{CorrelationID: "c1", AppointmentID: "a1", PatientID: "p1"},
		contracts.AppointmentCompletedEvent{CorrelationID: "c1", AppointmentID: "a1", PatientID: "p1"},
		contracts.AppointmentDeletedEvent{CorrelationID: "c1", AppointmentID: "a1", PatientID: "p1"},
		contracts.AppointmentCanceledEvent{CorrelationID: "c2", AppointmentID: "a2", PatientID: "p2"},
		contracts.AppointmentCanceledEvent{CorrelationID: "c3", AppointmentID: "a3"},
		contracts.AppointmentInitializedEvent{CorrelationID: "c4", AppointmentID: "a4"},
	}
	for _, e := range events {
		if err := router.Handle(ctx, mustMessage(t, e)); err != nil {
			t.Fatalf("%s: %v", e.EventType(), err)
		}
	}

	if len(patients.added) != 1 || patients.added[0] != "p1/a1" {
		t.Errorf("unexpected adds %v", patients.added)
	}
	if len(patients.removed) != 2 || patients.removed[0] != "p1/a1" || patients.removed[1] != "p2/a2" {
		t.Errorf("unexpected removals %v", patients.removed)
	}
}

func TestNotificationRecorder(t *testing.T) {
	sink := &mockSink{}
	router := NewNotificationRecorder(sink, testLogger())

	msg := mustMessage(t, contracts.AppointmentCanceledEvent{CorrelationID: "c1", AppointmentID: "a1", PatientID: "p1", Reason: "patient request"})
	if err := router.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := router.Handle(context.Background(), mustMessage(t, contracts.ReserveTimeSlotCommand{CorrelationID: "c1"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.saved) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sink.saved))
	}
	n := sink.saved[0]
	if n.ID != msg.GetEventID() || n.AppointmentID != "a1" || n.EventType != contracts.AppointmentCanceled {
		t.Errorf("unexpected notification %+v", n)
	}
	if n.Message != "Appointment a1 canceled: patient request" {
		t.Errorf("unexpected text %q", n.Message)
	}
}
