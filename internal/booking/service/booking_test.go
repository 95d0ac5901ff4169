package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"medbook/internal/booking/validator"
	"medbook/pkg/config"
	"medbook/pkg/contracts"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/kafka/kafkatest"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/google/uuid"
)

type mockSagaReader struct {
	loadFunc func(ctx context.Context, correlationID string) (*model.BookingSaga, error)
}

func (m *mockSagaReader) Load(ctx context.Context, correlationID string) (*model.BookingSaga, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, correlationID)
	}
	return nil, nil
}

var testTopics = contracts.Topics{
	Saga:              "booking.saga",
	DoctorCommands:    "booking.doctor-commands",
	AppointmentEvents: "booking.appointment-events",
	DeadLetter:        "booking.dlq",
}

func newTestService(reader SagaReader) (BookingService, *kafkatest.Recorder) {
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{Log: log, Topics: testTopics}
	recorder := &kafkatest.Recorder{}
	return NewBookingService(reader, recorder, validator.NewBookingValidator(), cfg, "api"), recorder
}

func sagaIn(state model.SagaState) func(context.Context, string) (*model.BookingSaga, error) {
	return func(_ context.Context, id string) (*model.BookingSaga, error) {
		return &model.BookingSaga{
			CorrelationID: id,
			AppointmentID: "appt-1",
			CurrentState:  state,
			Version:       2,
		}, nil
	}
}

func TestBook(t *testing.T) {
	svc, recorder := newTestService(&mockSagaReader{})
	req := &model.BookingRequest{
		PatientID:       uuid.NewString(),
		DoctorID:        uuid.NewString(),
		SlotID:          uuid.NewString(),
		AppointmentTime: time.Date(2026, 9, 1, 8, 30, 0, 0, time.FixedZone("IDT", 3*3600)),
		DurationMinutes: 45,
	}

	accepted, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(accepted.CorrelationID); err != nil {
		t.Errorf("correlation id is not a uuid: %q", accepted.CorrelationID)
	}
	if accepted.AppointmentID == "" || accepted.AppointmentID == accepted.CorrelationID {
		t.Errorf("expected a distinct appointment id, got %q", accepted.AppointmentID)
	}

	msgs := recorder.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one published command, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.Topic != testTopics.Saga || msg.Key != accepted.CorrelationID {
		t.Errorf("expected saga topic keyed by correlation id, got %s/%s", msg.Topic, msg.Key)
	}
	decoded, err := contracts.Decode(msg.GetEventType(), msg.Value)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cmd := decoded.(contracts.BookAppointmentCommand)
	if cmd.Duration != 45*time.Minute {
		t.Errorf("expected 45m, got %s", cmd.Duration)
	}
	if cmd.AppointmentTime.Location() != time.UTC || !cmd.AppointmentTime.Equal(req.AppointmentTime) {
		t.Errorf("expected the same instant in UTC, got %s", cmd.AppointmentTime)
	}
}

func TestBook_Rejections(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		svc, recorder := newTestService(&mockSagaReader{})
		_, err := svc.Book(context.Background(), &model.BookingRequest{PatientID: "x"})
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
		if len(recorder.Messages()) != 0 {
			t.Errorf("nothing should be published")
		}
	})

	t.Run("broker down", func(t *testing.T) {
		svc, recorder := newTestService(&mockSagaReader{})
		recorder.Err = errors.New("leader not available")
		_, err := svc.Book(context.Background(), &model.BookingRequest{
			PatientID:       uuid.NewString(),
			DoctorID:        uuid.NewString(),
			SlotID:          uuid.NewString(),
			AppointmentTime: time.Now(),
			DurationMinutes: 15,
		})
		if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	tests := []struct {
		name     string
		state    model.SagaState
		missing  bool
		run      func(svc BookingService) (*model.BookingAccepted, error)
		wantCode string
		wantType string
	}{
		{
			name:     "confirm initialized",
			state:    model.SagaStateAppointmentInitialized,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Confirm(ctx, id) },
			wantType: contracts.ConfirmAppointment,
		},
		{
			name:     "confirm while awaiting reservation",
			state:    model.SagaStateAwaitingSlotReservation,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Confirm(ctx, id) },
			wantCode: apperrors.CodeInvalidState,
		},
		{
			name:  "cancel confirmed",
			state: model.SagaStateConfirmed,
			run: func(svc BookingService) (*model.BookingAccepted, error) {
				return svc.Cancel(ctx, id, &model.CancelRequest{Reason: "sick"})
			},
			wantType: contracts.CancelAppointment,
		},
		{
			name:     "cancel without body",
			state:    model.SagaStateAppointmentInitialized,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Cancel(ctx, id, nil) },
			wantType: contracts.CancelAppointment,
		},
		{
			name:     "complete confirmed",
			state:    model.SagaStateConfirmed,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Complete(ctx, id) },
			wantType: contracts.MarkAppointmentCompleted,
		},
		{
			name:     "complete canceled",
			state:    model.SagaStateCanceled,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Complete(ctx, id) },
			wantCode: apperrors.CodeInvalidState,
		},
		{
			name:     "delete faulted",
			state:    model.SagaStateFaulted,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Delete(ctx, id) },
			wantType: contracts.DeleteAppointment,
		},
		{
			name:     "delete finalized",
			missing:  true,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Delete(ctx, id) },
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "confirm finalized record",
			state:    model.SagaStateFinalized,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Confirm(ctx, id) },
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "bad correlation id",
			state:    model.SagaStateConfirmed,
			run:      func(svc BookingService) (*model.BookingAccepted, error) { return svc.Confirm(ctx, "nope") },
			wantCode: apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &mockSagaReader{loadFunc: sagaIn(tt.state)}
			if tt.missing {
				reader.loadFunc = nil
			}
			svc, recorder := newTestService(reader)

			accepted, err := tt.run(svc)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				if len(recorder.Messages()) != 0 {
					t.Errorf("nothing should be published on rejection")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if accepted.AppointmentID != "appt-1" || accepted.Command != tt.wantType {
				t.Errorf("unexpected response %+v", accepted)
			}
			types := recorder.EventTypes()
			if len(types) != 1 || types[0] != tt.wantType {
				t.Errorf("expected %s published, got %v", tt.wantType, types)
			}
		})
	}
}

func TestGet_StoreFailure(t *testing.T) {
	svc, _ := newTestService(&mockSagaReader{loadFunc: func(context.Context, string) (*model.BookingSaga, error) {
		return nil, errors.New("server selection timeout")
	}})
	_, err := svc.Get(context.Background(), uuid.NewString())
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestGet_FinalizedIsNotFound(t *testing.T) {
	svc, _ := newTestService(&mockSagaReader{loadFunc: sagaIn(model.SagaStateFinalized)})
	_, err := svc.Get(context.Background(), uuid.NewString())
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
