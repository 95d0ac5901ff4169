package consumers

import (
	"context"
	"errors"
	"testing"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Service: "test"})
}

func mustMessage(t *testing.T, m contracts.Message) kafka.Message {
	t.Helper()
	msg, err := kafka.FromContract(testTopics, m, "test")
	if err != nil {
		t.Fatalf("encode %s: %v", m.EventType(), err)
	}
	return msg
}

func TestRouter_Handle(t *testing.T) {
	confirm := contracts.ConfirmAppointmentCommand{CorrelationID: "c1"}
	handlerErr := errors.New("mongo down")

	tests := []struct {
		name      string
		msg       func(t *testing.T) kafka.Message
		handler   HandlerFunc
		wantCalls int
		wantType  kafka.ErrorType
	}{
		{
			name:      "dispatches registered type",
			msg:       func(t *testing.T) kafka.Message { return mustMessage(t, confirm) },
			wantCalls: 1,
		},
		{
			name: "skips unregistered type",
			msg: func(t *testing.T) kafka.Message {
				return mustMessage(t, contracts.CancelAppointmentCommand{CorrelationID: "c1"})
			},
		},
		{
			name: "undecodable payload is permanent",
			msg: func(t *testing.T) kafka.Message {
				m := mustMessage(t, confirm)
				m.Value = []byte("{not json")
				return m
			},
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name: "missing correlation id is permanent",
			msg: func(t *testing.T) kafka.Message {
				return mustMessage(t, contracts.ConfirmAppointmentCommand{})
			},
			wantType: kafka.ErrorTypePermanent,
		},
		{
			name:      "handler failure is transient",
			msg:       func(t *testing.T) kafka.Message { return mustMessage(t, confirm) },
			handler:   func(context.Context, kafka.Message, contracts.Message) error { return handlerErr },
			wantCalls: 1,
			wantType:  kafka.ErrorTypeTransient,
		},
		{
			name: "handler classification is kept",
			msg:  func(t *testing.T) kafka.Message { return mustMessage(t, confirm) },
			handler: func(context.Context, kafka.Message, contracts.Message) error {
				return kafka.NewBusinessError("rejected", nil)
			},
			wantCalls: 1,
			wantType:  kafka.ErrorTypeBusiness,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			r := NewRouter(testLogger()).On(contracts.ConfirmAppointment, func(ctx context.Context, raw kafka.Message, event contracts.Message) error {
				calls++
				if _, ok := event.(contracts.ConfirmAppointmentCommand); !ok {
					t.Errorf("expected ConfirmAppointmentCommand, got %T", event)
				}
				if tt.handler != nil {
					return tt.handler(ctx, raw, event)
				}
				return nil
			})

			err := r.Handle(context.Background(), tt.msg(t))
			if calls != tt.wantCalls {
				t.Errorf("expected %d handler calls, got %d", tt.wantCalls, calls)
			}
			if tt.wantType == kafka.ErrorTypeUnknown {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var kafkaErr *kafka.KafkaError
			if !errors.As(err, &kafkaErr) {
				t.Fatalf("expected KafkaError, got %v", err)
			}
			if kafkaErr.Type != tt.wantType {
				t.Errorf("expected %s, got %s", tt.wantType, kafkaErr.Type)
			}
		})
	}
}

func TestRouter_Handles(t *testing.T) {
	r := NewSagaRouter(nil, testLogger())
	for _, eventType := range []string{
		contracts.BookAppointment,
		contracts.ConfirmAppointment,
		contracts.CancelAppointment,
		contracts.MarkAppointmentCompleted,
		contracts.DeleteAppointment,
		contracts.TimeSlotReserved,
		contracts.TimeSlotReservationFailed,
	} {
		if !r.Handles(eventType) {
			t.Errorf("saga router should handle %s", eventType)
		}
	}
	if r.Handles(contracts.ReserveTimeSlot) {
		t.Errorf("saga router must not handle doctor commands")
	}
}
