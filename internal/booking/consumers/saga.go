package consumers

import (
	"context"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
)

// SagaHandler is implemented by saga.Orchestrator.
type SagaHandler interface {
	Handle(ctx context.Context, event contracts.Message) error
}

// NewSagaRouter routes every saga input on the saga topic to the orchestrator.
func NewSagaRouter(orchestrator SagaHandler, log *logger.Logger) *Router {
	handle := func(ctx context.Context, _ kafka.Message, event contracts.Message) error {
		return orchestrator.Handle(ctx, event)
	}

	return NewRouter(log.WithComponent("saga-consumer")).
		On(contracts.BookAppointment, handle).
		On(contracts.ConfirmAppointment, handle).
		On(contracts.CancelAppointment, handle).
		On(contracts.MarkAppointmentCompleted, handle).
		On(contracts.DeleteAppointment, handle).
		On(contracts.TimeSlotReserved, handle).
		On(contracts.TimeSlotReservationFailed, handle)
}
