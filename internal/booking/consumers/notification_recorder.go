package consumers

import (
	"context"
	"fmt"
	"time"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

// NotificationSink stores notification lines; saving the same id twice is a no-op.
type NotificationSink interface {
	Save(ctx context.Context, notification *model.Notification) error
}

// NewNotificationRecorder turns appointment events into human readable lines.
// It runs in its own consumer group and nothing else depends on it.
func NewNotificationRecorder(sink NotificationSink, log *logger.Logger) *Router {
	record := func(ctx context.Context, raw kafka.Message, event contracts.Message) error {
		appointmentID, text := describe(event)
		return sink.Save(ctx, &model.Notification{
			ID:            raw.GetEventID(),
			EventType:     event.EventType(),
			AppointmentID: appointmentID,
			CorrelationID: event.GetCorrelationID(),
			Message:       text,
			CreatedAt:     time.Now().UTC(),
		})
	}

	r := NewRouter(log.WithComponent("notification-recorder"))
	for _, eventType := range []string{
		contracts.AppointmentInitialized,
		contracts.AppointmentConfirmed,
		contracts.AppointmentCanceled,
		contracts.AppointmentCompleted,
		contracts.AppointmentDeleted,
		contracts.TimeSlotReleased,
	} {
		r.On(eventType, record)
	}
	return r
}

func describe(event contracts.Message) (appointmentID string, text string) {
	switch e := event.(type) {
	case contracts.AppointmentInitializedEvent:
		return e.AppointmentID, fmt.Sprintf("Appointment %s booked for patient %s with doctor %s at %s.",
			e.AppointmentID, e.PatientID, e.DoctorID, e.AppointmentTime.Format(time.RFC3339))
	case contracts.AppointmentConfirmedEvent:
		return e.AppointmentID, fmt.Sprintf("Appointment %s confirmed.", e.AppointmentID)
	case contracts.AppointmentCanceledEvent:
		return e.AppointmentID, fmt.Sprintf("Appointment %s canceled: %s", e.AppointmentID, e.Reason)
	case contracts.AppointmentCompletedEvent:
		return e.AppointmentID, fmt.Sprintf("Appointment %s completed at %s.", e.AppointmentID, e.CompletionTime.Format(time.RFC3339))
	case contracts.AppointmentDeletedEvent:
		return e.AppointmentID, fmt.Sprintf("Appointment %s deleted.", e.AppointmentID)
	case contracts.TimeSlotReleasedEvent:
		return e.AppointmentID, fmt.Sprintf("Slot %s of doctor %s released.", e.SlotID, e.DoctorID)
	default:
		return "", event.EventType()
	}
}
