package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType is returned by Decode for an event type this build does not know.
var ErrUnknownEventType = errors.New("unknown event type")

var factories = map[string]func() Message{
	BookAppointment:           func() Message { return &BookAppointmentCommand{} },
	ConfirmAppointment:        func() Message { return &ConfirmAppointmentCommand{} },
	CancelAppointment:         func() Message { return &CancelAppointmentCommand{} },
	MarkAppointmentCompleted:  func() Message { return &MarkAppointmentCompletedCommand{} },
	DeleteAppointment:         func() Message { return &DeleteAppointmentCommand{} },
	ReserveTimeSlot:           func() Message { return &ReserveTimeSlotCommand{} },
	ReleaseTimeSlot:           func() Message { return &ReleaseTimeSlotCommand{} },
	TimeSlotReserved:          func() Message { return &TimeSlotReservedEvent{} },
	TimeSlotReservationFailed: func() Message { return &TimeSlotReservationFailedEvent{} },
	TimeSlotReleased:          func() Message { return &TimeSlotReleasedEvent{} },
	AppointmentInitialized:    func() Message { return &AppointmentInitializedEvent{} },
	AppointmentConfirmed:      func() Message { return &AppointmentConfirmedEvent{} },
	AppointmentCanceled:       func() Message { return &AppointmentCanceledEvent{} },
	AppointmentCompleted:      func() Message { return &AppointmentCompletedEvent{} },
	AppointmentDeleted:        func() Message { return &AppointmentDeletedEvent{} },
}

// Decode turns a JSON payload into the value type registered for eventType.
func Decode(eventType string, data []byte) (Message, error) {
	factory, ok := factories[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	ptr := factory()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}
	return deref(ptr), nil
}

func deref(m Message) Message {
	switch v := m.(type) {
	case *BookAppointmentCommand:
		return *v
	case *ConfirmAppointmentCommand:
		return *v
	case *CancelAppointmentCommand:
		return *v
	case *MarkAppointmentCompletedCommand:
		return *v
	case *DeleteAppointmentCommand:
		return *v
	case *ReserveTimeSlotCommand:
		return *v
	case *ReleaseTimeSlotCommand:
		return *v
	case *TimeSlotReservedEvent:
		return *v
	case *TimeSlotReservationFailedEvent:
		return *v
	case *TimeSlotReleasedEvent:
		return *v
	case *AppointmentInitializedEvent:
		return *v
	case *AppointmentConfirmedEvent:
		return *v
	case *AppointmentCanceledEvent:
		return *v
	case *AppointmentCompletedEvent:
		return *v
	case *AppointmentDeletedEvent:
		return *v
	default:
		return m
	}
}
