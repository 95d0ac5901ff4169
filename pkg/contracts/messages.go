package contracts

import "time"

// Event types carried in the event-type header.
const (
	BookAppointment          = "BookAppointment"
	ConfirmAppointment       = "ConfirmAppointment"
	CancelAppointment        = "CancelAppointment"
	MarkAppointmentCompleted = "MarkAppointmentCompleted"
	DeleteAppointment        = "DeleteAppointment"
	ReserveTimeSlot          = "ReserveTimeSlot"
	ReleaseTimeSlot          = "ReleaseTimeSlot"

	TimeSlotReserved          = "TimeSlotReserved"
	TimeSlotReservationFailed = "TimeSlotReservationFailed"
	TimeSlotReleased          = "TimeSlotReleased"
	AppointmentInitialized    = "AppointmentInitialized"
	AppointmentConfirmed      = "AppointmentConfirmed"
	AppointmentCanceled       = "AppointmentCanceled"
	AppointmentCompleted      = "AppointmentCompleted"
	AppointmentDeleted        = "AppointmentDeleted"
)

const SchemaVersion = "1"

// Message is implemented by every command and event.
type Message interface {
	EventType() string
	GetCorrelationID() string
}

type BookAppointmentCommand struct {
	CorrelationID   string        `json:"correlation_id"`
	AppointmentID   string        `json:"appointment_id"`
	PatientID       string        `json:"patient_id"`
	DoctorID        string        `json:"doctor_id"`
	SlotID          string        `json:"slot_id"`
	AppointmentTime time.Time     `json:"appointment_time"`
	Duration        time.Duration `json:"duration"`
	ReasonForVisit  string        `json:"reason_for_visit"`
}

type ConfirmAppointmentCommand struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

type CancelAppointmentCommand struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type MarkAppointmentCompletedCommand struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

type DeleteAppointmentCommand struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id,omitempty"`
}

type ReserveTimeSlotCommand struct {
	CorrelationID string `json:"correlation_id"`
	DoctorID      string `json:"doctor_id"`
	SlotID        string `json:"slot_id"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
}

type ReleaseTimeSlotCommand struct {
	CorrelationID string `json:"correlation_id"`
	DoctorID      string `json:"doctor_id"`
	SlotID        string `json:"slot_id"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id,omitempty"`
}

type TimeSlotReservedEvent struct {
	CorrelationID string `json:"correlation_id"`
	DoctorID      string `json:"doctor_id"`
	SlotID        string `json:"slot_id"`
	AppointmentID string `json:"appointment_id"`
}

type TimeSlotReservationFailedEvent struct {
	CorrelationID string `json:"correlation_id"`
	DoctorID      string `json:"doctor_id"`
	SlotID        string `json:"slot_id"`
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type TimeSlotReleasedEvent struct {
	CorrelationID string `json:"correlation_id"`
	DoctorID      string `json:"doctor_id"`
	SlotID        string `json:"slot_id"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id,omitempty"`
}

type AppointmentInitializedEvent struct {
	CorrelationID   string        `json:"correlation_id"`
	AppointmentID   string        `json:"appointment_id"`
	PatientID       string        `json:"patient_id"`
	DoctorID        string        `json:"doctor_id"`
	SlotID          string        `json:"slot_id"`
	AppointmentTime time.Time     `json:"appointment_time"`
	Duration        time.Duration `json:"duration"`
	ReasonForVisit  string        `json:"reason_for_visit"`
}

type AppointmentConfirmedEvent struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
}

type AppointmentCanceledEvent struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	Reason        string `json:"reason"`
}

type AppointmentCompletedEvent struct {
	CorrelationID  string    `json:"correlation_id"`
	AppointmentID  string    `json:"appointment_id"`
	PatientID      string    `json:"patient_id"`
	DoctorID       string    `json:"doctor_id"`
	CompletionTime time.Time `json:"completion_time"`
}

type AppointmentDeletedEvent struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
}

func (BookAppointmentCommand) EventType() string          { return BookAppointment }
func (ConfirmAppointmentCommand) EventType() string       { return ConfirmAppointment }
func (CancelAppointmentCommand) EventType() string        { return CancelAppointment }
func (MarkAppointmentCompletedCommand) EventType() string { return MarkAppointmentCompleted }
func (DeleteAppointmentCommand) EventType() string        { return DeleteAppointment }
func (ReserveTimeSlotCommand) EventType() string          { return ReserveTimeSlot }
func (ReleaseTimeSlotCommand) EventType() string          { return ReleaseTimeSlot }
func (TimeSlotReservedEvent) EventType() string           { return TimeSlotReserved }
func (TimeSlotReservationFailedEvent) EventType() string  { return TimeSlotReservationFailed }
func (TimeSlotReleasedEvent) EventType() string           { return TimeSlotReleased }
func (AppointmentInitializedEvent) EventType() string     { return AppointmentInitialized }
func (AppointmentConfirmedEvent) EventType() string       { return AppointmentConfirmed }
func (AppointmentCanceledEvent) EventType() string        { return AppointmentCanceled }
func (AppointmentCompletedEvent) EventType() string       { return AppointmentCompleted }
func (AppointmentDeletedEvent) EventType() string         { return AppointmentDeleted }

func (m BookAppointmentCommand) GetCorrelationID() string          { return m.CorrelationID }
func (m ConfirmAppointmentCommand) GetCorrelationID() string       { return m.CorrelationID }
func (m CancelAppointmentCommand) GetCorrelationID() string        { return m.CorrelationID }
func (m MarkAppointmentCompletedCommand) GetCorrelationID() string { return m.CorrelationID }
func (m DeleteAppointmentCommand) GetCorrelationID() string        { return m.CorrelationID }
func (m ReserveTimeSlotCommand) GetCorrelationID() string          { return m.CorrelationID }
func (m ReleaseTimeSlotCommand) GetCorrelationID() string          { return m.CorrelationID }
func (m TimeSlotReservedEvent) GetCorrelationID() string           { return m.CorrelationID }
func (m TimeSlotReservationFailedEvent) GetCorrelationID() string  { return m.CorrelationID }
func (m TimeSlotReleasedEvent) GetCorrelationID() string           { return m.CorrelationID }
func (m AppointmentInitializedEvent) GetCorrelationID() string     { return m.CorrelationID }
func (m AppointmentConfirmedEvent) GetCorrelationID() string       { return m.CorrelationID }
func (m AppointmentCanceledEvent) GetCorrelationID() string        { return m.CorrelationID }
func (m AppointmentCompletedEvent) GetCorrelationID() string       { return m.CorrelationID }
func (m AppointmentDeletedEvent) GetCorrelationID() string         { return m.CorrelationID }
