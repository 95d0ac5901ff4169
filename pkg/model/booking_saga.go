package model

import "time"

type SagaState string

const (
	SagaStateInitial                 SagaState = "Initial"
	SagaStateAwaitingSlotReservation SagaState = "AwaitingSlotReservation"
	SagaStateAppointmentInitialized  SagaState = "AppointmentInitialized"
	SagaStateConfirmed               SagaState = "Confirmed"
	SagaStateCanceled                SagaState = "Canceled"
	SagaStateCompleted               SagaState = "Completed"
	SagaStateFaulted                 SagaState = "Faulted"
	// SagaStateFinalized marks a deleted booking. The record stays until
	// ExpiresAt so late redeliveries for the correlation id are ignored.
	SagaStateFinalized SagaState = "Finalized"
)

type BookingSaga struct {
	CorrelationID   string        `json:"correlation_id" bson:"_id"`
	AppointmentID   string        `json:"appointment_id" bson:"appointment_id"`
	PatientID       string        `json:"patient_id" bson:"patient_id"`
	DoctorID        string        `json:"doctor_id" bson:"doctor_id"`
	SlotID          string        `json:"slot_id" bson:"slot_id"`
	AppointmentTime time.Time     `json:"appointment_time" bson:"appointment_time"`
	Duration        time.Duration `json:"duration" bson:"duration"`
	ReasonForVisit  string        `json:"reason_for_visit" bson:"reason_for_visit"`
	CurrentState    SagaState     `json:"current_state" bson:"current_state"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
	FailureReason   string        `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	ExpiresAt       *time.Time    `json:"-" bson:"expires_at,omitempty"`
	Version         int64         `json:"-" bson:"version"`
}

func NewBookingSaga(correlationID string) *BookingSaga {
	return &BookingSaga{
		CorrelationID: correlationID,
		CurrentState:  SagaStateInitial,
	}
}

func (s *BookingSaga) IsFinalized() bool {
	return s.CurrentState == SagaStateFinalized
}

func (s *BookingSaga) IsNew() bool {
	return s.Version == 0
}
