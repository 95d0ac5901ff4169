package model

import "time"

// BookingRequest is the body of POST /api/v1/bookings.
type BookingRequest struct {
	PatientID       string    `json:"patient_id" validate:"required,uuid"`
	DoctorID        string    `json:"doctor_id" validate:"required,uuid"`
	SlotID          string    `json:"slot_id" validate:"required,uuid"`
	AppointmentTime time.Time `json:"appointment_time" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1,max=720"`
	ReasonForVisit  string    `json:"reason_for_visit" validate:"max=500"`
}

func (r *BookingRequest) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// BookingAccepted is returned once a booking command has been handed to the saga.
type BookingAccepted struct {
	CorrelationID string `json:"correlation_id"`
	AppointmentID string `json:"appointment_id,omitempty"`
	Command       string `json:"command"`
}
