package model

import (
	"errors"
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusNone                AppointmentStatus = ""
	AppointmentStatusPendingConfirmation AppointmentStatus = "PendingConfirmation"
	AppointmentStatusConfirmed           AppointmentStatus = "Confirmed"
	AppointmentStatusCanceled            AppointmentStatus = "Canceled"
	AppointmentStatusCompleted           AppointmentStatus = "Completed"
	AppointmentStatusFailed              AppointmentStatus = "Failed"
)

type Appointment struct {
	ID              string            `json:"id" bson:"_id"`
	PatientID       string            `json:"patient_id,omitempty" bson:"patient_id,omitempty"`
	DoctorID        string            `json:"doctor_id,omitempty" bson:"doctor_id,omitempty"`
	SlotID          string            `json:"slot_id,omitempty" bson:"slot_id,omitempty"`
	AppointmentTime time.Time         `json:"appointment_time" bson:"appointment_time"`
	Duration        time.Duration     `json:"duration" bson:"duration"`
	ReasonForVisit  string            `json:"reason_for_visit,omitempty" bson:"reason_for_visit,omitempty"`
	Status          AppointmentStatus `json:"status" bson:"status"`
	CorrelationID   string            `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Version         int64             `json:"-" bson:"version"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updated_at"`
}

// AppointmentDetails are the scheduling parameters copied from the saga when the
// appointment is initialized.
type AppointmentDetails struct {
	PatientID       string
	DoctorID        string
	SlotID          string
	AppointmentTime time.Time
	Duration        time.Duration
	ReasonForVisit  string
	CorrelationID   string
}

func (a *Appointment) IsEmpty() bool {
	return a.Status == AppointmentStatusNone && a.PatientID == ""
}

func (s AppointmentStatus) String() string {
	if s == AppointmentStatusNone {
		return "None"
	}
	return string(s)
}

// ErrInvalidAppointmentState matches every lifecycle guard violation.
var ErrInvalidAppointmentState = errors.New("invalid appointment state")

// StateError is a lifecycle guard violation. Status is the status the
// appointment was in when the operation was refused.
type StateError struct {
	Status  AppointmentStatus
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidAppointmentState
}

// SetInitialDetails may run again while the appointment is still pending, so a
// retried saga step converges on the same record.
func (a *Appointment) SetInitialDetails(d AppointmentDetails) error {
	if a.Status != AppointmentStatusNone && a.Status != AppointmentStatusPendingConfirmation {
		return &StateError{
			Status:  a.Status,
			Message: fmt.Sprintf("Appointment is in status %s and cannot be re-initialized.", a.Status),
		}
	}

	a.PatientID = d.PatientID
	a.DoctorID = d.DoctorID
	a.SlotID = d.SlotID
	a.AppointmentTime = d.AppointmentTime.UTC()
	a.Duration = d.Duration
	a.ReasonForVisit = d.ReasonForVisit
	a.CorrelationID = d.CorrelationID
	a.Status = AppointmentStatusPendingConfirmation
	return nil
}

func (a *Appointment) Confirm() error {
	if a.Status != AppointmentStatusPendingConfirmation {
		return &StateError{
			Status:  a.Status,
			Message: fmt.Sprintf("Appointment status is %s, expected PendingConfirmation to confirm.", a.Status),
		}
	}
	a.Status = AppointmentStatusConfirmed
	return nil
}

func (a *Appointment) Cancel() error {
	if a.Status == AppointmentStatusCompleted {
		return &StateError{
			Status:  a.Status,
			Message: "Completed appointments cannot be canceled.",
		}
	}
	a.Status = AppointmentStatusCanceled
	return nil
}

func (a *Appointment) MarkAsCompleted() error {
	if a.Status != AppointmentStatusConfirmed {
		return &StateError{
			Status:  a.Status,
			Message: fmt.Sprintf("Appointment status is %s, expected Confirmed to mark as completed.", a.Status),
		}
	}
	a.Status = AppointmentStatusCompleted
	return nil
}

// ClearState resets the appointment to an empty record with the same identity.
func (a *Appointment) ClearState() {
	*a = Appointment{ID: a.ID, Version: a.Version}
}
