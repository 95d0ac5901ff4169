package consumers

import (
	"context"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
)

// PatientAppointments is the part of the patient service the registrar uses.
type PatientAppointments interface {
	AddAppointment(ctx context.Context, patientID, appointmentID string) error
	RemoveAppointment(ctx context.Context, patientID, appointmentID string) error
}

// NewPatientRegistrar keeps each patient's appointment list in step with the
// appointment events: initialized adds, canceled and deleted remove.
func NewPatientRegistrar(patients PatientAppointments, log *logger.Logger) *Router {
	log = log.WithComponent("patient-registrar")

	return NewRouter(log).
		On(contracts.AppointmentInitialized, func(ctx context.Context, _ kafka.Message, event contracts.Message) error {
			e := event.(contracts.AppointmentInitializedEvent)
			if !hasPatient(log, e.CorrelationID, e.PatientID, e.AppointmentID) {
				return nil
			}
			return patients.AddAppointment(ctx, e.PatientID, e.AppointmentID)
		}).
		On(contracts.AppointmentCanceled, func(ctx context.Context, _ kafka.Message, event contracts.Message) error {
			e := event.(contracts.AppointmentCanceledEvent)
			return removeAppointment(ctx, patients, log, e.CorrelationID, e.PatientID, e.AppointmentID)
		}).
		On(contracts.AppointmentDeleted, func(ctx context.Context, _ kafka.Message, event contracts.Message) error {
			e := event.(contracts.AppointmentDeletedEvent)
			return removeAppointment(ctx, patients, log, e.CorrelationID, e.PatientID, e.AppointmentID)
		})
}

func removeAppointment(ctx context.Context, patients PatientAppointments, log *logger.Logger, correlationID, patientID, appointmentID string) error {
	if !hasPatient(log, correlationID, patientID, appointmentID) {
		return nil
	}
	return patients.RemoveAppointment(ctx, patientID, appointmentID)
}

func hasPatient(log *logger.Logger, correlationID, patientID, appointmentID string) bool {
	if patientID != "" {
		return true
	}
	log.WithCorrelation(correlationID).Warn("Appointment event without patient id", "appointment_id", appointmentID)
	return false
}
