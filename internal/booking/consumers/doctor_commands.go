package consumers

import (
	"context"
	"fmt"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
	"medbook/pkg/model"
)

// DoctorCalendar is the part of the doctor service the command consumer uses.
type DoctorCalendar interface {
	TryReserveTimeSlot(ctx context.Context, doctorID, slotID, appointmentID, patientID string) (model.ReservationOutcome, error)
	ReleaseTimeSlot(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error)
}

// DoctorCommandConsumer executes reservation commands against the doctor
// calendar and answers with an event. Both commands are idempotent, so a
// failed reply publish is retried by redelivering the command.
type DoctorCommandConsumer struct {
	doctors   DoctorCalendar
	publisher kafka.Publisher
	topics    contracts.Topics
	source    string
	log       *logger.Logger
}

func NewDoctorCommandConsumer(doctors DoctorCalendar, publisher kafka.Publisher, topics contracts.Topics, source string, log *logger.Logger) *DoctorCommandConsumer {
	return &DoctorCommandConsumer{
		doctors:   doctors,
		publisher: publisher,
		topics:    topics,
		source:    source,
		log:       log.WithComponent("doctor-commands"),
	}
}

func (c *DoctorCommandConsumer) Router() *Router {
	return NewRouter(c.log).
		On(contracts.ReserveTimeSlot, c.handleReserve).
		On(contracts.ReleaseTimeSlot, c.handleRelease)
}

func (c *DoctorCommandConsumer) handleReserve(ctx context.Context, _ kafka.Message, event contracts.Message) error {
	cmd := event.(contracts.ReserveTimeSlotCommand)

	outcome, err := c.doctors.TryReserveTimeSlot(ctx, cmd.DoctorID, cmd.SlotID, cmd.AppointmentID, cmd.PatientID)
	if err != nil {
		return fmt.Errorf("reserve time slot: %w", err)
	}

	var reply contracts.Message
	if outcome == model.ReservationSuccess {
		reply = contracts.TimeSlotReservedEvent{
			CorrelationID: cmd.CorrelationID,
			DoctorID:      cmd.DoctorID,
			SlotID:        cmd.SlotID,
			AppointmentID: cmd.AppointmentID,
		}
	} else {
		reply = contracts.TimeSlotReservationFailedEvent{
			CorrelationID: cmd.CorrelationID,
			DoctorID:      cmd.DoctorID,
			SlotID:        cmd.SlotID,
			AppointmentID: cmd.AppointmentID,
			Reason:        outcome.FailureReason(),
		}
	}

	c.log.WithCorrelation(cmd.CorrelationID).Info("Reservation answered",
		"doctor_id", cmd.DoctorID,
		"slot_id", cmd.SlotID,
		"outcome", string(outcome),
	)
	return c.publish(ctx, reply)
}

func (c *DoctorCommandConsumer) handleRelease(ctx context.Context, _ kafka.Message, event contracts.Message) error {
	cmd := event.(contracts.ReleaseTimeSlotCommand)

	released, err := c.doctors.ReleaseTimeSlot(ctx, cmd.DoctorID, cmd.SlotID, cmd.AppointmentID)
	if err != nil {
		return fmt.Errorf("release time slot: %w", err)
	}

	c.log.WithCorrelation(cmd.CorrelationID).Info("Release executed",
		"doctor_id", cmd.DoctorID,
		"slot_id", cmd.SlotID,
		"released", released,
	)
	return c.publish(ctx, contracts.TimeSlotReleasedEvent{
		CorrelationID: cmd.CorrelationID,
		DoctorID:      cmd.DoctorID,
		SlotID:        cmd.SlotID,
		AppointmentID: cmd.AppointmentID,
		PatientID:     cmd.PatientID,
	})
}

func (c *DoctorCommandConsumer) publish(ctx context.Context, event contracts.Message) error {
	msg, err := kafka.FromContract(c.topics, event, c.source)
	if err != nil {
		return kafka.NewPermanentError("encode reply", err)
	}
	if err := c.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.EventType(), err)
	}
	return nil
}
