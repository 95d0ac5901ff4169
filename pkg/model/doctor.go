package model

import "time"

type Doctor struct {
	ID             string     `json:"id" bson:"_id"`
	Name           string     `json:"name" bson:"name"`
	Specialization string     `json:"specialization" bson:"specialization"`
	Availability   []TimeSlot `json:"availability" bson:"availability"`
	Version        int64      `json:"-" bson:"version"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// TimeSlot is a bookable interval in a doctor's calendar. A reserved slot always
// carries both the patient and the appointment that reserved it.
type TimeSlot struct {
	ID                      string        `json:"id" bson:"id"`
	Start                   time.Time     `json:"start" bson:"start"`
	Duration                time.Duration `json:"duration" bson:"duration"`
	IsReserved              bool          `json:"is_reserved" bson:"is_reserved"`
	ReservedByPatientID     string        `json:"reserved_by_patient_id,omitempty" bson:"reserved_by_patient_id,omitempty"`
	ReservedByAppointmentID string        `json:"reserved_by_appointment_id,omitempty" bson:"reserved_by_appointment_id,omitempty"`
}

func (d *Doctor) FindSlot(slotID string) *TimeSlot {
	for i := range d.Availability {
		if d.Availability[i].ID == slotID {
			return &d.Availability[i]
		}
	}
	return nil
}

func (s *TimeSlot) ClearReservation() {
	s.IsReserved = false
	s.ReservedByPatientID = ""
	s.ReservedByAppointmentID = ""
}

type DoctorProfile struct {
	ID             string `json:"id,omitempty" validate:"omitempty,uuid"`
	Name           string `json:"name" validate:"omitempty,min=2,max=100"`
	Specialization string `json:"specialization" validate:"omitempty,min=2,max=100"`
}

type SlotDefinition struct {
	ID              string    `json:"id,omitempty" validate:"omitempty,uuid"`
	Start           time.Time `json:"start" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1,max=720"`
}

// ReservationOutcome is the business result of a reservation attempt. Only
// Success mutates the calendar.
type ReservationOutcome string

const (
	ReservationSuccess         ReservationOutcome = "Success"
	ReservationNotFound        ReservationOutcome = "NotFound"
	ReservationAlreadyReserved ReservationOutcome = "AlreadyReserved"
	// ReservationOverlap is kept for overlap detection; nothing produces it yet.
	ReservationOverlap ReservationOutcome = "Overlap"
)

// FailureReason is the human readable reason carried by TimeSlotReservationFailed.
func (o ReservationOutcome) FailureReason() string {
	switch o {
	case ReservationNotFound:
		return "Slot not found."
	case ReservationAlreadyReserved:
		return "Slot already reserved by another party."
	case ReservationOverlap:
		return "Slot overlaps with existing reservation."
	default:
		return "Unknown reservation error."
	}
}

// DefineAvailability upserts slots by id. An existing slot only takes the new
// start and duration and keeps its reservation. New slots are unreserved.
// Slots without an id get one from newID.
func (d *Doctor) DefineAvailability(defs []SlotDefinition, newID func() string) []TimeSlot {
	defined := make([]TimeSlot, 0, len(defs))
	for _, def := range defs {
		slot := TimeSlot{
			ID:       def.ID,
			Start:    def.Start.UTC(),
			Duration: time.Duration(def.DurationMinutes) * time.Minute,
		}
		if slot.ID == "" {
			slot.ID = newID()
		}

		if existing := d.FindSlot(slot.ID); existing != nil {
			existing.Start = slot.Start
			existing.Duration = slot.Duration
			defined = append(defined, *existing)
			continue
		}
		d.Availability = append(d.Availability, slot)
		defined = append(defined, slot)
	}
	return defined
}

// TryReserve reserves slotID for the appointment. Re-reserving by the same
// appointment and patient succeeds without change. The bool reports whether the
// calendar changed.
func (d *Doctor) TryReserve(slotID, appointmentID, patientID string) (ReservationOutcome, bool) {
	slot := d.FindSlot(slotID)
	if slot == nil {
		return ReservationNotFound, false
	}

	if slot.IsReserved {
		if slot.ReservedByAppointmentID == appointmentID && slot.ReservedByPatientID == patientID {
			return ReservationSuccess, false
		}
		return ReservationAlreadyReserved, false
	}

	slot.IsReserved = true
	slot.ReservedByPatientID = patientID
	slot.ReservedByAppointmentID = appointmentID
	return ReservationSuccess, true
}

// Release clears the reservation only when appointmentID holds it. It reports
// whether the calendar changed.
func (d *Doctor) Release(slotID, appointmentID string) bool {
	slot := d.FindSlot(slotID)
	if slot == nil || !slot.IsReserved || slot.ReservedByAppointmentID != appointmentID {
		return false
	}
	slot.ClearReservation()
	return true
}

// AvailableSlots returns unreserved slots starting in [from, to).
func (d *Doctor) AvailableSlots(from, to time.Time) []TimeSlot {
	slots := make([]TimeSlot, 0)
	for _, s := range d.Availability {
		if s.IsReserved {
			continue
		}
		if !s.Start.Before(from) && s.Start.Before(to) {
			slots = append(slots, s)
		}
	}
	return slots
}
