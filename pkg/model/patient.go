package model

import (
	"slices"
	"time"
)

type Patient struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Appointments []string  `json:"appointments" bson:"appointments"`
	Version      int64     `json:"-" bson:"version"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// AddAppointment reports whether the id was added.
func (p *Patient) AddAppointment(appointmentID string) bool {
	if slices.Contains(p.Appointments, appointmentID) {
		return false
	}
	p.Appointments = append(p.Appointments, appointmentID)
	return true
}

// RemoveAppointment reports whether the id was present.
func (p *Patient) RemoveAppointment(appointmentID string) bool {
	idx := slices.Index(p.Appointments, appointmentID)
	if idx < 0 {
		return false
	}
	p.Appointments = slices.Delete(p.Appointments, idx, idx+1)
	return true
}

type PatientProfile struct {
	ID   string `json:"id,omitempty" validate:"omitempty,uuid"`
	Name string `json:"name" validate:"required,min=2,max=100"`
}
