package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	appointmentserrors "medbook/internal/appointments/errors"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"
)

type MemoryAppointmentRepository struct {
	mu           sync.Mutex
	appointments map[string]model.Appointment
}

func NewMemoryAppointmentRepository() *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{appointments: make(map[string]model.Appointment)}
}

func (r *MemoryAppointmentRepository) Load(ctx context.Context, id string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.appointments[id]
	if !ok {
		return &model.Appointment{ID: id}, nil
	}
	return &stored, nil
}

func (r *MemoryAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, _ := r.Load(ctx, id)
	if appointment.Version == 0 {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrNotFound, id)
	}
	return appointment, nil
}

func (r *MemoryAppointmentRepository) Save(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.appointments[appointment.ID].Version != appointment.Version {
		return fmt.Errorf("failed to save appointment: %w", mongostore.ErrVersionConflict)
	}
	appointment.Version++
	appointment.UpdatedAt = time.Now().UTC()
	r.appointments[appointment.ID] = *appointment
	return nil
}

func (r *MemoryAppointmentRepository) Clear(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appointment.Version == 0 {
		return nil
	}
	if r.appointments[appointment.ID].Version != appointment.Version {
		return fmt.Errorf("failed to clear appointment: %w", mongostore.ErrVersionConflict)
	}
	delete(r.appointments, appointment.ID)
	appointment.Version = 0
	return nil
}
