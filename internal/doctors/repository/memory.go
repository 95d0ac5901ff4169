package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	doctorserrors "medbook/internal/doctors/errors"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"
)

// MemoryDoctorRepository is a DoctorRepository kept in process memory with the
// same version semantics as the Mongo one.
type MemoryDoctorRepository struct {
	mu      sync.Mutex
	doctors map[string]model.Doctor
}

func NewMemoryDoctorRepository() *MemoryDoctorRepository {
	return &MemoryDoctorRepository{doctors: make(map[string]model.Doctor)}
}

func (r *MemoryDoctorRepository) Load(ctx context.Context, id string) (*model.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.doctors[id]
	if !ok {
		return &model.Doctor{ID: id, Availability: []model.TimeSlot{}}, nil
	}
	return cloneDoctor(stored), nil
}

func (r *MemoryDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	doctor, _ := r.Load(ctx, id)
	if doctor.Version == 0 {
		return nil, fmt.Errorf("%w: %s", doctorserrors.ErrNotFound, id)
	}
	return doctor, nil
}

func (r *MemoryDoctorRepository) Save(ctx context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.doctors[doctor.ID].Version != doctor.Version {
		return fmt.Errorf("failed to save doctor: %w", mongostore.ErrVersionConflict)
	}
	doctor.Version++
	doctor.UpdatedAt = time.Now().UTC()
	r.doctors[doctor.ID] = *cloneDoctor(*doctor)
	return nil
}

func cloneDoctor(d model.Doctor) *model.Doctor {
	d.Availability = append([]model.TimeSlot{}, d.Availability...)
	return &d
}
