package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	patientserrors "medbook/internal/patients/errors"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"
)

type MemoryPatientRepository struct {
	mu       sync.Mutex
	patients map[string]model.Patient
}

func NewMemoryPatientRepository() *MemoryPatientRepository {
	return &MemoryPatientRepository{patients: make(map[string]model.Patient)}
}

func (r *MemoryPatientRepository) Load(ctx context.Context, id string) (*model.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.patients[id]
	if !ok {
		return &model.Patient{ID: id, Appointments: []string{}}, nil
	}
	stored.Appointments = slices.Clone(stored.Appointments)
	return &stored, nil
}

func (r *MemoryPatientRepository) FindByID(ctx context.Context, id string) (*model.Patient, error) {
	patient, _ := r.Load(ctx, id)
	if patient.Version == 0 {
		return nil, fmt.Errorf("%w: %s", patientserrors.ErrNotFound, id)
	}
	return patient, nil
}

func (r *MemoryPatientRepository) Save(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.patients[patient.ID].Version != patient.Version {
		return fmt.Errorf("failed to save patient: %w", mongostore.ErrVersionConflict)
	}
	patient.Version++
	patient.UpdatedAt = time.Now().UTC()
	stored := *patient
	stored.Appointments = slices.Clone(patient.Appointments)
	r.patients[patient.ID] = stored
	return nil
}
