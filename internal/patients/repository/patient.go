package repository

import (
	"context"
	"fmt"
	"time"

	patientserrors "medbook/internal/patients/errors"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "patients"
)

type PatientRepository interface {
	Load(ctx context.Context, id string) (*model.Patient, error)
	FindByID(ctx context.Context, id string) (*model.Patient, error)
	Save(ctx context.Context, patient *model.Patient) error
}

type mongoPatientRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPatientRepository(cfg *config.Config) PatientRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPatientRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPatientRepository) Load(ctx context.Context, id string) (*model.Patient, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var patient model.Patient
	found, err := mongostore.FindByID(ctx, r.collection, id, &patient)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if !found {
		return &model.Patient{ID: id, Appointments: []string{}}, nil
	}
	if patient.Appointments == nil {
		patient.Appointments = []string{}
	}
	return &patient, nil
}

func (r *mongoPatientRepository) FindByID(ctx context.Context, id string) (*model.Patient, error) {
	patient, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient.Version == 0 {
		return nil, fmt.Errorf("%w: %s", patientserrors.ErrNotFound, id)
	}
	return patient, nil
}

func (r *mongoPatientRepository) Save(ctx context.Context, patient *model.Patient) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	expected := patient.Version
	patient.Version = expected + 1
	patient.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := mongostore.ReplaceVersioned(ctx, r.collection, patient.ID, expected, patient); err != nil {
		patient.Version = expected
		return fmt.Errorf("failed to save patient: %w", err)
	}
	return nil
}
