package repository

import (
	"context"
	"fmt"
	"time"

	doctorserrors "medbook/internal/doctors/errors"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "doctors"
)

// DoctorRepository stores one document per doctor. Load never fails for an
// unknown id; it returns an empty doctor at version 0.
type DoctorRepository interface {
	Load(ctx context.Context, id string) (*model.Doctor, error)
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
	Save(ctx context.Context, doctor *model.Doctor) error
}

type mongoDoctorRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDoctorRepository(cfg *config.Config) DoctorRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDoctorRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoDoctorRepository) Load(ctx context.Context, id string) (*model.Doctor, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var doctor model.Doctor
	found, err := mongostore.FindByID(ctx, r.collection, id, &doctor)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor: %w", err)
	}
	if !found {
		return &model.Doctor{ID: id, Availability: []model.TimeSlot{}}, nil
	}
	return &doctor, nil
}

func (r *mongoDoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	doctor, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if doctor.Version == 0 {
		return nil, fmt.Errorf("%w: %s", doctorserrors.ErrNotFound, id)
	}
	return doctor, nil
}

// Save writes the doctor if nobody else did since it was loaded and bumps its version.
func (r *mongoDoctorRepository) Save(ctx context.Context, doctor *model.Doctor) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	expected := doctor.Version
	doctor.Version = expected + 1
	doctor.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := mongostore.ReplaceVersioned(ctx, r.collection, doctor.ID, expected, doctor); err != nil {
		doctor.Version = expected
		return fmt.Errorf("failed to save doctor: %w", err)
	}
	return nil
}
