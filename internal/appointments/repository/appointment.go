package repository

import (
	"context"
	"fmt"
	"time"

	appointmentserrors "medbook/internal/appointments/errors"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	"medbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "appointments"
)

type AppointmentRepository interface {
	Load(ctx context.Context, id string) (*model.Appointment, error)
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	Save(ctx context.Context, appointment *model.Appointment) error
	Clear(ctx context.Context, appointment *model.Appointment) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAppointmentRepository) Load(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var appointment model.Appointment
	found, err := mongostore.FindByID(ctx, r.collection, id, &appointment)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	if !found {
		return &model.Appointment{ID: id}, nil
	}
	return &appointment, nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := r.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Version == 0 {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrNotFound, id)
	}
	return appointment, nil
}

func (r *mongoAppointmentRepository) Save(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	expected := appointment.Version
	appointment.Version = expected + 1
	appointment.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if err := mongostore.ReplaceVersioned(ctx, r.collection, appointment.ID, expected, appointment); err != nil {
		appointment.Version = expected
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	return nil
}

// Clear removes the stored record; the next Load returns an empty appointment.
func (r *mongoAppointmentRepository) Clear(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := mongostore.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if err := mongostore.DeleteVersioned(ctx, r.collection, appointment.ID, appointment.Version); err != nil {
		return fmt.Errorf("failed to clear appointment: %w", err)
	}
	appointment.Version = 0
	return nil
}
