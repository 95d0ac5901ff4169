package service

import (
	"context"
	"errors"

	appointmentserrors "medbook/internal/appointments/errors"
	"medbook/internal/appointments/repository"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/lock"
	"medbook/pkg/model"

	"github.com/google/uuid"
)

// AppointmentService applies lifecycle operations to one appointment at a time.
// Guard violations are returned as *model.StateError so callers can tell them
// apart from infrastructure failures.
type AppointmentService interface {
	SetInitialDetails(ctx context.Context, appointmentID string, details model.AppointmentDetails) error
	Confirm(ctx context.Context, appointmentID string) error
	Cancel(ctx context.Context, appointmentID string) error
	MarkAsCompleted(ctx context.Context, appointmentID string) error
	ClearState(ctx context.Context, appointmentID string) error

	GetByID(ctx context.Context, appointmentID string) (*model.Appointment, error)
}

type appointmentService struct {
	repo   repository.AppointmentRepository
	locker lock.Locker
	cfg    *config.Config
}

func NewAppointmentService(repo repository.AppointmentRepository, locker lock.Locker, cfg *config.Config) AppointmentService {
	return &appointmentService{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
	}
}

func (s *appointmentService) SetInitialDetails(ctx context.Context, appointmentID string, details model.AppointmentDetails) error {
	return s.mutate(ctx, appointmentID, "SetInitialDetails", func(a *model.Appointment) error {
		return a.SetInitialDetails(details)
	})
}

func (s *appointmentService) Confirm(ctx context.Context, appointmentID string) error {
	return s.mutate(ctx, appointmentID, "Confirm", (*model.Appointment).Confirm)
}

func (s *appointmentService) Cancel(ctx context.Context, appointmentID string) error {
	return s.mutate(ctx, appointmentID, "Cancel", (*model.Appointment).Cancel)
}

func (s *appointmentService) MarkAsCompleted(ctx context.Context, appointmentID string) error {
	return s.mutate(ctx, appointmentID, "MarkAsCompleted", (*model.Appointment).MarkAsCompleted)
}

func (s *appointmentService) ClearState(ctx context.Context, appointmentID string) error {
	return s.locker.WithLock(ctx, lock.AppointmentKey(appointmentID), func(ctx context.Context) error {
		appointment, err := s.repo.Load(ctx, appointmentID)
		if err != nil {
			return err
		}
		if appointment.Version == 0 {
			return nil
		}
		appointment.ClearState()
		if err := s.repo.Clear(ctx, appointment); err != nil {
			return err
		}
		s.cfg.Log.Info("Appointment cleared", "appointment_id", appointmentID)
		return nil
	})
}

func (s *appointmentService) GetByID(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	if appointmentID == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	if _, err := uuid.Parse(appointmentID); err != nil {
		return nil, apperrors.InvalidInput(appointmentserrors.ErrInvalidID.Error())
	}

	appointment, err := s.repo.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", appointmentID)
		}
		s.cfg.Log.Error("Failed to get appointment", "appointment_id", appointmentID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appointment, nil
}

// mutate loads the appointment under its lock, applies op and saves. A failed
// guard leaves the stored record untouched.
func (s *appointmentService) mutate(ctx context.Context, appointmentID, op string, apply func(*model.Appointment) error) error {
	return s.locker.WithLock(ctx, lock.AppointmentKey(appointmentID), func(ctx context.Context) error {
		appointment, err := s.repo.Load(ctx, appointmentID)
		if err != nil {
			return err
		}

		before := appointment.Status
		if err := apply(appointment); err != nil {
			s.cfg.Log.Warn("Appointment operation rejected",
				"appointment_id", appointmentID,
				"operation", op,
				"status", before.String(),
				"error", err,
			)
			return err
		}

		if err := s.repo.Save(ctx, appointment); err != nil {
			if errors.Is(err, mongostore.ErrVersionConflict) {
				s.cfg.Log.Warn("Appointment changed concurrently", "appointment_id", appointmentID, "operation", op)
			}
			return err
		}

		s.cfg.Log.Info("Appointment updated",
			"appointment_id", appointmentID,
			"operation", op,
			"from", before.String(),
			"to", appointment.Status.String(),
		)
		return nil
	})
}
