package service

import (
	"context"
	"errors"

	patientserrors "medbook/internal/patients/errors"
	"medbook/internal/patients/repository"
	"medbook/internal/patients/validator"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/lock"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"

	"github.com/google/uuid"
)

// PatientService keeps the patient's appointment list. Add and remove are set
// operations and never fail on duplicates or absent ids.
type PatientService interface {
	AddAppointment(ctx context.Context, patientID, appointmentID string) error
	RemoveAppointment(ctx context.Context, patientID, appointmentID string) error

	UpsertProfile(ctx context.Context, profile *model.PatientProfile) (*model.Patient, error)
	GetProfile(ctx context.Context, patientID string) (*model.Patient, error)
	SetName(ctx context.Context, patientID, name string) error
	GetAppointments(ctx context.Context, patientID string) ([]string, error)
}

type patientService struct {
	repo      repository.PatientRepository
	validator *validator.PatientValidator
	locker    lock.Locker
	cfg       *config.Config
}

func NewPatientService(
	repo repository.PatientRepository,
	validator *validator.PatientValidator,
	locker lock.Locker,
	cfg *config.Config,
) PatientService {
	return &patientService{
		repo:      repo,
		validator: validator,
		locker:    locker,
		cfg:       cfg,
	}
}

func (s *patientService) AddAppointment(ctx context.Context, patientID, appointmentID string) error {
	var added bool
	err := s.mutate(ctx, patientID, func(p *model.Patient) bool {
		added = p.AddAppointment(appointmentID)
		return added
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Patient appointment registered", "patient_id", patientID, "appointment_id", appointmentID, "changed", added)
	return nil
}

func (s *patientService) RemoveAppointment(ctx context.Context, patientID, appointmentID string) error {
	var removed bool
	err := s.mutate(ctx, patientID, func(p *model.Patient) bool {
		removed = p.RemoveAppointment(appointmentID)
		return removed
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Patient appointment unregistered", "patient_id", patientID, "appointment_id", appointmentID, "changed", removed)
	return nil
}

func (s *patientService) UpsertProfile(ctx context.Context, profile *model.PatientProfile) (*model.Patient, error) {
	profile.Name = sanitizer.NormalizeName(profile.Name)
	if err := s.validator.ValidateProfile(profile); err != nil {
		return nil, apperrors.Validation("Patient validation failed", map[string]any{"error": err.Error()})
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	var saved *model.Patient
	err := s.mutate(ctx, profile.ID, func(p *model.Patient) bool {
		p.Name = profile.Name
		saved = p
		return true
	})
	if err != nil {
		s.cfg.Log.Error("Failed to save patient", "patient_id", profile.ID, "error", err)
		return nil, toAppError(err, "Failed to save patient")
	}

	s.cfg.Log.Info("Patient saved", "patient_id", profile.ID)
	return saved, nil
}

func (s *patientService) GetProfile(ctx context.Context, patientID string) (*model.Patient, error) {
	if err := validateID(patientID); err != nil {
		return nil, err
	}

	patient, err := s.repo.FindByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, patientserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Patient", patientID)
		}
		s.cfg.Log.Error("Failed to get patient", "patient_id", patientID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve patient", err)
	}
	return patient, nil
}

func (s *patientService) SetName(ctx context.Context, patientID, name string) error {
	if err := validateID(patientID); err != nil {
		return err
	}
	name = sanitizer.NormalizeName(name)
	if err := s.validator.ValidateName(name); err != nil {
		return apperrors.Validation("Patient name validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.mutate(ctx, patientID, func(p *model.Patient) bool {
		p.Name = name
		return true
	}); err != nil {
		return toAppError(err, "Failed to update patient name")
	}
	return nil
}

func (s *patientService) GetAppointments(ctx context.Context, patientID string) ([]string, error) {
	patient, err := s.GetProfile(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return patient.Appointments, nil
}

func (s *patientService) mutate(ctx context.Context, patientID string, change func(p *model.Patient) bool) error {
	return s.locker.WithLock(ctx, lock.PatientKey(patientID), func(ctx context.Context) error {
		patient, err := s.repo.Load(ctx, patientID)
		if err != nil {
			return err
		}
		if !change(patient) {
			return nil
		}
		return s.repo.Save(ctx, patient)
	})
}

func validateID(id string) error {
	if id == "" {
		return apperrors.InvalidInput("Patient ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidInput(patientserrors.ErrInvalidID.Error())
	}
	return nil
}

func toAppError(err error, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, mongostore.ErrVersionConflict):
		return apperrors.Conflict("Patient was modified concurrently, please retry")
	case errors.Is(err, lock.ErrLockNotAcquired):
		return apperrors.Unavailable("Patient record", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout(message)
	default:
		return apperrors.Internal(message, err)
	}
}
