package service

import (
	"context"
	"errors"
	"time"

	doctorserrors "medbook/internal/doctors/errors"
	"medbook/internal/doctors/repository"
	"medbook/internal/doctors/validator"
	"medbook/pkg/config"
	mongostore "medbook/pkg/db/mongo"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/lock"
	"medbook/pkg/metrics"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"

	"github.com/google/uuid"
)

// DoctorService owns the doctor calendar. Every mutation of one doctor runs
// under that doctor's lock as a load, change, conditional save sequence.
type DoctorService interface {
	DefineAvailability(ctx context.Context, doctorID string, slots []model.SlotDefinition) ([]model.TimeSlot, error)
	TryReserveTimeSlot(ctx context.Context, doctorID, slotID, appointmentID, patientID string) (model.ReservationOutcome, error)
	ReleaseTimeSlot(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error)

	GetProfile(ctx context.Context, doctorID string) (*model.Doctor, error)
	UpsertProfile(ctx context.Context, profile *model.DoctorProfile) (*model.Doctor, error)
	SetName(ctx context.Context, doctorID, name string) error
	SetSpecialization(ctx context.Context, doctorID, specialization string) error
	GetAvailableSlots(ctx context.Context, doctorID string, from, to time.Time) ([]model.TimeSlot, error)
	GetAllTimeSlots(ctx context.Context, doctorID string) ([]model.TimeSlot, error)
}

type doctorService struct {
	repo      repository.DoctorRepository
	validator *validator.DoctorValidator
	locker    lock.Locker
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewDoctorService(
	repo repository.DoctorRepository,
	validator *validator.DoctorValidator,
	locker lock.Locker,
	m *metrics.Metrics,
	cfg *config.Config,
) DoctorService {
	return &doctorService{
		repo:      repo,
		validator: validator,
		locker:    locker,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *doctorService) DefineAvailability(ctx context.Context, doctorID string, slots []model.SlotDefinition) ([]model.TimeSlot, error) {
	if err := validateID(doctorID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSlots(slots); err != nil {
		s.cfg.Log.Warn("Availability validation failed", "doctor_id", doctorID, "error", err)
		return nil, apperrors.Validation("Availability validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	var defined []model.TimeSlot
	err := s.mutate(ctx, doctorID, func(doctor *model.Doctor) bool {
		defined = doctor.DefineAvailability(slots, uuid.NewString)
		return true
	})
	if err != nil {
		s.cfg.Log.Error("Failed to define availability", "doctor_id", doctorID, "error", err)
		return nil, toAppError(err, "Failed to define availability")
	}

	s.cfg.Log.Info("Availability defined", "doctor_id", doctorID, "slots", len(defined))
	return defined, nil
}

// TryReserveTimeSlot is idempotent for the same appointment and patient. The
// returned error is reserved for infrastructure failures; business refusals
// come back as an outcome.
func (s *doctorService) TryReserveTimeSlot(ctx context.Context, doctorID, slotID, appointmentID, patientID string) (model.ReservationOutcome, error) {
	var outcome model.ReservationOutcome
	err := s.mutate(ctx, doctorID, func(doctor *model.Doctor) bool {
		var changed bool
		outcome, changed = doctor.TryReserve(slotID, appointmentID, patientID)
		return changed
	})
	if err != nil {
		return "", err
	}

	s.metrics.IncReservation(string(outcome))
	s.cfg.Log.Info("Time slot reservation attempted",
		"doctor_id", doctorID,
		"slot_id", slotID,
		"appointment_id", appointmentID,
		"outcome", outcome,
	)
	return outcome, nil
}

// ReleaseTimeSlot frees the slot if appointmentID holds it and reports whether
// anything changed.
func (s *doctorService) ReleaseTimeSlot(ctx context.Context, doctorID, slotID, appointmentID string) (bool, error) {
	var released bool
	err := s.mutate(ctx, doctorID, func(doctor *model.Doctor) bool {
		released = doctor.Release(slotID, appointmentID)
		return released
	})
	if err != nil {
		return false, err
	}

	if released {
		s.cfg.Log.Info("Time slot released", "doctor_id", doctorID, "slot_id", slotID, "appointment_id", appointmentID)
	} else {
		s.cfg.Log.Debug("Time slot release was a no-op", "doctor_id", doctorID, "slot_id", slotID, "appointment_id", appointmentID)
	}
	return released, nil
}

func (s *doctorService) GetProfile(ctx context.Context, doctorID string) (*model.Doctor, error) {
	if err := validateID(doctorID); err != nil {
		return nil, err
	}

	doctor, err := s.repo.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", doctorID)
		}
		s.cfg.Log.Error("Failed to get doctor", "doctor_id", doctorID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve doctor", err)
	}
	return doctor, nil
}

// UpsertProfile creates the doctor when the id is new. Empty fields keep their
// stored value.
func (s *doctorService) UpsertProfile(ctx context.Context, profile *model.DoctorProfile) (*model.Doctor, error) {
	profile.Name = sanitizer.NormalizeName(profile.Name)
	profile.Specialization = sanitizer.NormalizeSpecialization(profile.Specialization)
	if err := s.validator.ValidateProfile(profile); err != nil {
		return nil, apperrors.Validation("Doctor profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	var saved *model.Doctor
	err := s.mutate(ctx, profile.ID, func(doctor *model.Doctor) bool {
		if profile.Name != "" {
			doctor.Name = profile.Name
		}
		if profile.Specialization != "" {
			doctor.Specialization = profile.Specialization
		}
		saved = doctor
		return true
	})
	if err != nil {
		s.cfg.Log.Error("Failed to save doctor profile", "doctor_id", profile.ID, "error", err)
		return nil, toAppError(err, "Failed to save doctor profile")
	}

	s.cfg.Log.Info("Doctor profile saved", "doctor_id", profile.ID)
	return saved, nil
}

func (s *doctorService) SetName(ctx context.Context, doctorID, name string) error {
	if err := validateID(doctorID); err != nil {
		return err
	}
	name = sanitizer.NormalizeName(name)
	if err := s.validator.ValidateName(name); err != nil {
		return apperrors.Validation("Doctor name validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.mutate(ctx, doctorID, func(doctor *model.Doctor) bool {
		doctor.Name = name
		return true
	}); err != nil {
		return toAppError(err, "Failed to update doctor name")
	}
	return nil
}

func (s *doctorService) SetSpecialization(ctx context.Context, doctorID, specialization string) error {
	if err := validateID(doctorID); err != nil {
		return err
	}
	specialization = sanitizer.NormalizeSpecialization(specialization)
	if err := s.validator.ValidateSpecialization(specialization); err != nil {
		return apperrors.Validation("Doctor specialization validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.mutate(ctx, doctorID, func(doctor *model.Doctor) bool {
		doctor.Specialization = specialization
		return true
	}); err != nil {
		return toAppError(err, "Failed to update doctor specialization")
	}
	return nil
}

func (s *doctorService) GetAvailableSlots(ctx context.Context, doctorID string, from, to time.Time) ([]model.TimeSlot, error) {
	doctor, err := s.GetProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return doctor.AvailableSlots(from, to), nil
}

func (s *doctorService) GetAllTimeSlots(ctx context.Context, doctorID string) ([]model.TimeSlot, error) {
	doctor, err := s.GetProfile(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return doctor.Availability, nil
}

// mutate runs change on the freshly loaded doctor under the doctor lock and
// saves only when change reports a modification.
func (s *doctorService) mutate(ctx context.Context, doctorID string, change func(doctor *model.Doctor) bool) error {
	return s.locker.WithLock(ctx, lock.DoctorKey(doctorID), func(ctx context.Context) error {
		doctor, err := s.repo.Load(ctx, doctorID)
		if err != nil {
			return err
		}
		if !change(doctor) {
			return nil
		}
		return s.repo.Save(ctx, doctor)
	})
}

func validateID(id string) error {
	if id == "" {
		return apperrors.InvalidInput("Doctor ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.InvalidInput("Invalid doctor ID format")
	}
	return nil
}

func toAppError(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, mongostore.ErrVersionConflict) {
		return apperrors.Conflict("Doctor was modified concurrently, please retry")
	}
	if errors.Is(err, lock.ErrLockNotAcquired) {
		return apperrors.Unavailable("Doctor calendar", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(message)
	}
	return apperrors.Internal(message, err)
}
