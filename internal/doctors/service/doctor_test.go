package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medbook/internal/doctors/repository"
	"medbook/internal/doctors/validator"
	"medbook/pkg/config"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/lock"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/google/uuid"
)

func newTestService(t *testing.T) (DoctorService, *repository.MemoryDoctorRepository) {
	t.Helper()
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	repo := repository.NewMemoryDoctorRepository()
	return NewDoctorService(repo, validator.NewDoctorValidator(), lock.NewKeyedMutex(), nil, cfg), repo
}

func defineOneSlot(t *testing.T, svc DoctorService, doctorID, slotID string) {
	t.Helper()
	_, err := svc.DefineAvailability(context.Background(), doctorID, []model.SlotDefinition{{
		ID:              slotID,
		Start:           time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
	}})
	if err != nil {
		t.Fatalf("define availability: %v", err)
	}
}

func TestTryReserveTimeSlot_PersistsOnce(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	doctorID, slotID := uuid.NewString(), uuid.NewString()
	defineOneSlot(t, svc, doctorID, slotID)

	for i := 0; i < 2; i++ {
		outcome, err := svc.TryReserveTimeSlot(ctx, doctorID, slotID, "a1", "p1")
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i, err)
		}
		if outcome != model.ReservationSuccess {
			t.Fatalf("attempt %d: expected Success, got %s", i, outcome)
		}
	}

	doctor, _ := repo.Load(ctx, doctorID)
	if doctor.Version != 2 {
		t.Errorf("expected define + one reservation write (version 2), got %d", doctor.Version)
	}
}

func TestTryReserveTimeSlot_UnknownDoctorIsNotFound(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.NewString()

	outcome, err := svc.TryReserveTimeSlot(ctx, doctorID, "s1", "a1", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != model.ReservationNotFound {
		t.Errorf("expected NotFound, got %s", outcome)
	}
	if _, err := repo.FindByID(ctx, doctorID); err == nil {
		t.Error("expected no doctor record to be written")
	}
}

func TestTryReserveTimeSlot_ConcurrentCallersOneWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doctorID, slotID := uuid.NewString(), uuid.NewString()
	defineOneSlot(t, svc, doctorID, slotID)

	const callers = 16
	outcomes := make([]model.ReservationOutcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := svc.TryReserveTimeSlot(ctx, doctorID, slotID, uuid.NewString(), uuid.NewString())
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, o := range outcomes {
		if o == model.ReservationSuccess {
			winners++
		} else if o != model.ReservationAlreadyReserved {
			t.Errorf("unexpected outcome %s", o)
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly one winner, got %d", winners)
	}
}

func TestReleaseTimeSlot_Idempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	doctorID, slotID := uuid.NewString(), uuid.NewString()
	defineOneSlot(t, svc, doctorID, slotID)

	if _, err := svc.TryReserveTimeSlot(ctx, doctorID, slotID, "a1", "p1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	released, err := svc.ReleaseTimeSlot(ctx, doctorID, slotID, "a1")
	if err != nil || !released {
		t.Fatalf("expected first release to succeed, got %v/%v", released, err)
	}
	released, err = svc.ReleaseTimeSlot(ctx, doctorID, slotID, "a1")
	if err != nil || released {
		t.Fatalf("expected second release to be a no-op, got %v/%v", released, err)
	}

	doctor, _ := repo.Load(ctx, doctorID)
	if doctor.FindSlot(slotID).IsReserved {
		t.Error("expected slot to be free")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), uuid.NewString())
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	_, err = svc.GetProfile(context.Background(), "not-a-uuid")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUpsertProfile_KeepsCalendar(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doctorID, slotID := uuid.NewString(), uuid.NewString()
	defineOneSlot(t, svc, doctorID, slotID)

	doctor, err := svc.UpsertProfile(ctx, &model.DoctorProfile{ID: doctorID, Name: "Dr. Grey"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if doctor.Name != "Dr. Grey" || len(doctor.Availability) != 1 {
		t.Errorf("expected name set and calendar kept, got %+v", doctor)
	}

	if err := svc.SetSpecialization(ctx, doctorID, "Surgery"); err != nil {
		t.Fatalf("set specialization: %v", err)
	}
	got, _ := svc.GetProfile(ctx, doctorID)
	if got.Specialization != "Surgery" || got.Name != "Dr. Grey" {
		t.Errorf("unexpected profile %+v", got)
	}
}

func TestDefineAvailability_ValidationError(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DefineAvailability(context.Background(), uuid.NewString(), nil)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestGetAvailableSlots(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	doctorID := uuid.NewString()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	defined, err := svc.DefineAvailability(ctx, doctorID, []model.SlotDefinition{
		{Start: base, DurationMinutes: 30},
		{Start: base.Add(30 * time.Minute), DurationMinutes: 30},
	})
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if _, err := svc.TryReserveTimeSlot(ctx, doctorID, defined[0].ID, "a1", "p1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	slots, err := svc.GetAvailableSlots(ctx, doctorID, base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("available slots: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != defined[1].ID {
		t.Errorf("expected only the second slot, got %+v", slots)
	}

	all, _ := svc.GetAllTimeSlots(ctx, doctorID)
	if len(all) != 2 {
		t.Errorf("expected 2 slots in total, got %d", len(all))
	}
}
