package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"medbook/pkg/client"
	"medbook/pkg/config"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const ServiceName = "seed"

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var reasons = []string{
	"Annual checkup",
	"Follow-up visit",
	"Persistent headache",
	"Skin rash",
	"Back pain",
	"Prescription renewal",
}

type seeder struct {
	api *client.HttpClient
	log *logger.Logger
}

func main() {
	doctors := flag.Int("doctors", 10, "number of doctors to create")
	patients := flag.Int("patients", 50, "number of patients to create")
	slotsPerDoctor := flag.Int("slots", 8, "time slots defined per doctor")
	bookings := flag.Int("bookings", 20, "bookings to request through the saga")
	flag.Parse()

	cfg := config.Load(ServiceName)
	s := &seeder{api: client.NewHttpClient(cfg.APIBaseURL), log: cfg.Log}

	ctx := context.Background()
	if err := s.api.WaitForHealthy(ctx, 30*time.Second); err != nil {
		cfg.Log.Fatal("API is not reachable", "base_url", cfg.APIBaseURL, "error", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	slots, err := s.seedDoctors(ctx, *doctors, *slotsPerDoctor)
	if err != nil {
		cfg.Log.Fatal("Failed to seed doctors", "error", err)
	}
	patientIDs, err := s.seedPatients(ctx, *patients)
	if err != nil {
		cfg.Log.Fatal("Failed to seed patients", "error", err)
	}
	accepted, err := s.seedBookings(ctx, *bookings, slots, patientIDs)
	if err != nil {
		cfg.Log.Fatal("Failed to seed bookings", "error", err)
	}

	cfg.Log.Info("Seed complete",
		"doctors", *doctors,
		"slots", len(slots),
		"patients", len(patientIDs),
		"bookings", accepted,
	)
}

type doctorSlot struct {
	doctorID string
	slot     model.TimeSlot
}

func (s *seeder) seedDoctors(ctx context.Context, count, slotsPerDoctor int) ([]doctorSlot, error) {
	s.log.Info("Seeding doctors", "count", count, "slots_per_doctor", slotsPerDoctor)

	var all []doctorSlot
	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	for i := 0; i < count; i++ {
		resp, err := s.api.POST(ctx, "/api/v1/doctors", model.DoctorProfile{
			Name:           "Dr. " + gofakeit.Name(),
			Specialization: specialties[gofakeit.Number(0, len(specialties)-1)],
		})
		if err != nil {
			return nil, fmt.Errorf("create doctor: %w", err)
		}
		var doctor model.Doctor
		if err := resp.DecodeData(&doctor); err != nil {
			return nil, fmt.Errorf("decode doctor: %w", err)
		}

		definitions := make([]model.SlotDefinition, 0, slotsPerDoctor)
		start := day.Add(time.Duration(gofakeit.Number(8, 10)) * time.Hour)
		for j := 0; j < slotsPerDoctor; j++ {
			definitions = append(definitions, model.SlotDefinition{
				Start:           start.Add(time.Duration(j) * 30 * time.Minute),
				DurationMinutes: 30,
			})
		}

		resp, err = s.api.POST(ctx, "/api/v1/doctors/"+doctor.ID+"/availability", map[string]any{"slots": definitions})
		if err != nil {
			return nil, fmt.Errorf("define availability for %s: %w", doctor.ID, err)
		}
		var slots []model.TimeSlot
		if err := resp.DecodeData(&slots); err != nil {
			return nil, fmt.Errorf("decode slots: %w", err)
		}
		for _, slot := range slots {
			all = append(all, doctorSlot{doctorID: doctor.ID, slot: slot})
		}
	}

	s.log.Info("Doctors seeded", "count", count)
	return all, nil
}

func (s *seeder) seedPatients(ctx context.Context, count int) ([]string, error) {
	s.log.Info("Seeding patients", "count", count)

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		resp, err := s.api.POST(ctx, "/api/v1/patients", model.PatientProfile{Name: gofakeit.Name()})
		if err != nil {
			return nil, fmt.Errorf("create patient: %w", err)
		}
		var patient model.Patient
		if err := resp.DecodeData(&patient); err != nil {
			return nil, fmt.Errorf("decode patient: %w", err)
		}
		ids = append(ids, patient.ID)
	}

	s.log.Info("Patients seeded", "count", count)
	return ids, nil
}

// seedBookings requests bookings for distinct free slots. Each request carries
// its own idempotency key.
func (s *seeder) seedBookings(ctx context.Context, count int, slots []doctorSlot, patients []string) (int, error) {
	if len(patients) == 0 || len(slots) == 0 {
		return 0, nil
	}
	if count > len(slots) {
		count = len(slots)
	}
	s.log.Info("Requesting bookings", "count", count)

	picked := gofakeit.Number(0, len(slots)-1)
	accepted := 0
	for i := 0; i < count; i++ {
		target := slots[(picked+i)%len(slots)]
		req := model.BookingRequest{
			PatientID:       patients[gofakeit.Number(0, len(patients)-1)],
			DoctorID:        target.doctorID,
			SlotID:          target.slot.ID,
			AppointmentTime: target.slot.Start,
			DurationMinutes: int(target.slot.Duration / time.Minute),
			ReasonForVisit:  gofakeit.RandomString(reasons),
		}

		resp, err := s.api.POSTIdempotent(ctx, "/api/v1/bookings", req, uuid.NewString())
		if err != nil {
			return accepted, fmt.Errorf("book slot %s: %w", target.slot.ID, err)
		}
		var out model.BookingAccepted
		if err := resp.DecodeData(&out); err != nil {
			return accepted, fmt.Errorf("decode booking: %w", err)
		}
		s.log.Debug("Booking accepted", logger.CORRELATION_ID, out.CorrelationID, "appointment_id", out.AppointmentID)
		accepted++
	}
	return accepted, nil
}
