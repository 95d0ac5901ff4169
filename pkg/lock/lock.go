package lock

import (
	"context"
	"errors"
)

// ErrLockNotAcquired is returned when the lock could not be taken before the wait
// budget ran out. Callers treat it as transient.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker serializes work per key. Work under different keys never contends.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func DoctorKey(doctorID string) string {
	return "doctor:" + doctorID
}

func AppointmentKey(appointmentID string) string {
	return "appointment:" + appointmentID
}

func PatientKey(patientID string) string {
	return "patient:" + patientID
}

func SagaKey(correlationID string) string {
	return "saga:" + correlationID
}
