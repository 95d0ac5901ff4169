package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/internal/booking/saga"
	"medbook/internal/booking/validator"
	"medbook/pkg/config"
	"medbook/pkg/contracts"
	apperrors "medbook/pkg/errors"
	"medbook/pkg/kafka"
	"medbook/pkg/model"
	"medbook/pkg/sanitizer"

	"github.com/google/uuid"
)

// SagaReader is the read side of the saga store.
type SagaReader interface {
	Load(ctx context.Context, correlationID string) (*model.BookingSaga, error)
}

// BookingService turns HTTP requests into saga commands. It never mutates an
// entity itself; the saga applies every command asynchronously.
type BookingService interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.BookingAccepted, error)
	Get(ctx context.Context, correlationID string) (*model.BookingSaga, error)
	Confirm(ctx context.Context, correlationID string) (*model.BookingAccepted, error)
	Cancel(ctx context.Context, correlationID string, req *model.CancelRequest) (*model.BookingAccepted, error)
	Complete(ctx context.Context, correlationID string) (*model.BookingAccepted, error)
	Delete(ctx context.Context, correlationID string) (*model.BookingAccepted, error)
}

type bookingService struct {
	sagas     SagaReader
	publisher kafka.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	source    string
}

func NewBookingService(
	sagas SagaReader,
	publisher kafka.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
	source string,
) BookingService {
	return &bookingService{
		sagas:     sagas,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		source:    source,
	}
}

func (s *bookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.BookingAccepted, error) {
	req.ReasonForVisit = sanitizer.NormalizeText(req.ReasonForVisit)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	cmd := contracts.BookAppointmentCommand{
		CorrelationID:   uuid.NewString(),
		AppointmentID:   uuid.NewString(),
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		SlotID:          req.SlotID,
		AppointmentTime: req.AppointmentTime.UTC(),
		Duration:        req.Duration(),
		ReasonForVisit:  req.ReasonForVisit,
	}
	if err := s.publish(ctx, cmd); err != nil {
		return nil, err
	}

	s.cfg.Log.WithCorrelation(cmd.CorrelationID).Info("Booking accepted",
		"appointment_id", cmd.AppointmentID,
		"patient_id", cmd.PatientID,
		"doctor_id", cmd.DoctorID,
		"slot_id", cmd.SlotID,
	)
	return &model.BookingAccepted{
		CorrelationID: cmd.CorrelationID,
		AppointmentID: cmd.AppointmentID,
		Command:       cmd.EventType(),
	}, nil
}

func (s *bookingService) Get(ctx context.Context, correlationID string) (*model.BookingSaga, error) {
	return s.load(ctx, correlationID)
}

func (s *bookingService) Confirm(ctx context.Context, correlationID string) (*model.BookingAccepted, error) {
	return s.dispatch(ctx, correlationID, contracts.ConfirmAppointmentCommand{CorrelationID: correlationID})
}

func (s *bookingService) Cancel(ctx context.Context, correlationID string, req *model.CancelRequest) (*model.BookingAccepted, error) {
	if req == nil {
		req = &model.CancelRequest{}
	}
	req.Reason = sanitizer.NormalizeText(req.Reason)
	if err := s.validator.ValidateCancel(req); err != nil {
		return nil, apperrors.Validation("Cancel validation failed", map[string]any{
			"error": err.Error(),
		})
	}
	return s.dispatch(ctx, correlationID, contracts.CancelAppointmentCommand{
		CorrelationID: correlationID,
		Reason:        req.Reason,
	})
}

func (s *bookingService) Complete(ctx context.Context, correlationID string) (*model.BookingAccepted, error) {
	return s.dispatch(ctx, correlationID, contracts.MarkAppointmentCompletedCommand{CorrelationID: correlationID})
}

func (s *bookingService) Delete(ctx context.Context, correlationID string) (*model.BookingAccepted, error) {
	return s.dispatch(ctx, correlationID, contracts.DeleteAppointmentCommand{CorrelationID: correlationID})
}

// dispatch publishes cmd for an existing saga. A command the saga would ignore
// in its current state is refused with 409; the saga stays authoritative for
// commands that race a concurrent transition.
func (s *bookingService) dispatch(ctx context.Context, correlationID string, cmd contracts.Message) (*model.BookingAccepted, error) {
	current, err := s.load(ctx, correlationID)
	if err != nil {
		return nil, err
	}

	if plan := saga.Transition(*current, cmd, time.Now()); !plan.Accepted {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("%s is not allowed while booking is %s", cmd.EventType(), current.CurrentState),
			nil,
		).WithDetails(map[string]any{"current_state": current.CurrentState})
	}

	if err := s.publish(ctx, cmd); err != nil {
		return nil, err
	}

	s.cfg.Log.WithCorrelation(correlationID).Info("Booking command accepted",
		"command", cmd.EventType(),
		"state", string(current.CurrentState),
	)
	return &model.BookingAccepted{
		CorrelationID: correlationID,
		AppointmentID: current.AppointmentID,
		Command:       cmd.EventType(),
	}, nil
}

func (s *bookingService) load(ctx context.Context, correlationID string) (*model.BookingSaga, error) {
	if err := s.validator.ValidateCorrelationID(correlationID); err != nil {
		return nil, apperrors.InvalidInput("Invalid correlation ID format")
	}

	current, err := s.sagas.Load(ctx, correlationID)
	if err != nil {
		s.cfg.Log.Error("Failed to load booking", "correlation_id", correlationID, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("Loading booking timed out")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if current == nil || current.IsFinalized() {
		return nil, apperrors.NotFoundWithID("Booking", correlationID)
	}
	return current, nil
}

func (s *bookingService) publish(ctx context.Context, cmd contracts.Message) error {
	msg, err := kafka.FromContract(s.cfg.Topics, cmd, s.source)
	if err != nil {
		return apperrors.Internal("Failed to encode command", err)
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking command",
			"correlation_id", cmd.GetCorrelationID(),
			"command", cmd.EventType(),
			"error", err,
		)
		return apperrors.Unavailable("Message broker", err)
	}
	return nil
}
