package consumers

import (
	"context"
	"errors"

	"medbook/pkg/contracts"
	"medbook/pkg/kafka"
	"medbook/pkg/logger"
)

// HandlerFunc handles one decoded message. raw carries the headers and offsets.
type HandlerFunc func(ctx context.Context, raw kafka.Message, event contracts.Message) error

// Router decodes messages by their event-type header and dispatches them. Types
// without a registered handler are skipped, since several consumer groups read
// the same topic for different events.
type Router struct {
	handlers map[string]HandlerFunc
	log      *logger.Logger
}

func NewRouter(log *logger.Logger) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		log:      log,
	}
}

func (r *Router) On(eventType string, fn HandlerFunc) *Router {
	r.handlers[eventType] = fn
	return r
}

func (r *Router) Handles(eventType string) bool {
	_, ok := r.handlers[eventType]
	return ok
}

// Handle satisfies kafka.MessageHandler. Undecodable messages are permanent
// failures; handler failures are transient unless the handler says otherwise.
func (r *Router) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()
	fn, ok := r.handlers[eventType]
	if !ok {
		r.log.Debug("Message skipped", "event_type", eventType, "topic", msg.Topic)
		return nil
	}

	event, err := contracts.Decode(eventType, msg.Value)
	if err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}
	if event.GetCorrelationID() == "" {
		return kafka.NewPermanentError("invalid message: missing correlation id", nil).
			WithDetail("event_type", eventType)
	}

	if err := fn(ctx, msg, event); err != nil {
		var kafkaErr *kafka.KafkaError
		if errors.As(err, &kafkaErr) {
			return err
		}
		return kafka.NewTransientError(eventType+" handling failed", err)
	}
	return nil
}
