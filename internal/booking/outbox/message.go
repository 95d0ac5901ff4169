package outbox

import (
	"maps"
	"time"

	"medbook/pkg/kafka"
	"medbook/pkg/model"
)

// FromMessage converts an encoded message into an outbox row. The row id is the
// message event id, so a relay retry republishes the same event id.
func FromMessage(msg kafka.Message, now time.Time) model.OutboxMessage {
	return model.OutboxMessage{
		ID:            msg.GetEventID(),
		Topic:         msg.Topic,
		Key:           msg.Key,
		EventType:     msg.GetEventType(),
		CorrelationID: msg.GetCorrelationID(),
		Headers:       maps.Clone(msg.Headers),
		Payload:       msg.Value,
		CreatedAt:     now,
	}
}

func ToMessage(row model.OutboxMessage) kafka.Message {
	headers := maps.Clone(row.Headers)
	if headers == nil {
		headers = make(map[string]string)
	}
	headers[kafka.HeaderEventID] = row.ID
	headers[kafka.HeaderEventType] = row.EventType
	headers[kafka.HeaderCorrelationID] = row.CorrelationID

	return kafka.Message{
		Topic:     row.Topic,
		Key:       row.Key,
		Value:     row.Payload,
		Headers:   headers,
		Timestamp: row.CreatedAt,
	}
}
