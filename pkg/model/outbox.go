package model

import "time"

// OutboxMessage is a message written in the same transaction as the saga state
// that produced it and published afterwards by the relay.
type OutboxMessage struct {
	ID            string            `bson:"_id"`
	Topic         string            `bson:"topic"`
	Key           string            `bson:"key"`
	EventType     string            `bson:"event_type"`
	CorrelationID string            `bson:"correlation_id"`
	Headers       map[string]string `bson:"headers"`
	Payload       []byte            `bson:"payload"`
	CreatedAt     time.Time         `bson:"created_at"`
	PublishedAt   *time.Time        `bson:"published_at,omitempty"`
}
