package model

import "time"

type Notification struct {
	ID            string    `json:"id" bson:"_id"`
	EventType     string    `json:"event_type" bson:"event_type"`
	AppointmentID string    `json:"appointment_id" bson:"appointment_id"`
	CorrelationID string    `json:"correlation_id" bson:"correlation_id"`
	Message       string    `json:"message" bson:"message"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
