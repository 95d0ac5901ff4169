package validators

import "go.mongodb.org/mongo-driver/bson"

var SagaValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"appointment_id",
			"doctor_id",
			"slot_id",
			"current_state",
			"created_at",
			"updated_at",
			"version",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string"},
			"appointment_id": bson.M{"bsonType": "string"},
			"patient_id":     bson.M{"bsonType": "string"},
			"doctor_id":      bson.M{"bsonType": "string"},
			"slot_id":        bson.M{"bsonType": "string"},
			"current_state": bson.M{
				"bsonType": "string",
				"enum": []string{
					"AwaitingSlotReservation",
					"AppointmentInitialized",
					"Confirmed",
					"Canceled",
					"Completed",
					"Faulted",
					"Finalized",
				},
			},
			"failure_reason": bson.M{"bsonType": "string"},
			"created_at":     bson.M{"bsonType": "date"},
			"updated_at":     bson.M{"bsonType": "date"},
			"expires_at":     bson.M{"bsonType": "date"},
			"version": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},
		},
	},
}
