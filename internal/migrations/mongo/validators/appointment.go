package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"status", "version"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"patient_id": bson.M{"bsonType": "string"},
			"doctor_id":  bson.M{"bsonType": "string"},
			"slot_id":    bson.M{"bsonType": "string"},
			"appointment_time": bson.M{
				"bsonType": "date",
			},
			"duration": bson.M{
				"bsonType": integer,
				"minimum":  0,
			},
			"reason_for_visit": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"",
					"PendingConfirmation",
					"Confirmed",
					"Canceled",
					"Completed",
					"Failed",
				},
			},
			"version": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},
		},
	},
}
