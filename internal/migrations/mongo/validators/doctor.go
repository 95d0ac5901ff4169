package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var DoctorValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"version"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"specialization": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"availability": bson.M{
				"bsonType": []string{"array", "null"},
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "start", "duration", "is_reserved"},
					"properties": bson.M{
						"id":          bson.M{"bsonType": "string"},
						"start":       bson.M{"bsonType": "date"},
						"duration":    bson.M{"bsonType": integer, "minimum": 1},
						"is_reserved": bson.M{"bsonType": "bool"},
						"reserved_by_patient_id": bson.M{
							"bsonType": "string",
						},
						"reserved_by_appointment_id": bson.M{
							"bsonType": "string",
						},
					},
				},
			},
			"version": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
