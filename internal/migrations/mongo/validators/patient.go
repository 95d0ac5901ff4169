package validators

import "go.mongodb.org/mongo-driver/bson"

var PatientValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"version"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{"bsonType": "string"},
			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"appointments": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    bson.M{"bsonType": "string"},
			},
			"version": bson.M{
				"bsonType": integer,
				"minimum":  1,
			},
		},
	},
}
