package validators

import "go.mongodb.org/mongo-driver/bson"

var OutboxValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"topic",
			"key",
			"event_type",
			"payload",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"topic":      bson.M{"bsonType": "string", "minLength": 1},
			"key":        bson.M{"bsonType": "string"},
			"event_type": bson.M{"bsonType": "string", "minLength": 1},
			"headers": bson.M{
				"bsonType": "object",
				"additionalProperties": bson.M{
					"bsonType": "string",
				},
			},
			"payload":      bson.M{"bsonType": "binData"},
			"created_at":   bson.M{"bsonType": "date"},
			"published_at": bson.M{"bsonType": "date"},
		},
	},
}
