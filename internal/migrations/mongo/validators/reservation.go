package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"business_id",
			"resource_id",
			"date",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  hexIDPattern,
			},

			"business_id": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 64,
			},

			"resource_id": bson.M{
				"bsonType": "string",
				"pattern":  hexIDPattern,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"duration_minutes": bson.M{
				"bsonType": "int",
				"minimum":  5,
				"maximum":  720,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
