package validators

import "go.mongodb.org/mongo-driver/bson"

var CalendarOverrideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"resource_id",
			"date",
			"closed",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  hexIDPattern,
			},

			"resource_id": bson.M{
				"bsonType": "string",
				"pattern":  hexIDPattern,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"closed": bson.M{
				"bsonType": "bool",
			},

			"open": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"close": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
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
