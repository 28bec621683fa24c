package validators

import "go.mongodb.org/mongo-driver/bson"

// IDs are pre-generated ObjectID hex strings, stored as plain strings so
// every ledger backend shares one representation.
const (
	hexIDPattern = "^[a-f0-9]{24}$"
	datePattern  = "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"
	clockPattern = "^([01][0-9]|2[0-3]):[0-5][0-9]$"
)

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"business_id",
			"name",
			"kind",
			"time_zone",
			"duration",
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

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum": []string{
					"venue",
					"staff",
				},
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"weekly_rules": bson.M{
				"bsonType": "array",
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "open", "close"},
					"properties": bson.M{
						"day": bson.M{
							"bsonType": "string",
							"enum": []string{
								"Sunday",
								"Monday",
								"Tuesday",
								"Wednesday",
								"Thursday",
								"Friday",
								"Saturday",
							},
						},
						"open": bson.M{
							"bsonType": "string",
							"pattern":  clockPattern,
						},
						"close": bson.M{
							"bsonType": "string",
							"pattern":  clockPattern,
						},
					},
				},
			},

			"duration": bson.M{
				"bsonType": "object",
				"required": []string{"slot_minutes"},
				"properties": bson.M{
					"slot_minutes": bson.M{
						"bsonType": "int",
						"minimum":  5,
						"maximum":  720,
					},
					"step_minutes": bson.M{
						"bsonType": "int",
						"minimum":  5,
						"maximum":  720,
					},
				},
			},

			"lead_time": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"min_lead_minutes": bson.M{
						"bsonType": "int",
						"minimum":  0,
						"maximum":  43200,
					},
				},
			},

			"active": bson.M{
				"bsonType": "bool",
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
