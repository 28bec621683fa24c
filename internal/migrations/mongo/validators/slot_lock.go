package validators

import "go.mongodb.org/mongo-driver/bson"

// Lease documents are keyed by "<resource_id>|<date>".
var SlotLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner",
			"expires_at",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^[a-f0-9]{24}\\|[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"owner": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
