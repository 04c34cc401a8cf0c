package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"roomId",
			"userId",
			"checkInDate",
			"checkOutDate",
			"deleted",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"roomId": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"userId": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"checkInDate": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"checkOutDate": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"deleted": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
