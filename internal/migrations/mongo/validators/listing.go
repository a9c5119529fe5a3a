package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = schema(
	[]string{"_id", "vendor_id", "title", "description", "price", "availability", "amenities", "images", "created_at"},
	bson.M{
		"_id":       idString,
		"vendor_id": idString,
		"title": bson.M{
			"bsonType":  "string",
			"minLength": 3,
			"maxLength": 200,
		},
		"description": bson.M{
			"bsonType":  "string",
			"maxLength": 5000,
		},
		"price": bson.M{
			"bsonType":         bson.A{"double", "int", "long", "decimal"},
			"exclusiveMinimum": 0,
		},
		"location":     bson.M{"bsonType": "string", "maxLength": 200},
		"location_key": bson.M{"bsonType": "string", "maxLength": 200},
		"availability": bson.M{
			"bsonType": "array",
			"minItems": 1,
			"items": bson.M{
				"bsonType": "object",
				"required": []string{"start_date", "end_date"},
				"properties": bson.M{
					"start_date": date,
					"end_date":   date,
				},
			},
		},
		"amenities":  stringSet,
		"images":     stringSet,
		"created_at": date,
		"updated_at": date,
	},
)
