package validators

import "go.mongodb.org/mongo-driver/bson"

var (
	idString  = bson.M{"bsonType": "string", "minLength": 1, "maxLength": 255}
	date      = bson.M{"bsonType": "date"}
	integer   = bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0}
	stringSet = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}}
)

func schema(required []string, properties bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":             "object",
			"required":             required,
			"additionalProperties": true,
			"properties":           properties,
		},
	}
}
