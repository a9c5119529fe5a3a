package validators

import "go.mongodb.org/mongo-driver/bson"

var OutboxValidator = schema(
	[]string{"_id", "event_type", "payload", "status", "attempts", "created_at"},
	bson.M{
		"_id":        idString,
		"event_type": bson.M{"bsonType": "string"},
		"key":        bson.M{"bsonType": "string"},
		"payload": bson.M{
			"bsonType": "object",
			"required": []string{"kind", "to"},
		},
		"status": bson.M{
			"enum": bson.A{"pending", "published", "failed"},
		},
		"attempts":   integer,
		"created_at": date,
	},
)

var ProcessedEventValidator = schema(
	[]string{"_id", "source", "event_id", "processed_at"},
	bson.M{
		"_id":          idString,
		"source":       bson.M{"bsonType": "string"},
		"event_id":     bson.M{"bsonType": "string"},
		"processed_at": date,
	},
)
