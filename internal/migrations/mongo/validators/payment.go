package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = schema(
	[]string{"_id", "amount_cents", "currency", "status", "created_at"},
	bson.M{
		"_id":          idString,
		"user_id":      bson.M{"bsonType": "string", "maxLength": 255},
		"amount_cents": integer,
		"currency": bson.M{
			"bsonType": "string",
			"pattern":  "^[a-z]{3}$",
		},
		"status": bson.M{
			"enum": bson.A{"pending", "succeeded", "failed", "completed"},
		},
		"processor_session_id": bson.M{"bsonType": "string"},
		"processor_intent_id":  bson.M{"bsonType": "string"},
		"payment_date":         date,
		"created_at":           date,
		"updated_at":           date,
	},
)
