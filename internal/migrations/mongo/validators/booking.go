package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = schema(
	[]string{"_id", "listing_id", "user_id", "start_date", "end_date", "payment_id", "created_at"},
	bson.M{
		"_id":        idString,
		"listing_id": idString,
		"user_id":    idString,
		"start_date": date,
		"end_date":   date,
		"payment_id": idString,
		"created_at": date,
	},
)

var ListingLockValidator = schema(
	[]string{"_id", "expires_at"},
	bson.M{
		"_id":        bson.M{"bsonType": "string", "pattern": "^listing_lock_"},
		"expires_at": date,
	},
)
