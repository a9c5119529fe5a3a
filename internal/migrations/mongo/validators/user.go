package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = schema(
	[]string{"_id", "email", "role", "password_hash"},
	bson.M{
		"_id": idString,
		"email": bson.M{
			"bsonType":  "string",
			"maxLength": 254,
		},
		"role": bson.M{
			"enum": bson.A{"buyer", "vendor", "admin"},
		},
		"password_hash":  bson.M{"bsonType": "string"},
		"email_verified": bson.M{"bsonType": "bool"},
	},
)

var UserTokenValidator = schema(
	[]string{"_id", "user_id", "purpose", "expires_at"},
	bson.M{
		"_id":     bson.M{"bsonType": "string", "pattern": "^[0-9a-f]{64}$"},
		"user_id": idString,
		"purpose": bson.M{
			"enum": bson.A{"password_reset", "email_verification"},
		},
		"expires_at": date,
	},
)

var BuyerDashboardValidator = schema(
	[]string{"_id"},
	bson.M{
		"_id":               idString,
		"total_spent_cents": integer,
		"total_bookings":    integer,
	},
)

var VendorProfileValidator = schema(
	[]string{"_id", "business_name", "contact_info", "logo_url"},
	bson.M{
		"_id":           idString,
		"business_name": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
		"contact_info":  bson.M{"bsonType": "string", "maxLength": 200},
		"logo_url":      bson.M{"bsonType": "string"},
	},
)

var BuyerProfileValidator = schema(
	[]string{"_id", "payment_details"},
	bson.M{
		"_id":             idString,
		"payment_details": bson.M{"bsonType": "object"},
	},
)
