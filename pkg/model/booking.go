package model

import "time"

type Booking struct {
	ID        string    `json:"bookingId" bson:"_id"`
	ListingID string    `json:"listingId" bson:"listing_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	StartDate time.Time `json:"startDate" bson:"start_date"`
	EndDate   time.Time `json:"endDate" bson:"end_date"`
	PaymentID string    `json:"paymentId" bson:"payment_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

type BookingRequest struct {
	ListingID string `json:"listingId" validate:"required,max=64"`
	UserID    string `json:"userId" validate:"required,max=64"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required,max=255"`
}

// ListingLock is an advisory lock serializing booking creation per listing.
// A TTL index on expires_at reaps locks left behind by crashed requests.
type ListingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
