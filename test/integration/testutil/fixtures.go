package testutil

import "marketplace/pkg/model"

type ListingBuilder struct {
	input model.ListingInput
}

func NewListingBuilder() *ListingBuilder {
	price := 120.0
	return &ListingBuilder{
		input: model.ListingInput{
			Title:       "Lakeside Cabin",
			Description: "Quiet two-bedroom cabin with a private dock",
			Price:       &price,
			Location:    "Lake Tahoe",
			Availability: []model.DateWindow{
				{StartDate: "2030-06-01", EndDate: "2030-06-30"},
			},
			Amenities: []string{"wifi", "parking"},
			Images:    []string{"https://example.com/cabin.jpg"},
		},
	}
}

func (b *ListingBuilder) WithTitle(title string) *ListingBuilder {
	b.input.Title = title
	return b
}

func (b *ListingBuilder) WithPrice(price float64) *ListingBuilder {
	b.input.Price = &price
	return b
}

func (b *ListingBuilder) WithLocation(location string) *ListingBuilder {
	b.input.Location = location
	return b
}

func (b *ListingBuilder) WithAvailability(windows ...model.DateWindow) *ListingBuilder {
	b.input.Availability = windows
	return b
}

func (b *ListingBuilder) WithAmenities(amenities ...string) *ListingBuilder {
	b.input.Amenities = amenities
	return b
}

func (b *ListingBuilder) Build() model.ListingInput {
	return b.input
}

func ValidListing() model.ListingInput {
	return NewListingBuilder().Build()
}

func MissingPriceListing() model.ListingInput {
	input := NewListingBuilder().Build()
	input.Price = nil
	return input
}
