package model

import "time"

type Listing struct {
	ID           string      `json:"listingId" bson:"_id"`
	VendorID     string      `json:"vendorId" bson:"vendor_id"`
	Title        string      `json:"title" bson:"title"`
	Description  string      `json:"description" bson:"description"`
	Price        float64     `json:"price" bson:"price"`
	Location     string      `json:"location,omitempty" bson:"location,omitempty"`
	LocationKey  string      `json:"-" bson:"location_key,omitempty"`
	Availability []DateRange `json:"availability" bson:"availability"`
	Amenities    []string    `json:"amenities" bson:"amenities"`
	Images       []string    `json:"images" bson:"images"`
	CreatedAt    time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" bson:"updated_at"`
}

// ListingInput is the body of create and full-replace requests.
type ListingInput struct {
	Title        string       `json:"title" validate:"required,min=3,max=200"`
	Description  string       `json:"description" validate:"required,max=5000"`
	Price        *float64     `json:"price" validate:"required,gt=0"`
	Location     string       `json:"location" validate:"omitempty,max=200"`
	Availability []DateWindow `json:"availability" validate:"required,min=1,max=100,dive"`
	Amenities    []string     `json:"amenities" validate:"required,max=50,dive,required,max=100"`
	Images       []string     `json:"images" validate:"required,max=30,dive,required,url"`
}

// ListingView is the public projection returned by reads and search.
type ListingView struct {
	ListingID    string      `json:"listingId"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	Location     string      `json:"location,omitempty"`
	Availability []DateRange `json:"availability"`
	Amenities    []string    `json:"amenities"`
	Images       []string    `json:"images"`
}

func (l *Listing) View() ListingView {
	return ListingView{
		ListingID:    l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		Location:     l.Location,
		Availability: l.Availability,
		Amenities:    l.Amenities,
		Images:       l.Images,
	}
}

// ListingSearch holds parsed search criteria; nil/empty fields do not filter.
type ListingSearch struct {
	Location  string
	Dates     *DateRange
	MinPrice  *float64
	MaxPrice  *float64
	Amenities []string
	Page      int
	Limit     int
}

type ListingSearchResult struct {
	Listings   []ListingView `json:"listings"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

// ListingSearchQuery is the raw query string of a search request.
type ListingSearchQuery struct {
	Location   string
	StartDate  string
	EndDate    string
	PriceRange string
	Amenities  string
	Page       int
	Limit      int
}
