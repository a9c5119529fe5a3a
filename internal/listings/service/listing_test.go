package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	listingserrors "marketplace/internal/listings/errors"
	"marketplace/internal/listings/validator"
	"marketplace/pkg/config"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"
)

type mockListingRepository struct {
	createFunc      func(ctx context.Context, listing *model.Listing) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Listing, error)
	replaceFunc     func(ctx context.Context, id, vendorID string, listing *model.Listing) error
	deleteFunc      func(ctx context.Context, id, vendorID string) error
	searchFunc      func(ctx context.Context, search *model.ListingSearch) ([]*model.Listing, error)
	countSearchFunc func(ctx context.Context, search *model.ListingSearch) (int64, error)
}

func (m *mockListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, listing)
	}
	return nil
}

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, listingserrors.ErrNotFound
}

func (m *mockListingRepository) FindAll(ctx context.Context, vendorID string, limit int, offset int64) ([]*model.Listing, error) {
	return []*model.Listing{{ID: "l-1", VendorID: vendorID}}, nil
}

func (m *mockListingRepository) Count(ctx context.Context, vendorID string) (int64, error) {
	return 1, nil
}

func (m *mockListingRepository) Replace(ctx context.Context, id, vendorID string, listing *model.Listing) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, id, vendorID, listing)
	}
	return nil
}

func (m *mockListingRepository) Delete(ctx context.Context, id, vendorID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id, vendorID)
	}
	return nil
}

func (m *mockListingRepository) Search(ctx context.Context, search *model.ListingSearch) ([]*model.Listing, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, search)
	}
	return []*model.Listing{}, nil
}

func (m *mockListingRepository) CountSearch(ctx context.Context, search *model.ListingSearch) (int64, error) {
	if m.countSearchFunc != nil {
		return m.countSearchFunc(ctx, search)
	}
	return 0, nil
}

func newService(repo *mockListingRepository) ListingService {
	log := logger.Discard()
	return NewListingService(repo, validator.NewListingValidator(log), &config.Config{Log: log})
}

func price(v float64) *float64 { return &v }

func validInput() *model.ListingInput {
	return &model.ListingInput{
		Title:       "  Sunny   Loft ",
		Description: "Two rooms near the park",
		Price:       price(120),
		Location:    " New  York ",
		Availability: []model.DateWindow{
			{StartDate: "2025-01-01", EndDate: "2025-01-31"},
		},
		Amenities: []string{"WiFi", " Pool", "wifi"},
		Images:    []string{"https://cdn.example.com/a.jpg"},
	}
}

func TestCreate_NormalizesAndStores(t *testing.T) {
	var stored *model.Listing
	svc := newService(&mockListingRepository{
		createFunc: func(ctx context.Context, listing *model.Listing) error {
			stored = listing
			return nil
		},
	})

	listing, err := svc.Create(context.Background(), "vendor-1", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if listing.ID == "" || listing.VendorID != "vendor-1" {
		t.Errorf("expected generated id and vendor from token, got %+v", listing)
	}
	if stored.Title != "Sunny Loft" {
		t.Errorf("title not normalized: %q", stored.Title)
	}
	if stored.LocationKey != "new york" || stored.Location != "New York" {
		t.Errorf("unexpected location %q / key %q", stored.Location, stored.LocationKey)
	}
	if len(stored.Amenities) != 2 || stored.Amenities[0] != "wifi" || stored.Amenities[1] != "pool" {
		t.Errorf("amenities not normalized: %v", stored.Amenities)
	}
	if len(stored.Availability) != 1 || stored.Availability[0].Start.Day() != 1 || stored.Availability[0].End.Day() != 31 {
		t.Errorf("unexpected availability %v", stored.Availability)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newService(&mockListingRepository{})

	tests := []struct {
		name    string
		mutate  func(in *model.ListingInput)
		wantMsg string
	}{
		{"missing title", func(in *model.ListingInput) { in.Title = "" }, validation.MissingRequiredFields},
		{"missing price", func(in *model.ListingInput) { in.Price = nil }, validation.MissingRequiredFields},
		{"missing images", func(in *model.ListingInput) { in.Images = nil }, validation.MissingRequiredFields},
		{"zero price", func(in *model.ListingInput) { in.Price = price(0) }, "Invalid listing"},
		{"bad image url", func(in *model.ListingInput) { in.Images = []string{"not a url"} }, "Invalid listing"},
		{"reversed window", func(in *model.ListingInput) {
			in.Availability = []model.DateWindow{{StartDate: "2025-02-10", EndDate: "2025-02-01"}}
		}, "Invalid availability"},
		{"malformed date", func(in *model.ListingInput) {
			in.Availability = []model.DateWindow{{StartDate: "tomorrow", EndDate: "2025-02-01"}}
		}, "Invalid availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			_, err := svc.Create(context.Background(), "vendor-1", in)
			appErr := apperrors.AsAppError(err)
			if appErr.StatusCode() != http.StatusBadRequest || appErr.Message != tt.wantMsg {
				t.Errorf("got %d %q, want 400 %q", appErr.StatusCode(), appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestReplace_OnlyOwner(t *testing.T) {
	svc := newService(&mockListingRepository{
		replaceFunc: func(ctx context.Context, id, vendorID string, listing *model.Listing) error {
			if vendorID != "owner" {
				return listingserrors.ErrNotFound
			}
			return nil
		},
	})

	if _, err := svc.Replace(context.Background(), "owner", "l-1", validInput()); err != nil {
		t.Fatalf("owner replace: %v", err)
	}

	_, err := svc.Replace(context.Background(), "intruder", "l-1", validInput())
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != http.StatusNotFound {
		t.Errorf("expected 404 for foreign listing, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	svc := newService(&mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			if id == "l-1" {
				return &model.Listing{ID: "l-1", VendorID: "v", Title: "Loft"}, nil
			}
			return nil, listingserrors.ErrNotFound
		},
	})

	view, err := svc.GetByID(context.Background(), "l-1")
	if err != nil || view.ListingID != "l-1" || view.Title != "Loft" {
		t.Fatalf("unexpected result %+v %v", view, err)
	}

	_, err = svc.GetByID(context.Background(), "missing")
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestDelete_StorageError(t *testing.T) {
	svc := newService(&mockListingRepository{
		deleteFunc: func(ctx context.Context, id, vendorID string) error {
			return errors.New("connection reset")
		},
	})
	err := svc.Delete(context.Background(), "v", "l-1")
	if appErr := apperrors.AsAppError(err); appErr.StatusCode() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", err)
	}
}

func TestSearch_ParsesCriteria(t *testing.T) {
	var got *model.ListingSearch
	svc := newService(&mockListingRepository{
		searchFunc: func(ctx context.Context, search *model.ListingSearch) ([]*model.Listing, error) {
			got = search
			return []*model.Listing{{ID: "l-1"}, {ID: "l-2"}}, nil
		},
		countSearchFunc: func(ctx context.Context, search *model.ListingSearch) (int64, error) {
			return 21, nil
		},
	})

	result, err := svc.Search(context.Background(), &model.ListingSearchQuery{
		Location:   "NEW York",
		StartDate:  "2025-01-10",
		EndDate:    "2025-01-12",
		PriceRange: "50-150.5",
		Amenities:  "WiFi, pool,,",
		Page:       2,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if got.Location != "new york" {
		t.Errorf("location not normalized: %q", got.Location)
	}
	if got.Dates == nil || got.Dates.Start.Day() != 10 || got.Dates.End.Day() != 12 {
		t.Errorf("unexpected dates %+v", got.Dates)
	}
	if *got.MinPrice != 50 || *got.MaxPrice != 150.5 {
		t.Errorf("unexpected price range %v-%v", *got.MinPrice, *got.MaxPrice)
	}
	if len(got.Amenities) != 2 || got.Amenities[0] != "wifi" || got.Amenities[1] != "pool" {
		t.Errorf("unexpected amenities %v", got.Amenities)
	}
	if result.Total != 21 || result.Page != 2 || result.TotalPages != 3 || len(result.Listings) != 2 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSearch_SingleDateIgnored(t *testing.T) {
	var got *model.ListingSearch
	svc := newService(&mockListingRepository{
		searchFunc: func(ctx context.Context, search *model.ListingSearch) ([]*model.Listing, error) {
			got = search
			return nil, nil
		},
	})
	if _, err := svc.Search(context.Background(), &model.ListingSearchQuery{StartDate: "2025-01-10"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Dates != nil {
		t.Error("a lone startDate must not filter")
	}
	if got.Page != 1 || got.Limit != config.DefaultPaginationPageSize {
		t.Errorf("unexpected paging %d/%d", got.Page, got.Limit)
	}
}

func TestSearch_InvalidCriteria(t *testing.T) {
	svc := newService(&mockListingRepository{})

	tests := []struct {
		name  string
		query model.ListingSearchQuery
	}{
		{"price range without dash", model.ListingSearchQuery{PriceRange: "100"}},
		{"price range not numeric", model.ListingSearchQuery{PriceRange: "cheap-expensive"}},
		{"min above max", model.ListingSearchQuery{PriceRange: "200-100"}},
		{"reversed dates", model.ListingSearchQuery{StartDate: "2025-01-12", EndDate: "2025-01-10"}},
		{"malformed date", model.ListingSearchQuery{StartDate: "soon", EndDate: "2025-01-10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), &tt.query)
			if appErr := apperrors.AsAppError(err); appErr.StatusCode() != http.StatusBadRequest {
				t.Errorf("expected 400, got %v", err)
			}
		})
	}
}

func TestParsePriceRange(t *testing.T) {
	lo, hi, err := parsePriceRange(" 10 - 20 ")
	if err != nil || lo != 10 || hi != 20 {
		t.Errorf("got %v %v %v", lo, hi, err)
	}
	if _, _, err := parsePriceRange("10-10"); err != nil {
		t.Errorf("equal bounds should be valid: %v", err)
	}
	if _, _, err := parsePriceRange("10-NaN"); !errors.Is(err, listingserrors.ErrInvalidPriceRange) {
		t.Errorf("expected ErrInvalidPriceRange, got %v", err)
	}
}
