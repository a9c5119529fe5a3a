package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	listingserrors "marketplace/internal/listings/errors"
	"marketplace/internal/listings/repository"
	"marketplace/internal/listings/validator"
	"marketplace/pkg/config"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/model"
	"marketplace/pkg/sanitizer"
	"marketplace/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type ListingService interface {
	Create(ctx context.Context, vendorID string, input *model.ListingInput) (*model.Listing, error)
	Replace(ctx context.Context, vendorID, id string, input *model.ListingInput) (*model.Listing, error)
	GetByID(ctx context.Context, id string) (*model.ListingView, error)
	GetAll(ctx context.Context, vendorID string, limit int, offset int64) ([]model.ListingView, int64, error)
	Delete(ctx context.Context, vendorID, id string) error
	Search(ctx context.Context, query *model.ListingSearchQuery) (*model.ListingSearchResult, error)
}

type listingService struct {
	repo      repository.ListingRepository
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewListingService(repo repository.ListingRepository, validator *validator.ListingValidator, cfg *config.Config) ListingService {
	return &listingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *listingService) Create(ctx context.Context, vendorID string, input *model.ListingInput) (*model.Listing, error) {
	listing, err := s.build(input)
	if err != nil {
		return nil, err
	}
	listing.ID = uuid.NewString()
	listing.VendorID = vendorID

	if err := s.repo.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create listing", "vendor_id", vendorID, "error", err)
		return nil, apperrors.Internal("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created successfully", "id", listing.ID, "vendor_id", vendorID)
	return listing, nil
}

func (s *listingService) Replace(ctx context.Context, vendorID, id string, input *model.ListingInput) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Invalid listing ID")
	}
	listing, err := s.build(input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Replace(ctx, id, vendorID, listing); err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "Listing not found or not updated", http.StatusNotFound)
		}
		s.cfg.Log.Error("Failed to update listing", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update listing", err)
	}

	listing.ID = id
	listing.VendorID = vendorID
	s.cfg.Log.Info("Listing updated successfully", "id", id, "vendor_id", vendorID)
	return listing, nil
}

func (s *listingService) GetByID(ctx context.Context, id string) (*model.ListingView, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Invalid listing ID")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", id)
		}
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}

	view := listing.View()
	return &view, nil
}

func (s *listingService) GetAll(ctx context.Context, vendorID string, limit int, offset int64) ([]model.ListingView, int64, error) {
	var (
		count    int64
		listings []*model.Listing
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if count, err = s.repo.Count(gctx, vendorID); err != nil {
			s.cfg.Log.Error("Failed to count listings", "vendor_id", vendorID, "error", err)
			return apperrors.Internal("Failed to count listings", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if listings, err = s.repo.FindAll(gctx, vendorID, limit, offset); err != nil {
			s.cfg.Log.Error("Failed to list listings", "vendor_id", vendorID, "error", err)
			return apperrors.Internal("Failed to retrieve listings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return views(listings), count, nil
}

func (s *listingService) Delete(ctx context.Context, vendorID, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Invalid listing ID")
	}

	if err := s.repo.Delete(ctx, id, vendorID); err != nil {
		if errors.Is(err, listingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Listing", id)
		}
		return apperrors.Internal("Failed to delete listing", err)
	}

	s.cfg.Log.Info("Listing deleted successfully", "id", id, "vendor_id", vendorID)
	return nil
}

func (s *listingService) Search(ctx context.Context, query *model.ListingSearchQuery) (*model.ListingSearchResult, error) {
	search, err := parseSearch(query)
	if err != nil {
		return nil, err
	}

	var (
		total    int64
		listings []*model.Listing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if total, err = s.repo.CountSearch(gctx, search); err != nil {
			s.cfg.Log.Error("Failed to count search results", "error", err)
			return apperrors.Internal("Failed to search listings", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if listings, err = s.repo.Search(gctx, search); err != nil {
			s.cfg.Log.Error("Failed to search listings", "error", err)
			return apperrors.Internal("Failed to search listings", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cfg.Log.Debug("Listing search completed",
		"location", search.Location,
		"amenities", search.Amenities,
		"count", len(listings),
		"total", total,
	)
	return &model.ListingSearchResult{
		Listings:   views(listings),
		Total:      total,
		Page:       search.Page,
		TotalPages: int(math.Ceil(float64(total) / float64(search.Limit))),
	}, nil
}

// --- Helpers ---

func (s *listingService) build(input *model.ListingInput) (*model.Listing, error) {
	s.sanitize(input)
	if err := s.validator.Validate(input); err != nil {
		return nil, validation.ToAppError(err, "Invalid listing")
	}

	availability, err := validator.ParseAvailability(input.Availability)
	if err != nil {
		return nil, apperrors.Validation("Invalid availability", map[string]any{"error": err.Error()})
	}

	return &model.Listing{
		Title:        input.Title,
		Description:  input.Description,
		Price:        *input.Price,
		Location:     input.Location,
		LocationKey:  sanitizer.NormalizeKey(input.Location),
		Availability: availability,
		Amenities:    input.Amenities,
		Images:       input.Images,
	}, nil
}

func (s *listingService) sanitize(input *model.ListingInput) {
	input.Title = sanitizer.TrimAndNormalize(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = sanitizer.TrimAndNormalize(input.Location)
	if input.Amenities != nil {
		input.Amenities = sanitizer.NormalizeAmenities(input.Amenities)
	}
	if input.Images != nil {
		input.Images = sanitizer.NormalizeURLs(input.Images)
	}
}

func parseSearch(query *model.ListingSearchQuery) (*model.ListingSearch, error) {
	search := &model.ListingSearch{
		Location: sanitizer.NormalizeKey(query.Location),
		Page:     max(query.Page, 1),
		Limit:    config.NormalizePaginationLimit(query.Limit),
	}

	// a lone startDate or endDate does not filter
	if query.StartDate != "" && query.EndDate != "" {
		dates, err := model.ParseDateRange(query.StartDate, query.EndDate)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid date range: " + err.Error())
		}
		search.Dates = &dates
	}

	if query.PriceRange != "" {
		minPrice, maxPrice, err := parsePriceRange(query.PriceRange)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid priceRange: expected min-max")
		}
		search.MinPrice = &minPrice
		search.MaxPrice = &maxPrice
	}

	if query.Amenities != "" {
		search.Amenities = sanitizer.NormalizeAmenities(strings.Split(query.Amenities, ","))
	}

	return search, nil
}

func parsePriceRange(value string) (float64, float64, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok {
		return 0, 0, listingserrors.ErrInvalidPriceRange
	}
	minPrice, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return 0, 0, listingserrors.ErrInvalidPriceRange
	}
	maxPrice, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return 0, 0, listingserrors.ErrInvalidPriceRange
	}
	if minPrice < 0 || minPrice > maxPrice || math.IsNaN(minPrice) || math.IsNaN(maxPrice) || math.IsInf(maxPrice, 0) {
		return 0, 0, listingserrors.ErrInvalidPriceRange
	}
	return minPrice, maxPrice, nil
}

func views(listings []*model.Listing) []model.ListingView {
	out := make([]model.ListingView, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.View())
	}
	return out
}
