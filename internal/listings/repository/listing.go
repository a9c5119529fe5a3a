package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	listingserrors "marketplace/internal/listings/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Listings"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindAll(ctx context.Context, vendorID string, limit int, offset int64) ([]*model.Listing, error)
	Count(ctx context.Context, vendorID string) (int64, error)
	Replace(ctx context.Context, id, vendorID string, listing *model.Listing) error
	Delete(ctx context.Context, id, vendorID string) error
	Search(ctx context.Context, search *model.ListingSearch) ([]*model.Listing, error)
	CountSearch(ctx context.Context, search *model.ListingSearch) (int64, error)
}

type mongoListingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	return &mongoListingRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
	}
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	listing.CreatedAt = now
	listing.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, listing); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var listing model.Listing
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindAll(ctx context.Context, vendorID string, limit int, offset int64) ([]*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, vendorFilter(vendorID), opts)
}

func (r *mongoListingRepository) Count(ctx context.Context, vendorID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, vendorFilter(vendorID))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) Replace(ctx context.Context, id, vendorID string, listing *model.Listing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	listing.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{"$set": bson.M{
		"title":        listing.Title,
		"description":  listing.Description,
		"price":        listing.Price,
		"location":     listing.Location,
		"location_key": listing.LocationKey,
		"availability": listing.Availability,
		"amenities":    listing.Amenities,
		"images":       listing.Images,
		"updated_at":   listing.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "vendor_id": vendorID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.MatchedCount == 0 {
		return listingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id, vendorID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "vendor_id": vendorID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return listingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoListingRepository) Search(ctx context.Context, search *model.ListingSearch) ([]*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(search.Page-1) * int64(search.Limit)).
		SetLimit(int64(search.Limit))

	return r.find(ctx, SearchFilter(search), opts)
}

func (r *mongoListingRepository) CountSearch(ctx context.Context, search *model.ListingSearch) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, SearchFilter(search))
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

func (r *mongoListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Listing, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []*model.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

func vendorFilter(vendorID string) bson.M {
	if vendorID == "" {
		return bson.M{}
	}
	return bson.M{"vendor_id": vendorID}
}

// SearchFilter translates search criteria into a query. A date range matches
// when a single availability window contains all of it.
func SearchFilter(search *model.ListingSearch) bson.M {
	filter := bson.M{}

	if search.Location != "" {
		filter["location_key"] = search.Location
	}

	if search.Dates != nil {
		filter["availability"] = bson.M{"$elemMatch": bson.M{
			"start_date": bson.M{"$lte": search.Dates.Start},
			"end_date":   bson.M{"$gte": search.Dates.End},
		}}
	}

	price := bson.M{}
	if search.MinPrice != nil {
		price["$gte"] = *search.MinPrice
	}
	if search.MaxPrice != nil {
		price["$lte"] = *search.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if len(search.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": search.Amenities}
	}

	return filter
}
