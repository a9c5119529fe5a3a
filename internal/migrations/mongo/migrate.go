package mongo

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/migrations/mongo/validators"
	"marketplace/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const processedEventsRetention = 30 * 24 * time.Hour

// Collection is the desired state of one collection.
type Collection struct {
	Name      string
	Validator bson.M
	Indexes   []mongo.IndexModel
}

func expireAt(after time.Duration) *options.IndexOptions {
	return options.Index().SetExpireAfterSeconds(int32(after.Seconds()))
}

// Collections lists every collection the services use. Order is stable so
// status output is predictable.
func Collections() []Collection {
	return []Collection{
		{
			Name:      "Listings",
			Validator: validators.ListingValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "vendor_id", Value: 1}, {Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "location_key", Value: 1}, {Key: "price", Value: 1}}},
				{Keys: bson.D{
					{Key: "availability.start_date", Value: 1},
					{Key: "availability.end_date", Value: 1},
				}},
				{Keys: bson.D{{Key: "amenities", Value: 1}}},
			},
		},
		{
			Name:      "Bookings",
			Validator: validators.BookingValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{
					{Key: "listing_id", Value: 1},
					{Key: "start_date", Value: 1},
					{Key: "end_date", Value: 1},
				}},
				{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
				{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			Name:      "Listing_locks",
			Validator: validators.ListingLockValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: expireAt(0)},
			},
		},
		{
			Name:      "Payments",
			Validator: validators.PaymentValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "user_id", Value: 1}}},
				{
					Keys:    bson.D{{Key: "processor_intent_id", Value: 1}},
					Options: options.Index().SetUnique(true).SetSparse(true),
				},
				{Keys: bson.D{{Key: "processor_session_id", Value: 1}}},
			},
		},
		{
			Name:      "Users",
			Validator: validators.UserValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			},
		},
		{
			Name:      "User_tokens",
			Validator: validators.UserTokenValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: expireAt(0)},
				{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "purpose", Value: 1}}},
			},
		},
		{
			Name:      "Buyer_profiles",
			Validator: validators.BuyerProfileValidator,
		},
		{
			Name:      "Vendor_profiles",
			Validator: validators.VendorProfileValidator,
		},
		{
			Name:      "Buyer_dashboards",
			Validator: validators.BuyerDashboardValidator,
		},
		{
			Name:      "Processed_events",
			Validator: validators.ProcessedEventValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "processed_at", Value: 1}}, Options: expireAt(processedEventsRetention)},
			},
		},
		{
			Name:      "Outbox",
			Validator: validators.OutboxValidator,
			Indexes: []mongo.IndexModel{
				{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
			},
		},
	}
}

// Run creates missing collections, refreshes validators on existing ones and
// ensures indexes. It is safe to run repeatedly.
func Run(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, c := range Collections() {
		if err := ensureCollection(ctx, db, c, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", c.Name, err)
		}
		if len(c.Indexes) == 0 {
			continue
		}
		if _, err := db.Collection(c.Name).Indexes().CreateMany(ctx, c.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", c.Name, err)
		}
		log.Info("Ensured indexes", "collection", c.Name, "count", len(c.Indexes))
	}

	log.Info("All migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, c Collection, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: c.Name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", c.Name)
		return db.CreateCollection(ctx, c.Name, options.CreateCollection().SetValidator(c.Validator))
	}

	command := bson.D{
		{Key: "collMod", Value: c.Name},
		{Key: "validator", Value: c.Validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", c.Name, "error", err)
	}
	return nil
}

type CollectionStatus struct {
	Name    string
	Exists  bool
	Indexes []string
}

func Status(ctx context.Context, db *mongo.Database) ([]CollectionStatus, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	statuses := make([]CollectionStatus, 0, len(Collections()))
	for _, c := range Collections() {
		status := CollectionStatus{Name: c.Name, Exists: present[c.Name]}
		if status.Exists {
			specs, err := db.Collection(c.Name).Indexes().ListSpecifications(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list indexes for %s: %w", c.Name, err)
			}
			for _, spec := range specs {
				status.Indexes = append(status.Indexes, spec.Name)
			}
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
