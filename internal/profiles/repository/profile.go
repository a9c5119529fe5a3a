package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	profileserrors "marketplace/internal/profiles/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BuyerProfilesCollection   = "Buyer_profiles"
	VendorProfilesCollection  = "Vendor_profiles"
	BuyerDashboardsCollection = "Buyer_dashboards"
)

type ProfileRepository interface {
	UpsertBuyer(ctx context.Context, profile *model.BuyerProfile) error
	UpsertVendor(ctx context.Context, profile *model.VendorProfile) error
	FindDashboard(ctx context.Context, userID string) (*model.BuyerDashboard, error)
	// RecordPayment adds a settled payment to the buyer's running totals,
	// creating the dashboard on first use.
	RecordPayment(ctx context.Context, userID string, amountCents int64) error
}

type mongoProfileRepository struct {
	cfg        *config.Config
	buyers     *mongo.Collection
	vendors    *mongo.Collection
	dashboards *mongo.Collection
}

func NewMongoProfileRepository(cfg *config.Config) ProfileRepository {
	db := cfg.Database()
	return &mongoProfileRepository{
		cfg:        cfg,
		buyers:     db.Collection(BuyerProfilesCollection),
		vendors:    db.Collection(VendorProfilesCollection),
		dashboards: db.Collection(BuyerDashboardsCollection),
	}
}

func (r *mongoProfileRepository) UpsertBuyer(ctx context.Context, profile *model.BuyerProfile) error {
	profile.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return r.upsert(ctx, r.buyers, profile.UserID, bson.M{
		"payment_details": profile.PaymentDetails,
		"updated_at":      profile.UpdatedAt,
	})
}

func (r *mongoProfileRepository) UpsertVendor(ctx context.Context, profile *model.VendorProfile) error {
	profile.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	return r.upsert(ctx, r.vendors, profile.UserID, bson.M{
		"business_name": profile.BusinessName,
		"contact_info":  profile.ContactInfo,
		"logo_url":      profile.LogoURL,
		"updated_at":    profile.UpdatedAt,
	})
}

func (r *mongoProfileRepository) upsert(ctx context.Context, collection *mongo.Collection, id string, fields bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", collection.Name(), err)
	}
	return nil
}

func (r *mongoProfileRepository) FindDashboard(ctx context.Context, userID string) (*model.BuyerDashboard, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var dashboard model.BuyerDashboard
	if err := r.dashboards.FindOne(ctx, bson.M{"_id": userID}).Decode(&dashboard); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, profileserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dashboard: %w", err)
	}
	return dashboard.FillAmount(), nil
}

func (r *mongoProfileRepository) RecordPayment(ctx context.Context, userID string, amountCents int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.dashboards.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$inc": bson.M{"total_spent_cents": amountCents, "total_bookings": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update dashboard: %w", err)
	}
	return nil
}
