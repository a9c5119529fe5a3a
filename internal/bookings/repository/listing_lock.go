package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "marketplace/internal/bookings/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LocksCollectionName = "Listing_locks"

// ListingLockRepository stores advisory locks keyed by a unique _id.
type ListingLockRepository interface {
	// Acquire returns ErrLockHeld when another request holds the lock.
	Acquire(ctx context.Context, lockID string, ttl time.Duration) error
	Release(ctx context.Context, lockID string) error
}

type mongoListingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewListingLockRepository(cfg *config.Config) ListingLockRepository {
	return &mongoListingLockRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(LocksCollectionName),
	}
}

func LockID(listingID string) string {
	return "listing_lock_" + listingID
}

func (r *mongoListingLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, model.ListingLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (r *mongoListingLockRepository) Release(ctx context.Context, lockID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID}); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
