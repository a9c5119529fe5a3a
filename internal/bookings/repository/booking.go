package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "marketplace/internal/bookings/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// FindOverlapping returns bookings on the listing whose inclusive date
	// range intersects dates.
	FindOverlapping(ctx context.Context, listingID string, dates model.DateRange) ([]*model.Booking, error)
	ExistsForPayment(ctx context.Context, paymentID string) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, listingID string, dates model.DateRange) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, OverlapFilter(listingID, dates), options.Find().SetLimit(1))
}

// OverlapFilter matches bookings where existing.start <= end and
// existing.end >= start. Touching ranges overlap.
func OverlapFilter(listingID string, dates model.DateRange) bson.M {
	return bson.M{
		"listing_id": listingID,
		"start_date": bson.M{"$lte": dates.End},
		"end_date":   bson.M{"$gte": dates.Start},
	}
}

func (r *mongoBookingRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"payment_id": paymentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check payment usage: %w", err)
	}
	return count > 0, nil
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
