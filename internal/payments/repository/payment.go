package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentserrors "marketplace/internal/payments/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Payments"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id string) (*model.Payment, error)
	// FindForIntent looks a payment up by our id first, then by the
	// processor's intent id.
	FindForIntent(ctx context.Context, paymentID, intentID string) (*model.Payment, error)
	SetSession(ctx context.Context, id, sessionID string) error
	MarkSucceeded(ctx context.Context, id, intentID string, amountCents int64, paidAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	payment.CreatedAt = now
	payment.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *mongoPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoPaymentRepository) FindForIntent(ctx context.Context, paymentID, intentID string) (*model.Payment, error) {
	if paymentID != "" {
		payment, err := r.findOne(ctx, bson.M{"_id": paymentID})
		if err == nil || !errors.Is(err, paymentserrors.ErrNotFound) {
			return payment, err
		}
	}
	if intentID == "" {
		return nil, paymentserrors.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"processor_intent_id": intentID},
		bson.M{"_id": intentID},
	}})
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M) (*model.Payment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var payment model.Payment
	if err := r.collection.FindOne(ctx, filter).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return payment.FillAmount(), nil
}

func (r *mongoPaymentRepository) SetSession(ctx context.Context, id, sessionID string) error {
	return r.update(ctx, id, bson.M{"processor_session_id": sessionID})
}

func (r *mongoPaymentRepository) MarkSucceeded(ctx context.Context, id, intentID string, amountCents int64, paidAt time.Time) error {
	return r.update(ctx, id, bson.M{
		"status":              model.PaymentStatusSucceeded,
		"processor_intent_id": intentID,
		"amount_cents":        amountCents,
		"payment_date":        paidAt,
	})
}

func (r *mongoPaymentRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return r.update(ctx, id, bson.M{
		"status":         model.PaymentStatusFailed,
		"failure_reason": reason,
	})
}

func (r *mongoPaymentRepository) update(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrNotFound
	}
	return nil
}

func (r *mongoPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
