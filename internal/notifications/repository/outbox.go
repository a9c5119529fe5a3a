package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Outbox"

var ErrNotFound = errors.New("outbox message not found")

// OutboxRepository stores notifications written alongside a business change
// until the relay hands them to Kafka.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg *model.OutboxMessage) error
	FetchPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string) error
	// RecordFailure bumps the attempt counter and reports whether the message
	// was moved to the failed state.
	RecordFailure(ctx context.Context, id, reason string, maxAttempts int) (bool, error)
}

type mongoOutboxRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoOutboxRepository(cfg *config.Config) OutboxRepository {
	return &mongoOutboxRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
	}
}

// NewEmailMessage wraps n in a pending outbox row keyed by recipient.
func NewEmailMessage(n model.EmailNotification) *model.OutboxMessage {
	return &model.OutboxMessage{
		ID:        uuid.NewString(),
		EventType: n.Kind,
		Key:       n.To,
		Payload:   n,
		Status:    model.OutboxStatusPending,
	}
}

func (r *mongoOutboxRepository) Enqueue(ctx context.Context, msg *model.OutboxMessage) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = model.OutboxStatusPending
	}
	msg.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue outbox message: %w", err)
	}
	return nil
}

func (r *mongoOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"status": model.OutboxStatusPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*model.OutboxMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode outbox messages: %w", err)
	}
	return messages, nil
}

func (r *mongoOutboxRepository) MarkPublished(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.OutboxStatusPublished, "published_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message published: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoOutboxRepository) RecordFailure(ctx context.Context, id, reason string, maxAttempts int) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var msg model.OutboxMessage
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"attempts": 1}, "$set": bson.M{"last_error": reason}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to record outbox failure: %w", err)
	}

	if msg.Attempts < maxAttempts {
		return false, nil
	}
	if _, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": model.OutboxStatusFailed}},
	); err != nil {
		return false, fmt.Errorf("failed to mark outbox message failed: %w", err)
	}
	return true, nil
}
