package mongo

import (
	"context"
	"fmt"
	"time"

	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ProcessedEventsCollection = "Processed_events"

// EventLedger records which externally delivered events were already applied.
type EventLedger interface {
	// MarkProcessed returns false when the event was recorded before.
	MarkProcessed(ctx context.Context, source, eventID, eventType string) (bool, error)
	Seen(ctx context.Context, source, eventID string) (bool, error)
}

type mongoEventLedger struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewEventLedger(db *mongo.Database, timeout time.Duration) EventLedger {
	return &mongoEventLedger{
		collection: db.Collection(ProcessedEventsCollection),
		timeout:    timeout,
	}
}

// MarkProcessed upserts with $setOnInsert so a replay is a no-op write rather
// than a duplicate-key error, which would abort an enclosing transaction.
func (l *mongoEventLedger) MarkProcessed(ctx context.Context, source, eventID, eventType string) (bool, error) {
	ctx, cancel := WithTimeout(ctx, l.timeout)
	defer cancel()

	result, err := l.collection.UpdateOne(ctx,
		bson.M{"_id": model.ProcessedEventKey(source, eventID)},
		bson.M{"$setOnInsert": bson.M{
			"source":       source,
			"event_id":     eventID,
			"event_type":   eventType,
			"processed_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record processed event: %w", err)
	}
	return result.UpsertedCount == 1, nil
}

func (l *mongoEventLedger) Seen(ctx context.Context, source, eventID string) (bool, error) {
	ctx, cancel := WithTimeout(ctx, l.timeout)
	defer cancel()

	n, err := l.collection.CountDocuments(ctx, bson.M{"_id": model.ProcessedEventKey(source, eventID)})
	if err != nil {
		return false, fmt.Errorf("failed to look up processed event: %w", err)
	}
	return n > 0, nil
}
