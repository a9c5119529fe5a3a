package model

import "time"

const (
	OutboxStatusPending   = "pending"
	OutboxStatusPublished = "published"
	OutboxStatusFailed    = "failed"
)

const (
	NotificationBookingConfirmed  = "booking.confirmed"
	NotificationPaymentSucceeded  = "payment.succeeded"
	NotificationPasswordRecovery  = "password.recovery"
	NotificationEmailVerification = "email.verification"
)

// EmailNotification is the payload carried from the outbox to the notifier.
type EmailNotification struct {
	Kind string            `json:"kind" bson:"kind"`
	To   string            `json:"to" bson:"to"`
	Data map[string]string `json:"data,omitempty" bson:"data,omitempty"`
}

type OutboxMessage struct {
	ID          string            `bson:"_id"`
	EventType   string            `bson:"event_type"`
	Key         string            `bson:"key"`
	Payload     EmailNotification `bson:"payload"`
	Status      string            `bson:"status"`
	Attempts    int               `bson:"attempts"`
	LastError   string            `bson:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
	PublishedAt *time.Time        `bson:"published_at,omitempty"`
}

// ProcessedEventKey is the _id of a Processed_events document.
func ProcessedEventKey(source, eventID string) string {
	return source + ":" + eventID
}
