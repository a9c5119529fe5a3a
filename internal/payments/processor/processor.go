package processor

import (
	"context"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// Metadata keys attached to the payment intent at checkout and read back
// from webhook events.
const (
	MetadataPaymentID = "paymentId"
	MetadataUserID    = "userId"
)

type CheckoutParams struct {
	PaymentID   string
	UserID      string
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

type CheckoutResult struct {
	SessionID  string
	SessionURL string
}

// WebhookEvent is the processor-neutral view of a verified webhook delivery.
// Intent fields are set only for payment intent events.
type WebhookEvent struct {
	ID             string
	Type           string
	IntentID       string
	PaymentID      string
	UserID         string
	AmountReceived int64
	Currency       string
	ReceiptEmail   string
	FailureReason  string
}

type Processor interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutResult, error)
	// ParseWebhook verifies the signature header and decodes the event.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
