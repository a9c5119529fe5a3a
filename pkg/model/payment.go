package model

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"

	// legacy alias still present on older records
	PaymentStatusCompleted = "completed"
)

type Payment struct {
	ID                 string     `json:"paymentId" bson:"_id"`
	UserID             string     `json:"userId" bson:"user_id"`
	AmountCents        int64      `json:"-" bson:"amount_cents"`
	Amount             float64    `json:"amount" bson:"-"`
	Currency           string     `json:"currency" bson:"currency"`
	Status             string     `json:"paymentStatus" bson:"status"`
	ProcessorSessionID string     `json:"sessionId,omitempty" bson:"processor_session_id,omitempty"`
	ProcessorIntentID  string     `json:"paymentIntentId,omitempty" bson:"processor_intent_id,omitempty"`
	PaymentDate        *time.Time `json:"paymentDate,omitempty" bson:"payment_date,omitempty"`
	FailureReason      string     `json:"failureReason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" bson:"updated_at"`
}

// Completed reports whether the payment has settled and may back a booking.
func (p *Payment) Completed() bool {
	return p.Status == PaymentStatusSucceeded || p.Status == PaymentStatusCompleted
}

// FillAmount derives the major-unit amount exposed over JSON.
func (p *Payment) FillAmount() *Payment {
	p.Amount = CentsToAmount(p.AmountCents)
	return p
}

func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

type CheckoutRequest struct {
	PriceID    string `json:"priceId" validate:"required,max=32"`
	SuccessURL string `json:"successUrl" validate:"required,url"`
	CancelURL  string `json:"cancelUrl" validate:"required,url"`
	Mode       string `json:"mode" validate:"omitempty,oneof=payment"`
}

type CheckoutSession struct {
	SessionID  string `json:"sessionId"`
	SessionURL string `json:"sessionUrl"`
	PaymentID  string `json:"paymentId"`
}
