package processor

import (
	"context"
	"encoding/json"
	"fmt"

	paymentserrors "marketplace/internal/payments/errors"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

type StripeProcessor struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProcessor(secretKey, webhookSecret string) *StripeProcessor {
	return &StripeProcessor{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	metadata := map[string]string{
		MetadataPaymentID: params.PaymentID,
		MetadataUserID:    params.UserID,
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.PaymentID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	sp.Context = ctx
	for k, v := range metadata {
		sp.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(sp)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &CheckoutResult{SessionID: session.ID, SessionURL: session.URL}, nil
}

func (p *StripeProcessor) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return parseStripeEvent(payload, signature, p.webhookSecret)
}

func parseStripeEvent(payload []byte, signature, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentserrors.ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != EventPaymentSucceeded && out.Type != EventPaymentFailed {
		return out, nil
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", paymentserrors.ErrMalformedEvent, event.ID)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: %v", paymentserrors.ErrMalformedEvent, err)
	}

	out.IntentID = intent.ID
	out.PaymentID = intent.Metadata[MetadataPaymentID]
	out.UserID = intent.Metadata[MetadataUserID]
	out.AmountReceived = intent.AmountReceived
	out.Currency = string(intent.Currency)
	out.ReceiptEmail = intent.ReceiptEmail
	if intent.LastPaymentError != nil {
		out.FailureReason = intent.LastPaymentError.Msg
	}
	return out, nil
}
