package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	notifications "marketplace/internal/notifications/repository"
	paymentserrors "marketplace/internal/payments/errors"
	"marketplace/internal/payments/processor"
	"marketplace/internal/payments/repository"
	"marketplace/internal/payments/validator"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/model"
	"marketplace/pkg/sanitizer"
	"marketplace/pkg/validation"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// LedgerSource namespaces processor events in Processed_events.
const LedgerSource = "stripe"

// DashboardRecorder accumulates a buyer's spend once per settled payment.
type DashboardRecorder interface {
	RecordPayment(ctx context.Context, userID string, amountCents int64) error
}

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutSession, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	// HandleWebhook reports whether the event was applied (false when it was
	// a redelivery or a type we ignore).
	HandleWebhook(ctx context.Context, payload []byte, signature string) (bool, error)
}

type paymentService struct {
	repo       repository.PaymentRepository
	processor  processor.Processor
	ledger     mongotx.EventLedger
	dashboards DashboardRecorder
	outbox     notifications.OutboxRepository
	validator  *validator.PaymentValidator
	cfg        *config.Config
}

func NewPaymentService(
	repo repository.PaymentRepository,
	processor processor.Processor,
	ledger mongotx.EventLedger,
	dashboards DashboardRecorder,
	outbox notifications.OutboxRepository,
	validator *validator.PaymentValidator,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:       repo,
		processor:  processor,
		ledger:     ledger,
		dashboards: dashboards,
		outbox:     outbox,
		validator:  validator,
		cfg:        cfg,
	}
}

func (s *paymentService) CreateCheckoutSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutSession, error) {
	req.PriceID = sanitizer.TrimAndNormalize(req.PriceID)
	if req.Mode == "" {
		req.Mode = "payment"
	}
	if err := s.validator.ValidateCheckout(req); err != nil {
		return nil, validation.ToAppError(err, "Invalid checkout request")
	}

	amountCents, err := validator.ParseAmountCents(req.PriceID, int64(s.cfg.PaymentMaxAmountCents))
	if err != nil {
		return nil, apperrors.Validation("Invalid priceId", map[string]any{"error": err.Error()})
	}

	payment := &model.Payment{
		ID:          uuid.NewString(),
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    s.cfg.PaymentCurrency,
		Status:      model.PaymentStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, apperrors.Internal("Failed to create payment", err)
	}

	session, err := s.processor.CreateCheckoutSession(ctx, processor.CheckoutParams{
		PaymentID:   payment.ID,
		UserID:      userID,
		AmountCents: amountCents,
		Currency:    s.cfg.PaymentCurrency,
		ProductName: s.cfg.PaymentProductName,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create checkout session", "payment_id", payment.ID, "error", err)
		if markErr := s.repo.MarkFailed(ctx, payment.ID, err.Error()); markErr != nil {
			s.cfg.Log.Error("Failed to mark payment failed", "payment_id", payment.ID, "error", markErr)
		}
		return nil, apperrors.Internal("Failed to create checkout session", err)
	}

	if err := s.repo.SetSession(ctx, payment.ID, session.SessionID); err != nil {
		// the webhook still finds the payment through intent metadata
		s.cfg.Log.Warn("Failed to store checkout session id", "payment_id", payment.ID, "error", err)
	}

	s.cfg.Log.Info("Checkout session created",
		"payment_id", payment.ID,
		"user_id", userID,
		"amount_cents", amountCents,
		"session_id", session.SessionID,
	)
	return &model.CheckoutSession{
		SessionID:  session.SessionID,
		SessionURL: session.SessionURL,
		PaymentID:  payment.ID,
	}, nil
}

func (s *paymentService) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", id)
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	return payment, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (bool, error) {
	event, err := s.processor.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrInvalidSignature) {
			s.cfg.Log.Warn("Webhook signature verification failed", "error", err)
			return false, apperrors.InvalidSignature(err)
		}
		return false, apperrors.InvalidInput("Malformed webhook event")
	}

	if event.Type != processor.EventPaymentSucceeded && event.Type != processor.EventPaymentFailed {
		s.cfg.Log.Debug("Ignoring webhook event", "event_id", event.ID, "type", event.Type)
		return false, nil
	}

	applied := false
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		applied = false
		first, err := s.ledger.MarkProcessed(sessCtx, LedgerSource, event.ID, event.Type)
		if err != nil {
			return apperrors.Internal("Failed to record webhook event", err)
		}
		if !first {
			return nil
		}
		applied = true

		if event.Type == processor.EventPaymentSucceeded {
			return s.applySucceeded(sessCtx, event)
		}
		return s.applyFailed(sessCtx, event)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to process webhook event", "event_id", event.ID, "type", event.Type, "error", err)
		return false, err
	}

	if !applied {
		s.cfg.Log.Info("Webhook event already processed", "event_id", event.ID, "type", event.Type)
		return false, nil
	}
	s.cfg.Log.Info("Webhook event processed",
		"event_id", event.ID,
		"type", event.Type,
		"payment_id", event.PaymentID,
		"intent_id", event.IntentID,
	)
	return true, nil
}

func (s *paymentService) applySucceeded(ctx context.Context, event *processor.WebhookEvent) error {
	now := time.Now().UTC()

	payment, err := s.repo.FindForIntent(ctx, event.PaymentID, event.IntentID)
	switch {
	case errors.Is(err, paymentserrors.ErrNotFound):
		payment = &model.Payment{
			ID:                event.IntentID,
			UserID:            event.UserID,
			AmountCents:       event.AmountReceived,
			Currency:          event.Currency,
			Status:            model.PaymentStatusSucceeded,
			ProcessorIntentID: event.IntentID,
			PaymentDate:       &now,
		}
		if err := s.repo.Create(ctx, payment); err != nil {
			return apperrors.Internal("Failed to create payment", err)
		}
	case err != nil:
		return apperrors.Internal("Failed to retrieve payment", err)
	case payment.Completed():
		// settled by an earlier event with a different id
		return nil
	default:
		if err := s.repo.MarkSucceeded(ctx, payment.ID, event.IntentID, event.AmountReceived, now); err != nil {
			return apperrors.Internal("Failed to update payment", err)
		}
	}

	userID := payment.UserID
	if userID == "" {
		userID = event.UserID
	}
	if userID != "" {
		if err := s.dashboards.RecordPayment(ctx, userID, event.AmountReceived); err != nil {
			return apperrors.Internal("Failed to update buyer dashboard", err)
		}
	}

	if event.ReceiptEmail != "" {
		msg := notifications.NewEmailMessage(model.EmailNotification{
			Kind: model.NotificationPaymentSucceeded,
			To:   event.ReceiptEmail,
			Data: map[string]string{
				"paymentId": payment.ID,
				"amount":    fmt.Sprintf("%.2f", model.CentsToAmount(event.AmountReceived)),
				"currency":  event.Currency,
			},
		})
		if err := s.outbox.Enqueue(ctx, msg); err != nil {
			return apperrors.Internal("Failed to queue receipt email", err)
		}
	}
	return nil
}

func (s *paymentService) applyFailed(ctx context.Context, event *processor.WebhookEvent) error {
	payment, err := s.repo.FindForIntent(ctx, event.PaymentID, event.IntentID)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			s.cfg.Log.Warn("Failed payment event for unknown payment", "event_id", event.ID, "intent_id", event.IntentID)
			return nil
		}
		return apperrors.Internal("Failed to retrieve payment", err)
	}
	if payment.Completed() {
		return nil
	}

	reason := event.FailureReason
	if reason == "" {
		reason = "payment failed"
	}
	if err := s.repo.MarkFailed(ctx, payment.ID, reason); err != nil {
		return apperrors.Internal("Failed to update payment", err)
	}
	return nil
}
