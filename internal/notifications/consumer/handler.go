package consumer

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/notifications/templates"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/kafka"
	"marketplace/pkg/logger"
	"marketplace/pkg/mailer"
	"marketplace/pkg/model"
)

// LedgerSource namespaces the notifier's entries in Processed_events.
const LedgerSource = "notifier"

type Handler struct {
	ledger   mongotx.EventLedger
	renderer *templates.Renderer
	sender   mailer.Sender
	log      *logger.Logger
}

func NewHandler(ledger mongotx.EventLedger, renderer *templates.Renderer, sender mailer.Sender, log *logger.Logger) *Handler {
	return &Handler{
		ledger:   ledger,
		renderer: renderer,
		sender:   sender,
		log:      log,
	}
}

// Handle is a kafka.MessageHandler. Delivery is at least once; the ledger
// keeps a redelivered event from sending the same email twice.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	eventID := msg.GetEventID()
	if eventID == "" {
		return kafka.NewPermanentError("message has no event id", nil)
	}

	seen, err := h.ledger.Seen(ctx, LedgerSource, eventID)
	if err != nil {
		return kafka.NewTransientError("failed to check processed events", err)
	}
	if seen {
		h.log.Info("Notification already sent", "event_id", eventID)
		return nil
	}

	var n model.EmailNotification
	if err := msg.DecodeValue(&n); err != nil {
		return err
	}
	if n.To == "" {
		return kafka.NewPermanentError("notification has no recipient", nil)
	}

	email, err := h.renderer.Render(n)
	if err != nil {
		if errors.Is(err, templates.ErrUnknownKind) {
			return kafka.NewPermanentError(fmt.Sprintf("cannot render %q", n.Kind), err)
		}
		return kafka.NewPermanentError("failed to render notification", err)
	}

	if err := h.sender.Send(ctx, email); err != nil {
		if errors.Is(err, mailer.ErrInvalidMessage) {
			return kafka.NewPermanentError("email rejected", err)
		}
		return kafka.NewTransientError("failed to send email", err)
	}

	if _, err := h.ledger.MarkProcessed(ctx, LedgerSource, eventID, n.Kind); err != nil {
		// already sent; a redelivery may duplicate the email but must not fail it
		h.log.Error("Failed to record sent notification", "event_id", eventID, "error", err)
	}

	h.log.Info("Notification sent", "event_id", eventID, "kind", n.Kind)
	return nil
}
