package handler

import (
	"io"
	"net/http"

	"marketplace/internal/payments/service"
	"marketplace/pkg/auth"
	apperrors "marketplace/pkg/errors"
	httputil "marketplace/pkg/http"
	"marketplace/pkg/logger"
	"marketplace/pkg/middleware"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const SignatureHeader = "Stripe-Signature"

// WebhookPath is exempt from JSON content-type enforcement.
const WebhookPath = "/api/v1/payments/webhook"

type PaymentHandler struct {
	service service.PaymentService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, authenticator *middleware.Authenticator, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		auth:    authenticator,
		log:     log,
	}
}

func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, "CreateCheckoutSession", apperrors.Unauthorized("Missing bearer token"))
		return
	}

	var req model.CheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateCheckoutSession", err)
		return
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), claims.Sub, &req)
	if err != nil {
		h.writeError(w, "CreateCheckoutSession", err)
		return
	}

	if err := httputil.WriteCreated(w, "Checkout session created", session); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateCheckoutSession", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	payment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	if !middleware.SelfOrAdmin(r, payment.UserID) {
		h.writeError(w, "GetByID", apperrors.Forbidden("You can only view your own payments"))
		return
	}

	if err := httputil.WriteSuccess(w, "Payment fetched successfully", payment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Webhook needs the raw body: the signature covers the exact bytes sent.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Webhook", apperrors.InvalidInput("Failed to read request body"))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		h.writeError(w, "Webhook", apperrors.New(apperrors.CodeInvalidSignature, "Missing "+SignatureHeader+" header", http.StatusBadRequest))
		return
	}

	if _, err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.writeError(w, "Webhook", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Webhook received", nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	authenticated := h.auth.Require()

	router.POST("/api/v1/payments/checkout-session", authenticated(h.CreateCheckoutSession))
	router.GET("/api/v1/payments/id/:id", authenticated(h.GetByID))
	router.POST(WebhookPath, h.Webhook)
}
