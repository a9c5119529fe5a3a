package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketplace/pkg/auth"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/logger"
	"marketplace/pkg/middleware"
	"marketplace/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockPaymentService struct {
	checkoutFunc func(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutSession, error)
	payments     map[string]*model.Payment
	webhookFunc  func(ctx context.Context, payload []byte, signature string) (bool, error)
}

func (m *mockPaymentService) CreateCheckoutSession(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutSession, error) {
	return m.checkoutFunc(ctx, userID, req)
}

func (m *mockPaymentService) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFoundWithID("Payment", id)
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (bool, error) {
	return m.webhookFunc(ctx, payload, signature)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newRouter(t *testing.T, svc *mockPaymentService) (*httprouter.Router, *auth.Issuer) {
	t.Helper()
	issuer := auth.NewIssuer(testSecret, time.Hour)
	log := logger.Discard()
	router := httprouter.New()
	NewPaymentHandler(svc, middleware.NewAuthenticator(issuer, log), log).RegisterRoutes(router)
	return router, issuer
}

func bearer(t *testing.T, issuer *auth.Issuer, sub, role string) string {
	t.Helper()
	token, err := issuer.CreateAccessToken(sub, role, "")
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	return "Bearer " + token
}

func TestCreateCheckoutSession(t *testing.T) {
	var gotUser string
	router, issuer := newRouter(t, &mockPaymentService{
		checkoutFunc: func(ctx context.Context, userID string, req *model.CheckoutRequest) (*model.CheckoutSession, error) {
			gotUser = userID
			return &model.CheckoutSession{SessionID: "cs_1", SessionURL: "https://checkout.example/cs_1", PaymentID: "p-1"}, nil
		},
	})

	body := `{"priceId":"50.00","successUrl":"https://a.example/s","cancelUrl":"https://a.example/c"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout-session", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout-session", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, issuer, "buyer-1", model.RoleBuyer))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if gotUser != "buyer-1" {
		t.Errorf("user id = %q, want buyer-1", gotUser)
	}

	var resp struct {
		Data model.CheckoutSession `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.SessionID != "cs_1" || resp.Data.PaymentID != "p-1" {
		t.Errorf("unexpected body %+v", resp.Data)
	}
}

func TestGetByID_Ownership(t *testing.T) {
	router, issuer := newRouter(t, &mockPaymentService{
		payments: map[string]*model.Payment{"p-1": {ID: "p-1", UserID: "buyer-1"}},
	})

	tests := []struct {
		name       string
		sub        string
		role       string
		id         string
		wantStatus int
	}{
		{"owner", "buyer-1", model.RoleBuyer, "p-1", http.StatusOK},
		{"admin", "admin-1", model.RoleAdmin, "p-1", http.StatusOK},
		{"other buyer", "buyer-2", model.RoleBuyer, "p-1", http.StatusForbidden},
		{"missing", "buyer-1", model.RoleBuyer, "p-9", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/id/"+tt.id, nil)
			req.Header.Set("Authorization", bearer(t, issuer, tt.sub, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestWebhook(t *testing.T) {
	const payload = `{"id":"evt_1","type":"payment_intent.succeeded"}`

	tests := []struct {
		name       string
		signature  string
		result     error
		wantStatus int
	}{
		{"accepted", "t=1,v1=abc", nil, http.StatusOK},
		{"missing signature", "", nil, http.StatusBadRequest},
		{"bad signature", "t=1,v1=bad", apperrors.InvalidSignature(io.ErrUnexpectedEOF), http.StatusBadRequest},
		{"store failure", "t=1,v1=abc", apperrors.Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPayload, gotSignature string
			router, _ := newRouter(t, &mockPaymentService{
				webhookFunc: func(ctx context.Context, body []byte, signature string) (bool, error) {
					gotPayload, gotSignature = string(body), signature
					return tt.result == nil, tt.result
				},
			})

			req := httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(payload))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.signature != "" && (gotPayload != payload || gotSignature != tt.signature) {
				t.Errorf("raw body or signature not forwarded: %q %q", gotPayload, gotSignature)
			}
		})
	}
}
