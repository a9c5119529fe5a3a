package handler

import (
	"context"
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

type mockProfileService struct {
	buyerCalls int
}

func (m *mockProfileService) UpsertBuyer(ctx context.Context, buyerID string, input *model.BuyerProfileInput) (*model.BuyerProfile, error) {
	m.buyerCalls++
	details, ok := input.PaymentDetails.(map[string]any)
	if !ok {
		return nil, apperrors.InvalidInput("Invalid payment details")
	}
	return &model.BuyerProfile{UserID: buyerID, PaymentDetails: details}, nil
}

func (m *mockProfileService) UpsertVendor(ctx context.Context, vendorID string, input *model.VendorProfileInput) (*model.VendorProfile, error) {
	return &model.VendorProfile{UserID: vendorID, BusinessName: input.BusinessName}, nil
}

func (m *mockProfileService) GetDashboard(ctx context.Context, buyerID string) (*model.BuyerDashboard, error) {
	return &model.BuyerDashboard{UserID: buyerID}, nil
}

const testSecret = "0123456789abcdef0123456789abcdef"

func TestProfileRoutes_Ownership(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)
	log := logger.Discard()
	svc := &mockProfileService{}
	router := httprouter.New()
	NewProfileHandler(svc, middleware.NewAuthenticator(issuer, log), log).RegisterRoutes(router)

	token := func(sub, role string) string {
		tok, err := issuer.CreateAccessToken(sub, role, "")
		if err != nil {
			t.Fatalf("CreateAccessToken: %v", err)
		}
		return "Bearer " + tok
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		authHeader string
		wantStatus int
	}{
		{"anonymous", http.MethodPost, "/api/v1/buyers/buyer-1/profile", `{"paymentDetails":{}}`, "", http.StatusUnauthorized},
		{"self post", http.MethodPost, "/api/v1/buyers/buyer-1/profile", `{"paymentDetails":{"card":"visa"}}`, token("buyer-1", model.RoleBuyer), http.StatusOK},
		{"self patch", http.MethodPatch, "/api/v1/buyers/buyer-1/profile", `{"paymentDetails":{"card":"visa"}}`, token("buyer-1", model.RoleBuyer), http.StatusOK},
		{"not an object", http.MethodPost, "/api/v1/buyers/buyer-1/profile", `{"paymentDetails":"visa"}`, token("buyer-1", model.RoleBuyer), http.StatusBadRequest},
		{"other buyer", http.MethodPost, "/api/v1/buyers/buyer-1/profile", `{"paymentDetails":{}}`, token("buyer-2", model.RoleBuyer), http.StatusForbidden},
		{"admin", http.MethodPost, "/api/v1/buyers/buyer-1/profile", `{"paymentDetails":{}}`, token("admin-1", model.RoleAdmin), http.StatusOK},
		{"vendor self", http.MethodPost, "/api/v1/vendors/vendor-1/profile", `{"businessName":"Acme"}`, token("vendor-1", model.RoleVendor), http.StatusOK},
		{"vendor other", http.MethodPost, "/api/v1/vendors/vendor-1/profile", `{"businessName":"Acme"}`, token("vendor-2", model.RoleVendor), http.StatusForbidden},
		{"dashboard self", http.MethodGet, "/api/v1/buyers/buyer-1/dashboard", "", token("buyer-1", model.RoleBuyer), http.StatusOK},
		{"dashboard other", http.MethodGet, "/api/v1/buyers/buyer-1/dashboard", "", token("buyer-2", model.RoleBuyer), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
