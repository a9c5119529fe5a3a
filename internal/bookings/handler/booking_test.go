package handler

import (
	"context"
	"encoding/json"
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

type mockBookingService struct {
	created []*model.BookingRequest
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	m.created = append(m.created, req)
	return &model.Booking{ID: "b-1", ListingID: req.ListingID, UserID: req.UserID, PaymentID: req.PaymentID}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id != "b-1" {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return &model.Booking{ID: "b-1", UserID: "buyer-1"}, nil
}

func (m *mockBookingService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{{ID: "b-1", UserID: userID}}, 1, nil
}

const testSecret = "0123456789abcdef0123456789abcdef"

func setup(t *testing.T) (*httprouter.Router, *mockBookingService, func(sub, role string) string) {
	t.Helper()
	issuer := auth.NewIssuer(testSecret, time.Hour)
	log := logger.Discard()
	svc := &mockBookingService{}
	router := httprouter.New()
	NewBookingHandler(svc, middleware.NewAuthenticator(issuer, log), log).RegisterRoutes(router)

	token := func(sub, role string) string {
		tok, err := issuer.CreateAccessToken(sub, role, "")
		if err != nil {
			t.Fatalf("CreateAccessToken: %v", err)
		}
		return "Bearer " + tok
	}
	return router, svc, token
}

func TestCreate(t *testing.T) {
	router, svc, token := setup(t)
	body := `{"listingId":"listing-1","userId":"buyer-1","startDate":"2025-01-10","endDate":"2025-01-15","paymentId":"pay-1"}`

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"other user", token("buyer-2", model.RoleBuyer), http.StatusForbidden},
		{"self", token("buyer-1", model.RoleBuyer), http.StatusCreated},
		{"admin", token("admin-1", model.RoleAdmin), http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	if len(svc.created) != 2 {
		t.Errorf("service called %d times, want 2", len(svc.created))
	}
}

func TestCreate_EmptyBody(t *testing.T) {
	router, _, token := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(""))
	req.Header.Set("Authorization", token("buyer-1", model.RoleBuyer))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetByID(t *testing.T) {
	router, _, token := setup(t)

	tests := []struct {
		name       string
		id         string
		authHeader string
		wantStatus int
	}{
		{"owner", "b-1", token("buyer-1", model.RoleBuyer), http.StatusOK},
		{"stranger", "b-1", token("buyer-2", model.RoleBuyer), http.StatusForbidden},
		{"missing", "b-9", token("buyer-1", model.RoleBuyer), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/"+tt.id, nil)
			req.Header.Set("Authorization", tt.authHeader)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetByBuyer(t *testing.T) {
	router, _, token := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buyers/buyer-1/bookings?limit=5", nil)
	req.Header.Set("Authorization", token("buyer-1", model.RoleBuyer))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || !resp.Success {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}
