package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	bookingserrors "marketplace/internal/bookings/errors"
	"marketplace/internal/bookings/validator"
	listingserrors "marketplace/internal/listings/errors"
	paymentserrors "marketplace/internal/payments/errors"
	userserrors "marketplace/internal/users/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/logger"
	"marketplace/pkg/model"
	"marketplace/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockBookingRepository struct {
	mu       sync.Mutex
	bookings []*model.Booking
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, booking)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	bookings, _ := m.FindByUser(ctx, userID, 0, 0)
	return int64(len(bookings)), nil
}

func (m *mockBookingRepository) FindOverlapping(ctx context.Context, listingID string, dates model.DateRange) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ListingID == listingID && b.Range().Overlaps(dates) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	for _, b := range m.bookings {
		if b.PaymentID == paymentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLocks struct {
	held     map[string]bool
	released []string
}

func (m *mockLocks) Acquire(ctx context.Context, lockID string, ttl time.Duration) error {
	if m.held[lockID] {
		return bookingserrors.ErrLockHeld
	}
	return nil
}

func (m *mockLocks) Release(ctx context.Context, lockID string) error {
	m.released = append(m.released, lockID)
	return nil
}

type mockListings map[string]*model.Listing

func (m mockListings) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if l, ok := m[id]; ok {
		return l, nil
	}
	return nil, listingserrors.ErrNotFound
}

type mockUsers map[string]*model.User

func (m mockUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, userserrors.ErrNotFound
}

type mockPayments map[string]*model.Payment

func (m mockPayments) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, paymentserrors.ErrNotFound
}

type mockOutbox struct {
	enqueued []*model.OutboxMessage
}

func (m *mockOutbox) Enqueue(ctx context.Context, msg *model.OutboxMessage) error {
	m.enqueued = append(m.enqueued, msg)
	return nil
}

func (m *mockOutbox) FetchPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	return nil, nil
}

func (m *mockOutbox) MarkPublished(ctx context.Context, id string) error { return nil }

func (m *mockOutbox) RecordFailure(ctx context.Context, id, reason string, maxAttempts int) (bool, error) {
	return false, nil
}

type fixture struct {
	svc    BookingService
	repo   *mockBookingRepository
	locks  *mockLocks
	outbox *mockOutbox
}

func newFixture() *fixture {
	log := logger.Discard()
	f := &fixture{
		repo:   &mockBookingRepository{},
		locks:  &mockLocks{held: map[string]bool{}},
		outbox: &mockOutbox{},
	}
	payments := mockPayments{
		"pay-1":     {ID: "pay-1", UserID: "buyer-1", Status: model.PaymentStatusSucceeded},
		"pay-2":     {ID: "pay-2", UserID: "buyer-1", Status: model.PaymentStatusCompleted},
		"pay-3":     {ID: "pay-3", UserID: "buyer-1", Status: model.PaymentStatusSucceeded},
		"pending":   {ID: "pending", UserID: "buyer-1", Status: model.PaymentStatusPending},
		"someone's": {ID: "someone's", UserID: "buyer-2", Status: model.PaymentStatusSucceeded},
	}
	f.svc = NewBookingService(
		f.repo,
		f.locks,
		mockListings{"listing-1": {ID: "listing-1", Title: "Loft"}},
		mockUsers{"buyer-1": {ID: "buyer-1", Email: "buyer@example.com", Role: model.RoleBuyer}},
		payments,
		f.outbox,
		validator.NewBookingValidator(log),
		&config.Config{Log: log, ListingLockTTL: 10 * time.Second},
	)
	return f
}

func request(start, end, paymentID string) *model.BookingRequest {
	return &model.BookingRequest{
		ListingID: "listing-1",
		UserID:    "buyer-1",
		StartDate: start,
		EndDate:   end,
		PaymentID: paymentID,
	}
}

func status(err error) int {
	if err == nil {
		return http.StatusCreated
	}
	return apperrors.AsAppError(err).StatusCode()
}

func TestCreate(t *testing.T) {
	f := newFixture()

	booking, err := f.svc.Create(context.Background(), request("2025-01-10", "2025-01-15", "pay-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID == "" || booking.ListingID != "listing-1" {
		t.Errorf("unexpected booking %+v", booking)
	}

	if len(f.outbox.enqueued) != 1 {
		t.Fatalf("expected confirmation email, got %d", len(f.outbox.enqueued))
	}
	msg := f.outbox.enqueued[0]
	if msg.EventType != model.NotificationBookingConfirmed || msg.Payload.To != "buyer@example.com" {
		t.Errorf("unexpected outbox message %+v", msg)
	}
	if msg.Payload.Data["startDate"] != "2025-01-10" || msg.Payload.Data["listingTitle"] != "Loft" {
		t.Errorf("unexpected email data %v", msg.Payload.Data)
	}
	if len(f.locks.released) != 1 || f.locks.released[0] != "listing_lock_listing-1" {
		t.Errorf("lock not released: %v", f.locks.released)
	}
}

func TestCreate_DateBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantStatus int
	}{
		{"starts on existing end day", "2025-01-15", "2025-01-20", http.StatusBadRequest},
		{"ends on existing start day", "2025-01-05", "2025-01-10", http.StatusBadRequest},
		{"day after existing end", "2025-01-16", "2025-01-20", http.StatusCreated},
		{"day before existing start", "2025-01-01", "2025-01-09", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if _, err := f.svc.Create(context.Background(), request("2025-01-10", "2025-01-15", "pay-1")); err != nil {
				t.Fatalf("seed booking: %v", err)
			}

			_, err := f.svc.Create(context.Background(), request(tt.start, tt.end, "pay-2"))
			if got := status(err); got != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", got, tt.wantStatus, err)
			}
			if err != nil {
				if msg := apperrors.AsAppError(err).Message; msg != "Listing not available for the selected dates" {
					t.Errorf("message = %q", msg)
				}
			}
		})
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		req        *model.BookingRequest
		wantStatus int
		wantMsg    string
	}{
		{"missing fields", &model.BookingRequest{ListingID: "listing-1"}, http.StatusBadRequest, validation.MissingRequiredFields},
		{"malformed date", request("10/01/2025", "2025-01-15", "pay-1"), http.StatusBadRequest, ""},
		{"reversed range", request("2025-01-15", "2025-01-10", "pay-1"), http.StatusBadRequest, ""},
		{"unknown listing", &model.BookingRequest{ListingID: "nope", UserID: "buyer-1", StartDate: "2025-01-10", EndDate: "2025-01-11", PaymentID: "pay-1"}, http.StatusNotFound, "Listing not found"},
		{"unknown user", &model.BookingRequest{ListingID: "listing-1", UserID: "ghost", StartDate: "2025-01-10", EndDate: "2025-01-11", PaymentID: "pay-1"}, http.StatusNotFound, "User not found"},
		{"pending payment", request("2025-01-10", "2025-01-11", "pending"), http.StatusNotFound, "Payment not found or not completed"},
		{"missing payment", request("2025-01-10", "2025-01-11", "pay-9"), http.StatusNotFound, "Payment not found or not completed"},
		{"foreign payment", request("2025-01-10", "2025-01-11", "someone's"), http.StatusNotFound, "Payment not found or not completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(context.Background(), tt.req)
			if got := status(err); got != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", got, tt.wantStatus, err)
			}
			if tt.wantMsg != "" {
				if msg := apperrors.AsAppError(err).Message; msg != tt.wantMsg {
					t.Errorf("message = %q, want %q", msg, tt.wantMsg)
				}
			}
			if len(f.repo.bookings) != 0 || len(f.outbox.enqueued) != 0 {
				t.Errorf("rejected request must not write")
			}
		})
	}
}

func TestCreate_PaymentUsedOnce(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Create(context.Background(), request("2025-01-10", "2025-01-11", "pay-1")); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := f.svc.Create(context.Background(), request("2025-02-10", "2025-02-11", "pay-1"))
	if got := status(err); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}

func TestCreate_LockHeld(t *testing.T) {
	f := newFixture()
	f.locks.held["listing_lock_listing-1"] = true

	_, err := f.svc.Create(context.Background(), request("2025-01-10", "2025-01-11", "pay-1"))
	if got := status(err); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}
	if len(f.locks.released) != 0 {
		t.Errorf("a lock we never acquired must not be released")
	}
}

func TestGetByUser(t *testing.T) {
	f := newFixture()
	for _, p := range []string{"pay-1", "pay-2"} {
		start := "2025-03-01"
		if p == "pay-2" {
			start = "2025-04-01"
		}
		if _, err := f.svc.Create(context.Background(), request(start, start, p)); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	bookings, total, err := f.svc.GetByUser(context.Background(), "buyer-1", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(bookings) != 2 {
		t.Errorf("got %d bookings, total %d", len(bookings), total)
	}

	if _, err := f.svc.GetByID(context.Background(), "missing"); status(err) != http.StatusNotFound {
		t.Errorf("expected 404 for missing booking, got %v", err)
	}
}
