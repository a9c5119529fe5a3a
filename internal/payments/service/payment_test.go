package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	paymentserrors "marketplace/internal/payments/errors"
	"marketplace/internal/payments/processor"
	"marketplace/internal/payments/validator"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/logger"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockPaymentRepository struct {
	payments  map[string]*model.Payment
	createErr error
}

func newMockPaymentRepository(payments ...*model.Payment) *mockPaymentRepository {
	m := &mockPaymentRepository{payments: map[string]*model.Payment{}}
	for _, p := range payments {
		m.payments[p.ID] = p
	}
	return m
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.payments[payment.ID] = payment
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, paymentserrors.ErrNotFound
}

func (m *mockPaymentRepository) FindForIntent(ctx context.Context, paymentID, intentID string) (*model.Payment, error) {
	if p, ok := m.payments[paymentID]; ok && paymentID != "" {
		return p, nil
	}
	for _, p := range m.payments {
		if p.ProcessorIntentID == intentID {
			return p, nil
		}
	}
	return nil, paymentserrors.ErrNotFound
}

func (m *mockPaymentRepository) SetSession(ctx context.Context, id, sessionID string) error {
	m.payments[id].ProcessorSessionID = sessionID
	return nil
}

func (m *mockPaymentRepository) MarkSucceeded(ctx context.Context, id, intentID string, amountCents int64, paidAt time.Time) error {
	p := m.payments[id]
	p.Status = model.PaymentStatusSucceeded
	p.ProcessorIntentID = intentID
	p.AmountCents = amountCents
	p.PaymentDate = &paidAt
	return nil
}

func (m *mockPaymentRepository) MarkFailed(ctx context.Context, id, reason string) error {
	p := m.payments[id]
	p.Status = model.PaymentStatusFailed
	p.FailureReason = reason
	return nil
}

func (m *mockPaymentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockProcessor struct {
	createFunc func(ctx context.Context, params processor.CheckoutParams) (*processor.CheckoutResult, error)
	event      *processor.WebhookEvent
	parseErr   error
}

func (m *mockProcessor) CreateCheckoutSession(ctx context.Context, params processor.CheckoutParams) (*processor.CheckoutResult, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return &processor.CheckoutResult{SessionID: "cs_test_1", SessionURL: "https://checkout.example/cs_test_1"}, nil
}

func (m *mockProcessor) ParseWebhook(payload []byte, signature string) (*processor.WebhookEvent, error) {
	return m.event, m.parseErr
}

type mockLedger struct {
	seen map[string]bool
}

func (m *mockLedger) MarkProcessed(ctx context.Context, source, eventID, eventType string) (bool, error) {
	key := model.ProcessedEventKey(source, eventID)
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *mockLedger) Seen(ctx context.Context, source, eventID string) (bool, error) {
	return m.seen[model.ProcessedEventKey(source, eventID)], nil
}

type mockDashboards struct {
	spent map[string]int64
	count map[string]int
}

func (m *mockDashboards) RecordPayment(ctx context.Context, userID string, amountCents int64) error {
	m.spent[userID] += amountCents
	m.count[userID]++
	return nil
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
	svc        PaymentService
	repo       *mockPaymentRepository
	processor  *mockProcessor
	dashboards *mockDashboards
	outbox     *mockOutbox
}

func newFixture(payments ...*model.Payment) *fixture {
	log := logger.Discard()
	cfg := &config.Config{
		Log:                   log,
		PaymentCurrency:       "usd",
		PaymentProductName:    "Marketplace booking",
		PaymentMaxAmountCents: 10_000_00,
	}
	f := &fixture{
		repo:       newMockPaymentRepository(payments...),
		processor:  &mockProcessor{},
		dashboards: &mockDashboards{spent: map[string]int64{}, count: map[string]int{}},
		outbox:     &mockOutbox{},
	}
	f.svc = NewPaymentService(
		f.repo,
		f.processor,
		&mockLedger{seen: map[string]bool{}},
		f.dashboards,
		f.outbox,
		validator.NewPaymentValidator(log),
		cfg,
	)
	return f
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	if !apperrors.IsAppError(err) {
		t.Fatalf("expected AppError, got %v", err)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != status {
		t.Errorf("status = %d, want %d (%s)", appErr.HTTPStatus, status, appErr.Message)
	}
}

func validCheckout() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		PriceID:    "50.00",
		SuccessURL: "https://app.example/success",
		CancelURL:  "https://app.example/cancel",
	}
}

func TestCreateCheckoutSession(t *testing.T) {
	f := newFixture()
	var got processor.CheckoutParams
	f.processor.createFunc = func(ctx context.Context, params processor.CheckoutParams) (*processor.CheckoutResult, error) {
		got = params
		return &processor.CheckoutResult{SessionID: "cs_1", SessionURL: "https://checkout.example/cs_1"}, nil
	}

	session, err := f.svc.CreateCheckoutSession(context.Background(), "u-1", validCheckout())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.SessionID != "cs_1" || session.PaymentID == "" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if got.AmountCents != 5000 || got.Currency != "usd" || got.UserID != "u-1" || got.PaymentID != session.PaymentID {
		t.Errorf("unexpected processor params: %+v", got)
	}

	stored := f.repo.payments[session.PaymentID]
	if stored.Status != model.PaymentStatusPending {
		t.Errorf("status = %q, want pending", stored.Status)
	}
	if stored.ProcessorSessionID != "cs_1" {
		t.Errorf("session id not stored: %q", stored.ProcessorSessionID)
	}
}

func TestCreateCheckoutSession_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  *model.CheckoutRequest
	}{
		{"missing price", &model.CheckoutRequest{SuccessURL: "https://a.example", CancelURL: "https://a.example"}},
		{"non numeric price", &model.CheckoutRequest{PriceID: "price_123", SuccessURL: "https://a.example", CancelURL: "https://a.example"}},
		{"zero price", &model.CheckoutRequest{PriceID: "0", SuccessURL: "https://a.example", CancelURL: "https://a.example"}},
		{"bad success url", &model.CheckoutRequest{PriceID: "10", SuccessURL: "not-a-url", CancelURL: "https://a.example"}},
		{"unsupported mode", &model.CheckoutRequest{PriceID: "10", SuccessURL: "https://a.example", CancelURL: "https://a.example", Mode: "subscription"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.CreateCheckoutSession(context.Background(), "u-1", tt.req)
			assertStatus(t, err, http.StatusBadRequest)
			if len(f.repo.payments) != 0 {
				t.Errorf("no payment should be created")
			}
		})
	}
}

func TestCreateCheckoutSession_ProcessorFailureMarksPaymentFailed(t *testing.T) {
	f := newFixture()
	f.processor.createFunc = func(ctx context.Context, params processor.CheckoutParams) (*processor.CheckoutResult, error) {
		return nil, errors.New("card network down")
	}

	_, err := f.svc.CreateCheckoutSession(context.Background(), "u-1", validCheckout())
	assertStatus(t, err, http.StatusInternalServerError)

	if len(f.repo.payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(f.repo.payments))
	}
	for _, p := range f.repo.payments {
		if p.Status != model.PaymentStatusFailed {
			t.Errorf("status = %q, want failed", p.Status)
		}
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(&model.Payment{ID: "p-1", UserID: "u-1", Status: model.PaymentStatusPending})

	p, err := f.svc.GetByID(context.Background(), "p-1")
	if err != nil || p.ID != "p-1" {
		t.Fatalf("GetByID() = %v, %v", p, err)
	}

	_, err = f.svc.GetByID(context.Background(), "missing")
	assertStatus(t, err, http.StatusNotFound)
}

func succeededEvent() *processor.WebhookEvent {
	return &processor.WebhookEvent{
		ID:             "evt_1",
		Type:           processor.EventPaymentSucceeded,
		IntentID:       "pi_1",
		PaymentID:      "p-1",
		UserID:         "u-1",
		AmountReceived: 5000,
		Currency:       "usd",
		ReceiptEmail:   "buyer@example.com",
	}
}

func TestHandleWebhook_Succeeded(t *testing.T) {
	f := newFixture(&model.Payment{ID: "p-1", UserID: "u-1", AmountCents: 5000, Status: model.PaymentStatusPending})
	f.processor.event = succeededEvent()

	applied, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	if err != nil || !applied {
		t.Fatalf("HandleWebhook() = %v, %v", applied, err)
	}

	p := f.repo.payments["p-1"]
	if p.Status != model.PaymentStatusSucceeded || p.ProcessorIntentID != "pi_1" || p.PaymentDate == nil {
		t.Errorf("payment not settled: %+v", p)
	}
	if f.dashboards.spent["u-1"] != 5000 || f.dashboards.count["u-1"] != 1 {
		t.Errorf("dashboard = %d cents / %d bookings", f.dashboards.spent["u-1"], f.dashboards.count["u-1"])
	}
	if len(f.outbox.enqueued) != 1 {
		t.Fatalf("expected receipt email, got %d messages", len(f.outbox.enqueued))
	}
	msg := f.outbox.enqueued[0]
	if msg.EventType != model.NotificationPaymentSucceeded || msg.Payload.Data["amount"] != "50.00" {
		t.Errorf("unexpected receipt: %+v", msg.Payload)
	}
}

func TestHandleWebhook_RedeliveryIsAppliedOnce(t *testing.T) {
	f := newFixture(&model.Payment{ID: "p-1", UserID: "u-1", AmountCents: 5000, Status: model.PaymentStatusPending})
	f.processor.event = succeededEvent()

	for i := 0; i < 3; i++ {
		applied, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		if applied != (i == 0) {
			t.Errorf("delivery %d applied = %v", i, applied)
		}
	}

	if f.dashboards.count["u-1"] != 1 {
		t.Errorf("dashboard incremented %d times, want 1", f.dashboards.count["u-1"])
	}
	if len(f.outbox.enqueued) != 1 {
		t.Errorf("receipt queued %d times, want 1", len(f.outbox.enqueued))
	}
}

func TestHandleWebhook_CreatesMissingPayment(t *testing.T) {
	f := newFixture()
	evt := succeededEvent()
	evt.PaymentID = ""
	evt.ReceiptEmail = ""
	f.processor.event = evt

	if _, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, ok := f.repo.payments["pi_1"]
	if !ok {
		t.Fatal("expected payment keyed by intent id")
	}
	if !p.Completed() || p.UserID != "u-1" || p.AmountCents != 5000 {
		t.Errorf("unexpected payment: %+v", p)
	}
	if len(f.outbox.enqueued) != 0 {
		t.Errorf("no receipt without an email address")
	}
}

func TestHandleWebhook_AlreadySettledByAnotherEvent(t *testing.T) {
	f := newFixture(&model.Payment{ID: "p-1", UserID: "u-1", Status: model.PaymentStatusCompleted, ProcessorIntentID: "pi_1"})
	f.processor.event = succeededEvent()

	if _, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.dashboards.count["u-1"] != 0 {
		t.Errorf("settled payment must not be counted again")
	}
}

func TestHandleWebhook_Failed(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus string
	}{
		{"pending becomes failed", model.PaymentStatusPending, model.PaymentStatusFailed},
		{"succeeded stays succeeded", model.PaymentStatusSucceeded, model.PaymentStatusSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&model.Payment{ID: "p-1", UserID: "u-1", Status: tt.status})
			f.processor.event = &processor.WebhookEvent{
				ID:            "evt_2",
				Type:          processor.EventPaymentFailed,
				IntentID:      "pi_1",
				PaymentID:     "p-1",
				FailureReason: "card declined",
			}

			if _, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := f.repo.payments["p-1"].Status; got != tt.wantStatus {
				t.Errorf("status = %q, want %q", got, tt.wantStatus)
			}
		})
	}
}

func TestHandleWebhook_IgnoredType(t *testing.T) {
	f := newFixture()
	f.processor.event = &processor.WebhookEvent{ID: "evt_3", Type: "charge.refunded"}

	applied, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	if err != nil || applied {
		t.Errorf("HandleWebhook() = %v, %v; want false, nil", applied, err)
	}
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	f := newFixture()
	f.processor.parseErr = paymentserrors.ErrInvalidSignature

	_, err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "bad")
	assertStatus(t, err, http.StatusBadRequest)
	if !apperrors.HasCode(err, apperrors.CodeInvalidSignature) {
		t.Errorf("expected INVALID_SIGNATURE code, got %v", err)
	}
}
