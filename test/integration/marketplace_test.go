package integration

import (
	"fmt"
	"net/http"
	"testing"

	"marketplace/pkg/model"
	"marketplace/test/integration/testutil"

	"github.com/stripe/stripe-go/v81/webhook"
	"go.mongodb.org/mongo-driver/bson"
)

const password = "integration-pass-1"

func login(t *testing.T, client *testutil.Client, email string) string {
	t.Helper()
	resp := client.POST(t, "/api/v1/users/login", model.LoginRequest{Email: email, Password: password})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var out model.LoginResponse
	resp.DecodeData(t, &out)
	if out.AccessToken == "" {
		t.Fatal("login returned no access token")
	}
	return out.AccessToken
}

func TestMarketplace(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	vendor := mongo.SeedUser(t, "vendor@example.com", password, model.RoleVendor)
	buyer := mongo.SeedUser(t, "buyer@example.com", password, model.RoleBuyer)

	vendorClient := client.WithToken(login(t, client, vendor.Email))
	buyerClient := client.WithToken(login(t, client, buyer.Email))

	var listingID string

	t.Run("login rejects wrong password", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/users/login", model.LoginRequest{Email: vendor.Email, Password: "wrong-password"})
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("vendor creates listing", func(t *testing.T) {
		resp := vendorClient.POST(t, "/api/v1/listings", testutil.ValidListing())
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		var listing model.Listing
		resp.DecodeData(t, &listing)
		if listing.ID == "" {
			t.Fatal("created listing has no id")
		}
		listingID = listing.ID
	})

	t.Run("buyer cannot create listing", func(t *testing.T) {
		resp := buyerClient.POST(t, "/api/v1/listings", testutil.ValidListing())
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})

	t.Run("anonymous cannot create listing", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/listings", testutil.ValidListing())
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("missing price is rejected", func(t *testing.T) {
		resp := vendorClient.POST(t, "/api/v1/listings", testutil.MissingPriceListing())
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	})

	t.Run("listing is public", func(t *testing.T) {
		resp := client.GET(t, "/api/v1/listings/id/"+listingID)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertContains(t, resp, "Lakeside Cabin")
	})

	t.Run("search by location and dates", func(t *testing.T) {
		resp := client.GET(t, "/api/v1/listings/search?location=lake%20tahoe&startDate=2030-06-10&endDate=2030-06-12")
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var result model.ListingSearchResult
		resp.DecodeData(t, &result)
		if result.Total != 1 || len(result.Listings) != 1 || result.Listings[0].ListingID != listingID {
			t.Fatalf("unexpected search result: %+v", result)
		}
	})

	t.Run("search outside availability", func(t *testing.T) {
		resp := client.GET(t, "/api/v1/listings/search?startDate=2030-07-10&endDate=2030-07-12")
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var result model.ListingSearchResult
		resp.DecodeData(t, &result)
		if result.Total != 0 {
			t.Fatalf("expected no listings, got %d", result.Total)
		}
	})

	t.Run("booking requires completed payment", func(t *testing.T) {
		resp := buyerClient.POST(t, "/api/v1/bookings", map[string]string{
			"listingId": listingID,
			"userId":    buyer.ID,
			"paymentId": "missing-payment",
			"startDate": "2030-06-10",
			"endDate":   "2030-06-12",
		})
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
		testutil.AssertErrorCode(t, resp, "PAYMENT_NOT_READY")
	})

	t.Run("buyer cannot read another dashboard", func(t *testing.T) {
		resp := buyerClient.GET(t, "/api/v1/buyers/"+vendor.ID+"/dashboard")
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})

	t.Run("webhook without signature", func(t *testing.T) {
		resp := client.POSTRaw(t, "/api/v1/payments/webhook", []byte(`{"type":"payment_intent.succeeded"}`), nil)
		testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "INVALID_SIGNATURE")
	})

	t.Run("webhook redelivery is applied once", func(t *testing.T) {
		if env.WebhookSecret == "" {
			t.Skipf("%s not set", testutil.EnvWebhookSecret)
		}

		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload: []byte(succeededEvent("evt_replay_1", "pi_replay_1", buyer.ID, 5000)),
			Secret:  env.WebhookSecret,
		})
		headers := map[string]string{"Stripe-Signature": signed.Header}

		for i := 0; i < 2; i++ {
			resp := client.POSTRaw(t, "/api/v1/payments/webhook", signed.Payload, headers)
			testutil.AssertStatusCode(t, resp, http.StatusOK)
		}

		if n := mongo.CountDocuments(t, "Payments", bson.M{"processor_intent_id": "pi_replay_1"}); n != 1 {
			t.Fatalf("expected one payment for the intent, got %d", n)
		}

		resp := buyerClient.GET(t, "/api/v1/payments/id/pi_replay_1")
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var payment model.Payment
		resp.DecodeData(t, &payment)
		if payment.Amount != 50.00 || !payment.Completed() {
			t.Errorf("payment = %+v, want 50.00 succeeded", payment)
		}

		resp = buyerClient.GET(t, "/api/v1/buyers/"+buyer.ID+"/dashboard")
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var dashboard model.BuyerDashboard
		resp.DecodeData(t, &dashboard)
		if dashboard.TotalSpent != 50.00 || dashboard.TotalBookings != 1 {
			t.Errorf("dashboard = %+v, want totalSpent 50.00 and one booking", dashboard)
		}
	})

	t.Run("vendor deletes listing", func(t *testing.T) {
		resp := vendorClient.DELETE(t, "/api/v1/listings/id/"+listingID)
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		resp = client.GET(t, "/api/v1/listings/id/"+listingID)
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func succeededEvent(eventID, intentID, userID string, amountCents int64) string {
	return fmt.Sprintf(`{
  "id": %q,
  "object": "event",
  "type": "payment_intent.succeeded",
  "data": {
    "object": {
      "id": %q,
      "object": "payment_intent",
      "amount_received": %d,
      "currency": "usd",
      "metadata": {"userId": %q}
    }
  }
}`, eventID, intentID, amountCents, userID)
}
