package testutil

import (
	"os"
	"testing"
)

const (
	EnvServerURL     = "TEST_SERVER_URL"
	EnvWebhookSecret = "TEST_STRIPE_WEBHOOK_SECRET"
)

type TestEnv struct {
	MongoURI      string
	DatabaseName  string
	ServerURL     string
	// WebhookSecret must match the API's STRIPE_WEBHOOK_SECRET.
	WebhookSecret string
}

// NewTestEnv skips the calling test unless TEST_SERVER_URL points at a
// running API backed by the same database.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv(EnvServerURL)
	if serverURL == "" {
		t.Skipf("%s not set, skipping integration tests", EnvServerURL)
	}

	return &TestEnv{
		MongoURI:      getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:  getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:     serverURL,
		WebhookSecret: os.Getenv(EnvWebhookSecret),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	client := NewClient(e.ServerURL)
	client.WaitForReady(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
)
