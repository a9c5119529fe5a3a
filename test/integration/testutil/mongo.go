package testutil

import (
	"context"
	"testing"
	"time"

	"marketplace/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "marketplace_test"
	ConnectionTimeout   = 10 * time.Second

	UsersCollection = "Users"
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase empties every collection but keeps them, so validators and
// indexes created by the migrations survive between tests.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, name := range collections {
		if name == "system.indexes" {
			continue
		}
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string, filter bson.M) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// SeedUser inserts a user directly; the API has no sign-up endpoint.
func (m *MongoHelper) SeedUser(t *testing.T, email, password, role string) *model.User {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := m.Database.Collection(UsersCollection).InsertOne(ctx, user); err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}
