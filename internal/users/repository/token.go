package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "marketplace/internal/users/errors"
	"marketplace/pkg/config"
	mongotx "marketplace/pkg/db/mongo"
	"marketplace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const TokensCollectionName = "User_tokens"

// TokenRepository stores one-time tokens keyed by their SHA-256 hash. A TTL
// index on expires_at reaps stale rows; Consume also checks expiry because
// the TTL monitor runs only once a minute.
type TokenRepository interface {
	Create(ctx context.Context, token *model.UserToken) error
	Consume(ctx context.Context, hash, purpose string) (*model.UserToken, error)
}

type mongoTokenRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTokenRepository(cfg *config.Config) TokenRepository {
	return &mongoTokenRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(TokensCollectionName),
	}
}

func (r *mongoTokenRepository) Create(ctx context.Context, token *model.UserToken) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	token.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *mongoTokenRepository) Consume(ctx context.Context, hash, purpose string) (*model.UserToken, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":        hash,
		"purpose":    purpose,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}

	var token model.UserToken
	if err := r.collection.FindOneAndDelete(ctx, filter).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}
	return &token, nil
}
