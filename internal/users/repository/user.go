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

const (
	CollectionName = "Users"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	return &mongoUserRepository{
		cfg:        cfg,
		collection: cfg.Database().Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.set(ctx, id, bson.M{"password_hash": passwordHash})
}

func (r *mongoUserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.set(ctx, id, bson.M{"email_verified": true})
}

func (r *mongoUserRepository) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	fields["updated_at"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return userserrors.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
