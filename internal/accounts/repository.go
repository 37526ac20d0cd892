package accounts

import (
	"context"
	"time"

	"github.com/diggingboard/diggingboard/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AccountRepository defines persistence operations for accounts
type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	GetByName(ctx context.Context, name string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// MongoAccountRepository implements AccountRepository using MongoDB
type MongoAccountRepository struct {
	col *mongo.Collection
}

// NewMongoAccountRepository creates a repository for the given collection and
// ensures the unique index on the display name.
func NewMongoAccountRepository(col *mongo.Collection) *MongoAccountRepository {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoAccountRepository{col: col}
}

func (r *MongoAccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *MongoAccountRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	var a models.Account
	if err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *MongoAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
