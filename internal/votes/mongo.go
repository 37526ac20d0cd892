package votes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository over a votes collection with a
// unique index on (postId, voterId).
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "postId", Value: 1}, {Key: "voterId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Upsert(ctx context.Context, postID, voterID string, value int) (*Vote, error) {
	now := time.Now().UTC()
	filter := bson.M{"postId": postID, "voterId": voterID}
	update := bson.M{
		"$set":         bson.M{"value": value, "updatedAt": now},
		"$setOnInsert": bson.M{"_id": uuid.New().String(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var v Vote
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *MongoRepository) Get(ctx context.Context, postID, voterID string) (*Vote, error) {
	var v Vote
	err := r.col.FindOne(ctx, bson.M{"postId": postID, "voterId": voterID}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}
