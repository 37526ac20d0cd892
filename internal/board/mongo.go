package board

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements ContentRepository, MusicRepository and
// CommunityRepository over the four content collections.
type MongoStore struct {
	posts             *mongo.Collection
	comments          *mongo.Collection
	communityPosts    *mongo.Collection
	communityComments *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	s := &MongoStore{
		posts:             db.Collection(string(TablePosts)),
		comments:          db.Collection(string(TableComments)),
		communityPosts:    db.Collection(string(TableCommunityPosts)),
		communityComments: db.Collection(string(TableCommunityComments)),
	}
	// comments are always fetched by parent post
	idx := mongo.IndexModel{Keys: bson.D{{Key: "postId", Value: 1}}}
	_, _ = s.comments.Indexes().CreateOne(context.Background(), idx)
	_, _ = s.communityComments.Indexes().CreateOne(context.Background(), idx)
	return s
}

func (s *MongoStore) collection(table Table) *mongo.Collection {
	switch table {
	case TablePosts:
		return s.posts
	case TableComments:
		return s.comments
	case TableCommunityPosts:
		return s.communityPosts
	default:
		return s.communityComments
	}
}

// GetOwnership loads only the ownership projection of a row.
func (s *MongoStore) GetOwnership(ctx context.Context, table Table, id string) (Ownership, error) {
	var row struct {
		Ownership Ownership `bson:"ownership"`
	}
	opts := options.FindOne().SetProjection(bson.M{"ownership": 1})
	err := s.collection(table).FindOne(ctx, bson.M{"_id": id}, opts).Decode(&row)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return Ownership{}, ErrNotFound
		}
		return Ownership{}, err
	}
	return row.Ownership, nil
}

// UpdateFields overwrites exactly the given fields on the row.
func (s *MongoStore) UpdateFields(ctx context.Context, table Table, id string, fields Fields) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.collection(table).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row. Comments referencing a deleted post are left in
// place; there is no cascade.
func (s *MongoStore) Delete(ctx context.Context, table Table, id string) error {
	res, err := s.collection(table).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreatePost(ctx context.Context, p *Post) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.posts.InsertOne(ctx, p)
	return err
}

// ratingPipeline joins a post with its comments and derives averageRating and
// totalCount. The aggregates live nowhere in the posts collection itself.
func ratingPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         string(TableComments),
			"localField":   "_id",
			"foreignField": "postId",
			"as":           "reviews",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"averageRating": bson.M{"$ifNull": bson.A{bson.M{"$avg": "$reviews.rating"}, 0}},
			"totalCount":    bson.M{"$size": "$reviews"},
		}}},
		{{Key: "$project", Value: bson.M{"reviews": 0}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*Post, error) {
	cur, err := s.posts.Aggregate(ctx, ratingPipeline(bson.M{"_id": id}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		return nil, ErrNotFound
	}
	var p Post
	if err := cur.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]*Post, error) {
	cur, err := s.posts.Aggregate(ctx, ratingPipeline(bson.M{}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Post{}
	for cur.Next(ctx) {
		var p Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (s *MongoStore) CreateComment(ctx context.Context, c *Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.comments.InsertOne(ctx, c)
	return err
}

func (s *MongoStore) ListComments(ctx context.Context, postID string) ([]*Comment, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cur, err := s.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Comment{}
	for cur.Next(ctx) {
		var c Comment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (s *MongoStore) CreateCommunityPost(ctx context.Context, p *CommunityPost) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.communityPosts.InsertOne(ctx, p)
	return err
}

func (s *MongoStore) GetCommunityPost(ctx context.Context, id string) (*CommunityPost, error) {
	var p CommunityPost
	if err := s.communityPosts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *MongoStore) ListCommunityPosts(ctx context.Context) ([]*CommunityPost, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cur, err := s.communityPosts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*CommunityPost{}
	for cur.Next(ctx) {
		var p CommunityPost
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, cur.Err()
}

func (s *MongoStore) CreateCommunityComment(ctx context.Context, c *CommunityComment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.communityComments.InsertOne(ctx, c)
	return err
}

func (s *MongoStore) ListCommunityComments(ctx context.Context, postID string) ([]*CommunityComment, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cur, err := s.communityComments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*CommunityComment{}
	for cur.Next(ctx) {
		var c CommunityComment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

// IncrementScore applies a vote delta to a community post's denormalized
// score. This write is intentionally separate from the vote ledger write.
func (s *MongoStore) IncrementScore(ctx context.Context, postID string, delta int) error {
	res, err := s.communityPosts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"score": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
