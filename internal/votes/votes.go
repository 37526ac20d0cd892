package votes

import (
	"context"
	"time"
)

// Vote is one ledger row: the single record of a voter's stance on a post.
// Value is 1 (recommended) or 0 (recommendation withdrawn); the row is keyed
// by (PostID, VoterID) and upserts collapse duplicates into it.
type Vote struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	PostID    string    `bson:"postId" json:"postId"`
	VoterID   string    `bson:"voterId" json:"voterId"`
	Value     int       `bson:"value" json:"value"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Repository persists the vote ledger.
type Repository interface {
	Upsert(ctx context.Context, postID, voterID string, value int) (*Vote, error)
	Get(ctx context.Context, postID, voterID string) (*Vote, error)
}

// PostScorer applies a score delta to the parent post. Implemented by the
// board store; this write is separate from the ledger write and the two are
// not atomic.
type PostScorer interface {
	IncrementScore(ctx context.Context, postID string, delta int) error
}
