package board

import (
	"fmt"
	"time"
)

// OwnershipKind discriminates the two authorization paths a content row can
// have: owned by an account, or anonymous and gated by a 4-digit PIN.
type OwnershipKind string

const (
	OwnedKind     OwnershipKind = "owned"
	AnonymousKind OwnershipKind = "anonymous"
)

// Ownership is a tagged variant: exactly one of AccountID or PINHash is set,
// selected by Kind. Content is never both owned and PIN-gated.
type Ownership struct {
	Kind      OwnershipKind `bson:"kind" json:"kind"`
	AccountID string        `bson:"accountId,omitempty" json:"accountId,omitempty"`
	PINHash   string        `bson:"pinHash,omitempty" json:"-"`
}

// Owned returns ownership bound to an account.
func Owned(accountID string) Ownership {
	return Ownership{Kind: OwnedKind, AccountID: accountID}
}

// Anonymous returns PIN-gated ownership. The hash must already be computed;
// raw PINs never reach the store.
func Anonymous(pinHash string) Ownership {
	return Ownership{Kind: AnonymousKind, PINHash: pinHash}
}

func (o Ownership) IsOwned() bool { return o.Kind == OwnedKind }

// Track is the catalog snapshot embedded in a music post.
type Track struct {
	ID       string `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	Artist   string `bson:"artist" json:"artist"`
	CoverURL string `bson:"coverUrl" json:"coverUrl"`
	URI      string `bson:"uri" json:"uri"`
}

// Post is a music board entry: a track recommendation with a short writeup.
// AverageRating and TotalCount are derived from the post's comments at read
// time and are never written by the application.
type Post struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Ownership Ownership `bson:"ownership" json:"ownership"`
	Name      string    `bson:"name" json:"name"`
	Body      string    `bson:"body" json:"body"`
	Track     Track     `bson:"track" json:"track"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`

	AverageRating float64 `bson:"averageRating,omitempty" json:"averageRating"`
	TotalCount    int     `bson:"totalCount,omitempty" json:"totalCount"`
}

// Comment is a music board review: body plus a 1..5 star rating.
type Comment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	PostID    string    `bson:"postId" json:"postId"`
	Ownership Ownership `bson:"ownership" json:"ownership"`
	Name      string    `bson:"name" json:"name"`
	Body      string    `bson:"body" json:"body"`
	Rating    int       `bson:"rating" json:"rating"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// CommunityPost is a free-form board entry with optional images and a
// denormalized vote score.
type CommunityPost struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Ownership Ownership `bson:"ownership" json:"ownership"`
	Name      string    `bson:"name" json:"name"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body" json:"body"`
	Images    []string  `bson:"images" json:"images"`
	Score     int       `bson:"score" json:"score"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// CommunityComment is a free-form board comment (no rating).
type CommunityComment struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	PostID    string    `bson:"postId" json:"postId"`
	Ownership Ownership `bson:"ownership" json:"ownership"`
	Name      string    `bson:"name" json:"name"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Table selects one of the four content collections.
type Table string

const (
	TablePosts             Table = "posts"
	TableComments          Table = "comments"
	TableCommunityPosts    Table = "community_posts"
	TableCommunityComments Table = "community_comments"
)

// ParseTable validates a table selector from the wire.
func ParseTable(s string) (Table, error) {
	switch Table(s) {
	case TablePosts, TableComments, TableCommunityPosts, TableCommunityComments:
		return Table(s), nil
	}
	return "", fmt.Errorf("%w: unknown table %q", ErrValidation, s)
}

// IsPost reports whether the table holds posts (as opposed to comments).
func (t Table) IsPost() bool {
	return t == TablePosts || t == TableCommunityPosts
}

// Action is a gateway operation.
type Action string

const (
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionCanEdit Action = "can_edit"
)

// ParseAction validates an action from the wire.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionUpdate, ActionDelete, ActionCanEdit:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}
