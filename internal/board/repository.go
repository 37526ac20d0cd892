package board

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a content row does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrUnauthorized is returned when a caller may not mutate a row.
	ErrUnauthorized = errors.New("not authorized")
	// ErrValidation wraps all malformed-request errors so handlers can map
	// them to 400 before any write happens.
	ErrValidation = errors.New("invalid request")
)

// Fields is the exact set of columns an update overwrites.
type Fields map[string]interface{}

// ContentRepository is the gateway's view of the store: one ownership read
// plus at most one write, addressed by (table, id).
type ContentRepository interface {
	GetOwnership(ctx context.Context, table Table, id string) (Ownership, error)
	UpdateFields(ctx context.Context, table Table, id string, fields Fields) error
	Delete(ctx context.Context, table Table, id string) error
}

// MusicRepository persists the music board.
type MusicRepository interface {
	CreatePost(ctx context.Context, p *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context) ([]*Post, error)
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, postID string) ([]*Comment, error)
}

// CommunityRepository persists the community board.
type CommunityRepository interface {
	CreateCommunityPost(ctx context.Context, p *CommunityPost) error
	GetCommunityPost(ctx context.Context, id string) (*CommunityPost, error)
	ListCommunityPosts(ctx context.Context) ([]*CommunityPost, error)
	CreateCommunityComment(ctx context.Context, c *CommunityComment) error
	ListCommunityComments(ctx context.Context, postID string) ([]*CommunityComment, error)
}
