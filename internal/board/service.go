package board

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/diggingboard/diggingboard/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Caller carries the credentials a mutation request arrived with. AccountID
// is the resolved bearer subject (empty when no valid token was presented);
// PIN is the claimed 4-digit password from the payload.
type Caller struct {
	AccountID string
	PIN       string
}

// Payload carries the replacement fields for an update. Required fields
// depend on the target table; Images defaults to an empty list when omitted.
type Payload struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Rating int      `json:"rating"`
	Images []string `json:"images"`
}

// PlaylistAppender is the optional hook fired after a music post is created.
// Failures are logged and never surfaced to the caller.
type PlaylistAppender interface {
	AddTrackToPlaylist(ctx context.Context, trackID string) error
}

// Service holds the content store and implements the authorization check and
// mutation gateway, plus the plain create/list paths for both boards.
type Service struct {
	content   ContentRepository
	music     MusicRepository
	community CommunityRepository
	playlist  PlaylistAppender
}

func NewService(content ContentRepository, music MusicRepository, community CommunityRepository) *Service {
	return &Service{content: content, music: music, community: community}
}

// SetPlaylistAppender wires the best-effort playlist hook. May stay unset.
func (s *Service) SetPlaylistAppender(p PlaylistAppender) { s.playlist = p }

// authorize loads the row's ownership and decides whether the caller may
// mutate it. One read, no writes.
func (s *Service) authorize(ctx context.Context, table Table, id string, caller Caller) error {
	own, err := s.content.GetOwnership(ctx, table, id)
	if err != nil {
		return err
	}
	if own.IsOwned() {
		if caller.AccountID == "" || caller.AccountID != own.AccountID {
			return ErrUnauthorized
		}
		return nil
	}
	if caller.PIN == "" {
		return fmt.Errorf("%w: password required for anonymous content", ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(own.PINHash), []byte(caller.PIN)) != nil {
		return ErrUnauthorized
	}
	return nil
}

// CanEdit runs the authorization check only. It never mutates state.
func (s *Service) CanEdit(ctx context.Context, table Table, id string, caller Caller) error {
	return s.authorize(ctx, table, id, caller)
}

// Update authorizes, validates the payload for the row kind and overwrites
// exactly those fields.
func (s *Service) Update(ctx context.Context, table Table, id string, caller Caller, p Payload) error {
	if err := s.authorize(ctx, table, id, caller); err != nil {
		return err
	}
	fields, err := updateFields(table, p)
	if err != nil {
		return err
	}
	return s.content.UpdateFields(ctx, table, id, fields)
}

// Delete authorizes then removes the row. Comments of a deleted post are
// orphaned, not cascaded.
func (s *Service) Delete(ctx context.Context, table Table, id string, caller Caller) error {
	if err := s.authorize(ctx, table, id, caller); err != nil {
		return err
	}
	return s.content.Delete(ctx, table, id)
}

func updateFields(table Table, p Payload) (Fields, error) {
	switch table {
	case TablePosts:
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Body) == "" {
			return nil, fmt.Errorf("%w: title and body are required for post", ErrValidation)
		}
		// title edits fix up the track snapshot
		return Fields{"track.title": p.Title, "body": p.Body}, nil
	case TableCommunityPosts:
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Body) == "" {
			return nil, fmt.Errorf("%w: title and body are required for post", ErrValidation)
		}
		images := p.Images
		if images == nil {
			images = []string{}
		}
		return Fields{"title": p.Title, "body": p.Body, "images": images}, nil
	case TableComments:
		if strings.TrimSpace(p.Body) == "" {
			return nil, fmt.Errorf("%w: body is required for comment", ErrValidation)
		}
		if p.Rating < 1 || p.Rating > 5 {
			return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
		}
		return Fields{"body": p.Body, "rating": p.Rating}, nil
	default: // TableCommunityComments
		if strings.TrimSpace(p.Body) == "" {
			return nil, fmt.Errorf("%w: body is required for comment", ErrValidation)
		}
		return Fields{"body": p.Body}, nil
	}
}

// ownershipFor builds the tagged ownership for new content: an account id
// when the caller is logged in, otherwise a bcrypt hash of the supplied PIN.
func ownershipFor(caller Caller) (Ownership, error) {
	if caller.AccountID != "" {
		return Owned(caller.AccountID), nil
	}
	if !pinPattern.MatchString(caller.PIN) {
		return Ownership{}, fmt.Errorf("%w: anonymous content requires a four digit password", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(caller.PIN), bcrypt.DefaultCost)
	if err != nil {
		return Ownership{}, err
	}
	return Anonymous(string(hash)), nil
}

// CreatePost stores a music post and then best-effort appends its track to
// the shared playlist. The append never fails the post write.
func (s *Service) CreatePost(ctx context.Context, caller Caller, name string, body string, track Track) (*Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if track.ID == "" || track.Title == "" || track.Artist == "" {
		return nil, fmt.Errorf("%w: track id, title and artist are required", ErrValidation)
	}
	own, err := ownershipFor(caller)
	if err != nil {
		return nil, err
	}
	if track.URI == "" {
		track.URI = "spotify:track:" + track.ID
	}
	p := &Post{Ownership: own, Name: name, Body: body, Track: track}
	if err := s.music.CreatePost(ctx, p); err != nil {
		return nil, err
	}
	if s.playlist != nil {
		if err := s.playlist.AddTrackToPlaylist(ctx, track.ID); err != nil {
			logger.Warnf("playlist append failed for track %s: %v", track.ID, err)
		}
	}
	return p, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (*Post, error) {
	return s.music.GetPost(ctx, id)
}

func (s *Service) ListPosts(ctx context.Context) ([]*Post, error) {
	return s.music.ListPosts(ctx)
}

// CreateComment stores a music board review (body + 1..5 rating).
func (s *Service) CreateComment(ctx context.Context, caller Caller, postID, name, body string, rating int) (*Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	own, err := ownershipFor(caller)
	if err != nil {
		return nil, err
	}
	c := &Comment{PostID: postID, Ownership: own, Name: name, Body: body, Rating: rating}
	if err := s.music.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]*Comment, error) {
	return s.music.ListComments(ctx, postID)
}

func (s *Service) CreateCommunityPost(ctx context.Context, caller Caller, name, title, body string, images []string) (*CommunityPost, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: title and body are required", ErrValidation)
	}
	own, err := ownershipFor(caller)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []string{}
	}
	p := &CommunityPost{Ownership: own, Name: name, Title: title, Body: body, Images: images}
	if err := s.community.CreateCommunityPost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetCommunityPost(ctx context.Context, id string) (*CommunityPost, error) {
	return s.community.GetCommunityPost(ctx, id)
}

func (s *Service) ListCommunityPosts(ctx context.Context) ([]*CommunityPost, error) {
	return s.community.ListCommunityPosts(ctx)
}

func (s *Service) CreateCommunityComment(ctx context.Context, caller Caller, postID, name, body string) (*CommunityComment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	own, err := ownershipFor(caller)
	if err != nil {
		return nil, err
	}
	c := &CommunityComment{PostID: postID, Ownership: own, Name: name, Body: body}
	if err := s.community.CreateCommunityComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCommunityComments(ctx context.Context, postID string) ([]*CommunityComment, error) {
	return s.community.ListCommunityComments(ctx, postID)
}
