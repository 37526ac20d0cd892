package votes

import (
	"context"

	"github.com/diggingboard/diggingboard/pkg/metrics"
)

// Service wraps the ledger with the toggle rule and the denormalized score
// write on the parent post.
type Service struct {
	repo   Repository
	scorer PostScorer
}

func NewService(r Repository, s PostScorer) *Service {
	return &Service{repo: r, scorer: s}
}

// Toggle flips the caller's recommendation for the post. A voter with no
// ledger row (or a withdrawn one) recommends; an active recommendation is
// withdrawn. Returns the new value.
//
// The ledger upsert and the score update are two separate writes; a failure
// between them leaves the counter behind the ledger rather than rolling back.
func (s *Service) Toggle(ctx context.Context, postID, voterID string) (int, error) {
	existing, err := s.repo.Get(ctx, postID, voterID)
	if err != nil {
		return 0, err
	}
	value, delta := 1, 1
	if existing != nil && existing.Value == 1 {
		value, delta = 0, -1
	}
	if _, err := s.repo.Upsert(ctx, postID, voterID, value); err != nil {
		return 0, err
	}
	metrics.VotesRecorded.WithLabelValues(voteLabel(value)).Inc()
	if err := s.scorer.IncrementScore(ctx, postID, delta); err != nil {
		return value, err
	}
	return value, nil
}

// Get returns the voter's current ledger row, or nil when they never voted.
func (s *Service) Get(ctx context.Context, postID, voterID string) (*Vote, error) {
	return s.repo.Get(ctx, postID, voterID)
}

func voteLabel(value int) string {
	if value == 1 {
		return "up"
	}
	return "withdrawn"
}
