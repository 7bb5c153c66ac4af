package store

import (
	"context"
)

// Review is one graded recall of a card. Rows are immutable history; the
// card itself carries the resulting scheduling state.
type Review struct {
	ID        int32
	CardID    int32
	UserID    int32
	CreatedTs int64

	// Grade is the SM-2 recall quality, 0..5. Below 3 is a lapse.
	Grade int32

	AFactorBefore  float64
	AFactorAfter   float64
	IntervalBefore int32
	IntervalAfter  int32

	// DurationMs is how long the answer took, as reported by the client.
	// 0 when unknown.
	DurationMs int32
}

// FindReview is the find condition for review.
type FindReview struct {
	ID     *int32
	CardID *int32
	UserID *int32

	// CreatedAfter selects reviews with created_ts >= the timestamp.
	CreatedAfter *int64
	// CreatedBefore selects reviews with created_ts < the timestamp.
	CreatedBefore *int64
	// MinGrade selects reviews with grade >= the given value.
	MinGrade *int32
	// FirstReviewsOnly restricts to reviews of never-before-reviewed
	// cards, i.e. rows with interval_before = 0.
	FirstReviewsOnly bool

	Limit  *int
	Offset *int
}

func (s *Store) CreateReview(ctx context.Context, create *Review) (*Review, error) {
	return s.driver.CreateReview(ctx, create)
}

func (s *Store) ListReviews(ctx context.Context, find *FindReview) ([]*Review, error) {
	return s.driver.ListReviews(ctx, find)
}

// CountReviews counts reviews matching the find condition.
func (s *Store) CountReviews(ctx context.Context, find *FindReview) (int64, error) {
	return s.driver.CountReviews(ctx, find)
}
