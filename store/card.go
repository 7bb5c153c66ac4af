package store

import (
	"context"
)

// Card is the object representing a flashcard with its scheduling state.
type Card struct {
	ID        int32
	UID       string
	CreatorID int32
	DeckID    int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Front string
	Back  string
	// Tags is a JSON-encoded array of strings.
	Tags string

	// Scheduling state, maintained exclusively by the SRS engine.
	AFactor         float64
	RepetitionCount int32
	IntervalDays    int32
	LapsesCount     int32
	// DueTs is when the card next enters the study queue. New cards are
	// due at creation time.
	DueTs int64
	// LastReviewTs is 0 for never-reviewed cards.
	LastReviewTs int64
}

// IsNew reports whether the card has never been successfully reviewed.
func (c *Card) IsNew() bool {
	return c.RepetitionCount == 0 && c.LastReviewTs == 0
}

// FindCard is the find condition for card.
type FindCard struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	DeckID    *int32
	RowStatus *RowStatus

	// DueBefore selects cards with due_ts <= the given timestamp.
	DueBefore *int64
	// OnlyNew restricts to never-reviewed cards; OnlyReviewed to the rest.
	OnlyNew      bool
	OnlyReviewed bool
	// CreatedAfter selects cards created strictly after the timestamp.
	CreatedAfter *int64

	// OrderByDue orders ascending by due_ts instead of created_ts desc.
	OrderByDue bool

	Limit  *int
	Offset *int
}

// UpdateCard is the update condition for card.
type UpdateCard struct {
	ID int32

	UpdatedTs *int64
	RowStatus *RowStatus
	DeckID    *int32
	Front     *string
	Back      *string
	Tags      *string

	AFactor         *float64
	RepetitionCount *int32
	IntervalDays    *int32
	LapsesCount     *int32
	DueTs           *int64
	LastReviewTs    *int64
}

// DeleteCard is the delete condition for card.
type DeleteCard struct {
	ID int32
}

func (s *Store) CreateCard(ctx context.Context, create *Card) (*Card, error) {
	return s.driver.CreateCard(ctx, create)
}

func (s *Store) ListCards(ctx context.Context, find *FindCard) ([]*Card, error) {
	return s.driver.ListCards(ctx, find)
}

func (s *Store) GetCard(ctx context.Context, find *FindCard) (*Card, error) {
	list, err := s.driver.ListCards(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateCard(ctx context.Context, update *UpdateCard) error {
	return s.driver.UpdateCard(ctx, update)
}

func (s *Store) DeleteCard(ctx context.Context, delete *DeleteCard) error {
	return s.driver.DeleteCard(ctx, delete)
}

// CountCards counts cards matching the find condition.
func (s *Store) CountCards(ctx context.Context, find *FindCard) (int64, error) {
	return s.driver.CountCards(ctx, find)
}
