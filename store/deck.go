package store

import (
	"context"
)

// Deck is the object representing a collection of cards.
type Deck struct {
	ID        int32
	UID       string
	CreatorID int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Name        string
	Description string
	Visibility  Visibility

	// CardCount is populated by list queries, not stored.
	CardCount int32
}

// FindDeck is the find condition for deck.
type FindDeck struct {
	ID         *int32
	UID        *string
	CreatorID  *int32
	RowStatus  *RowStatus
	Visibility *Visibility

	Limit  *int
	Offset *int
}

// UpdateDeck is the update condition for deck.
type UpdateDeck struct {
	ID int32

	UpdatedTs   *int64
	RowStatus   *RowStatus
	Name        *string
	Description *string
	Visibility  *Visibility
}

// DeleteDeck is the delete condition for deck. Deleting a deck cascades to
// its cards and their reviews.
type DeleteDeck struct {
	ID int32
}

func (s *Store) CreateDeck(ctx context.Context, create *Deck) (*Deck, error) {
	return s.driver.CreateDeck(ctx, create)
}

func (s *Store) ListDecks(ctx context.Context, find *FindDeck) ([]*Deck, error) {
	return s.driver.ListDecks(ctx, find)
}

func (s *Store) GetDeck(ctx context.Context, find *FindDeck) (*Deck, error) {
	list, err := s.driver.ListDecks(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateDeck(ctx context.Context, update *UpdateDeck) (*Deck, error) {
	return s.driver.UpdateDeck(ctx, update)
}

func (s *Store) DeleteDeck(ctx context.Context, delete *DeleteDeck) error {
	return s.driver.DeleteDeck(ctx, delete)
}
