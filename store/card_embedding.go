package store

import (
	"context"
)

// CardEmbedding stores the embedding vector of a card's front text, used
// for duplicate suppression during AI generation. PostgreSQL keeps the
// vector in a pgvector column; SQLite keeps a JSON-encoded float array.
type CardEmbedding struct {
	CardID    int32
	Model     string
	Embedding []float32
	CreatedTs int64
}

// FindCardEmbedding is the find condition for card embedding.
type FindCardEmbedding struct {
	CardID *int32
	DeckID *int32

	Limit *int
}

func (s *Store) UpsertCardEmbedding(ctx context.Context, upsert *CardEmbedding) (*CardEmbedding, error) {
	return s.driver.UpsertCardEmbedding(ctx, upsert)
}

func (s *Store) ListCardEmbeddings(ctx context.Context, find *FindCardEmbedding) ([]*CardEmbedding, error) {
	return s.driver.ListCardEmbeddings(ctx, find)
}

// ListCardsWithoutEmbedding returns cards that have no stored embedding
// yet, oldest first. Used by the background backfill runner.
func (s *Store) ListCardsWithoutEmbedding(ctx context.Context, limit int) ([]*Card, error) {
	return s.driver.ListCardsWithoutEmbedding(ctx, limit)
}
