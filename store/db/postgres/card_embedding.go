package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/flashwise/flashwise/store"
)

func (d *DB) UpsertCardEmbedding(ctx context.Context, upsert *store.CardEmbedding) (*store.CardEmbedding, error) {
	stmt := `INSERT INTO card_embedding (card_id, model, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (card_id) DO UPDATE SET
			model = EXCLUDED.model,
			embedding = EXCLUDED.embedding
		RETURNING created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.CardID, upsert.Model, pgvector.NewVector(upsert.Embedding),
	).Scan(&upsert.CreatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert card embedding: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListCardEmbeddings(ctx context.Context, find *store.FindCardEmbedding) ([]*store.CardEmbedding, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.CardID; v != nil {
		where, args = append(where, "card_embedding.card_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DeckID; v != nil {
		where, args = append(where, "card.deck_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT card_embedding.card_id, card_embedding.model, card_embedding.embedding, card_embedding.created_ts
		FROM card_embedding
		JOIN card ON card.id = card_embedding.card_id
		WHERE ` + strings.Join(where, " AND ")
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query card embeddings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.CardEmbedding, 0)
	for rows.Next() {
		var embedding store.CardEmbedding
		var vec pgvector.Vector
		if err := rows.Scan(
			&embedding.CardID,
			&embedding.Model,
			&vec,
			&embedding.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card embedding: %w", err)
		}
		embedding.Embedding = vec.Slice()
		list = append(list, &embedding)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) ListCardsWithoutEmbedding(ctx context.Context, limit int) ([]*store.Card, error) {
	query := `
		SELECT
			card.id, card.uid, card.creator_id, card.deck_id,
			card.created_ts, card.updated_ts, card.row_status,
			card.front, card.back, card.tags,
			card.a_factor, card.repetition_count, card.interval_days,
			card.lapses_count, card.due_ts, card.last_review_ts
		FROM card
		LEFT JOIN card_embedding ON card_embedding.card_id = card.id
		WHERE card_embedding.card_id IS NULL AND card.row_status = 'NORMAL'
		ORDER BY card.created_ts ASC
		LIMIT $1`
	rows, err := d.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards without embedding: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Card, 0)
	for rows.Next() {
		var card store.Card
		if err := rows.Scan(
			&card.ID,
			&card.UID,
			&card.CreatorID,
			&card.DeckID,
			&card.CreatedTs,
			&card.UpdatedTs,
			&card.RowStatus,
			&card.Front,
			&card.Back,
			&card.Tags,
			&card.AFactor,
			&card.RepetitionCount,
			&card.IntervalDays,
			&card.LapsesCount,
			&card.DueTs,
			&card.LastReviewTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		list = append(list, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
