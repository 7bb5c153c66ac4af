package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashwise/flashwise/store"
)

func (d *DB) CreateDeck(ctx context.Context, create *store.Deck) (*store.Deck, error) {
	fields := []string{"uid", "creator_id", "name", "description", "visibility"}
	args := []any{create.UID, create.CreatorID, create.Name, create.Description, create.Visibility}

	stmt := `INSERT INTO deck (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts, row_status`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	return create, nil
}

func (d *DB) ListDecks(ctx context.Context, find *store.FindDeck) ([]*store.Deck, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "deck.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "deck.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "deck.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "deck.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Visibility; v != nil {
		where, args = append(where, "deck.visibility = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			deck.id, deck.uid, deck.creator_id, deck.created_ts, deck.updated_ts,
			deck.row_status, deck.name, deck.description, deck.visibility,
			COUNT(card.id) AS card_count
		FROM deck
		LEFT JOIN card ON card.deck_id = deck.id AND card.row_status = 'NORMAL'
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY deck.id
		ORDER BY deck.created_ts DESC, deck.id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Deck, 0)
	for rows.Next() {
		var deck store.Deck
		if err := rows.Scan(
			&deck.ID,
			&deck.UID,
			&deck.CreatorID,
			&deck.CreatedTs,
			&deck.UpdatedTs,
			&deck.RowStatus,
			&deck.Name,
			&deck.Description,
			&deck.Visibility,
			&deck.CardCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		list = append(list, &deck)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateDeck(ctx context.Context, update *store.UpdateDeck) (*store.Deck, error) {
	set, args := []string{}, []any{}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Name; v != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Visibility; v != nil {
		set, args = append(set, "visibility = "+placeholder(len(args)+1)), append(args, *v)
	}
	args = append(args, update.ID)

	stmt := `UPDATE deck SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, creator_id, created_ts, updated_ts, row_status, name, description, visibility`
	deck := &store.Deck{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&deck.ID,
		&deck.UID,
		&deck.CreatorID,
		&deck.CreatedTs,
		&deck.UpdatedTs,
		&deck.RowStatus,
		&deck.Name,
		&deck.Description,
		&deck.Visibility,
	); err != nil {
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}

	return deck, nil
}

func (d *DB) DeleteDeck(ctx context.Context, delete *store.DeleteDeck) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM deck WHERE id = ?`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}
