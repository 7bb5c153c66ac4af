package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashwise/flashwise/store"
)

func cardFindClause(find *store.FindCard) (string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "card.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "card.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "card.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DeckID; v != nil {
		where, args = append(where, "card.deck_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "card.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "card.due_ts <= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "card.created_ts > "+placeholder(len(args)+1)), append(args, *v)
	}
	if find.OnlyNew {
		where = append(where, "card.repetition_count = 0 AND card.last_review_ts = 0")
	}
	if find.OnlyReviewed {
		where = append(where, "card.last_review_ts > 0")
	}

	return strings.Join(where, " AND "), args
}

func (d *DB) CreateCard(ctx context.Context, create *store.Card) (*store.Card, error) {
	fields := []string{
		"uid", "creator_id", "deck_id", "front", "back", "tags",
		"a_factor", "repetition_count", "interval_days", "lapses_count",
		"due_ts", "last_review_ts",
	}
	args := []any{
		create.UID, create.CreatorID, create.DeckID, create.Front, create.Back, create.Tags,
		create.AFactor, create.RepetitionCount, create.IntervalDays, create.LapsesCount,
		create.DueTs, create.LastReviewTs,
	}

	stmt := `INSERT INTO card (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts, updated_ts, row_status`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return create, nil
}

func (d *DB) ListCards(ctx context.Context, find *store.FindCard) ([]*store.Card, error) {
	whereClause, args := cardFindClause(find)

	orderBy := "ORDER BY card.created_ts DESC, card.id DESC"
	if find.OrderByDue {
		orderBy = "ORDER BY card.due_ts ASC, card.id ASC"
	}

	query := `
		SELECT
			card.id, card.uid, card.creator_id, card.deck_id,
			card.created_ts, card.updated_ts, card.row_status,
			card.front, card.back, card.tags,
			card.a_factor, card.repetition_count, card.interval_days,
			card.lapses_count, card.due_ts, card.last_review_ts
		FROM card
		WHERE ` + whereClause + ` ` + orderBy
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
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

func (d *DB) UpdateCard(ctx context.Context, update *store.UpdateCard) error {
	set, args := []string{}, []any{}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.DeckID; v != nil {
		set, args = append(set, "deck_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Front; v != nil {
		set, args = append(set, "front = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Back; v != nil {
		set, args = append(set, "back = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Tags; v != nil {
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.AFactor; v != nil {
		set, args = append(set, "a_factor = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.RepetitionCount; v != nil {
		set, args = append(set, "repetition_count = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.IntervalDays; v != nil {
		set, args = append(set, "interval_days = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.LapsesCount; v != nil {
		set, args = append(set, "lapses_count = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.DueTs; v != nil {
		set, args = append(set, "due_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.LastReviewTs; v != nil {
		set, args = append(set, "last_review_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE card SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

func (d *DB) DeleteCard(ctx context.Context, delete *store.DeleteCard) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM card WHERE id = $1`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

func (d *DB) CountCards(ctx context.Context, find *store.FindCard) (int64, error) {
	whereClause, args := cardFindClause(find)

	var count int64
	query := `SELECT COUNT(*) FROM card WHERE ` + whereClause
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}
