package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashwise/flashwise/store"
)

func reviewFindClause(find *store.FindReview) (string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CardID; v != nil {
		where, args = append(where, "card_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedAfter; v != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatedBefore; v != nil {
		where, args = append(where, "created_ts < "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MinGrade; v != nil {
		where, args = append(where, "grade >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if find.FirstReviewsOnly {
		where = append(where, "interval_before = 0")
	}

	return strings.Join(where, " AND "), args
}

func (d *DB) CreateReview(ctx context.Context, create *store.Review) (*store.Review, error) {
	fields := []string{
		"card_id", "user_id", "grade",
		"a_factor_before", "a_factor_after",
		"interval_before", "interval_after", "duration_ms",
	}
	args := []any{
		create.CardID, create.UserID, create.Grade,
		create.AFactorBefore, create.AFactorAfter,
		create.IntervalBefore, create.IntervalAfter, create.DurationMs,
	}

	stmt := `INSERT INTO review (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return create, nil
}

func (d *DB) ListReviews(ctx context.Context, find *store.FindReview) ([]*store.Review, error) {
	whereClause, args := reviewFindClause(find)

	query := `
		SELECT
			id, card_id, user_id, created_ts, grade,
			a_factor_before, a_factor_after,
			interval_before, interval_after, duration_ms
		FROM review
		WHERE ` + whereClause + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Review, 0)
	for rows.Next() {
		var review store.Review
		if err := rows.Scan(
			&review.ID,
			&review.CardID,
			&review.UserID,
			&review.CreatedTs,
			&review.Grade,
			&review.AFactorBefore,
			&review.AFactorAfter,
			&review.IntervalBefore,
			&review.IntervalAfter,
			&review.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		list = append(list, &review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) CountReviews(ctx context.Context, find *store.FindReview) (int64, error) {
	whereClause, args := reviewFindClause(find)

	var count int64
	query := `SELECT COUNT(*) FROM review WHERE ` + whereClause
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
