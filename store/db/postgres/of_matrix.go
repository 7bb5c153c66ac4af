package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashwise/flashwise/store"
)

func (d *DB) UpsertOFMatrixCell(ctx context.Context, upsert *store.UpsertOFMatrixCell) (*store.OFMatrixCell, error) {
	stmt := `INSERT INTO of_matrix (user_id, repetition, category, optimal_factor, usage_count, updated_ts)
		VALUES (` + placeholders(6) + `)
		ON CONFLICT (user_id, repetition, category) DO UPDATE SET
			optimal_factor = EXCLUDED.optimal_factor,
			usage_count = EXCLUDED.usage_count,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, repetition, category, optimal_factor, usage_count, updated_ts`
	cell := &store.OFMatrixCell{}
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.UserID, upsert.Repetition, upsert.Category,
		upsert.OptimalFactor, upsert.UsageCount, upsert.UpdatedTs,
	).Scan(
		&cell.UserID,
		&cell.Repetition,
		&cell.Category,
		&cell.OptimalFactor,
		&cell.UsageCount,
		&cell.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert of_matrix cell: %w", err)
	}

	return cell, nil
}

func (d *DB) ListOFMatrixCells(ctx context.Context, find *store.FindOFMatrixCell) ([]*store.OFMatrixCell, error) {
	where, args := []string{"user_id = $1"}, []any{find.UserID}

	if v := find.Repetition; v != nil {
		where, args = append(where, "repetition = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Category; v != nil {
		where, args = append(where, "category = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT user_id, repetition, category, optimal_factor, usage_count, updated_ts
		FROM of_matrix
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY repetition ASC, category ASC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query of_matrix: %w", err)
	}
	defer rows.Close()

	list := make([]*store.OFMatrixCell, 0)
	for rows.Next() {
		var cell store.OFMatrixCell
		if err := rows.Scan(
			&cell.UserID,
			&cell.Repetition,
			&cell.Category,
			&cell.OptimalFactor,
			&cell.UsageCount,
			&cell.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan of_matrix cell: %w", err)
		}
		list = append(list, &cell)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
