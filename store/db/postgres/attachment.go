package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/flashwise/flashwise/store"
)

func (d *DB) CreateAttachment(ctx context.Context, create *store.Attachment) (*store.Attachment, error) {
	fields := []string{"uid", "creator_id", "filename", "type", "size", "blob", "card_id"}
	args := []any{create.UID, create.CreatorID, create.Filename, create.Type, create.Size, create.Blob, create.CardID}

	stmt := `INSERT INTO attachment (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	return create, nil
}

func (d *DB) ListAttachments(ctx context.Context, find *store.FindAttachment) ([]*store.Attachment, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CardID; v != nil {
		where, args = append(where, "card_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	blobColumn := "NULL AS blob"
	if find.GetBlob {
		blobColumn = "blob"
	}

	query := `
		SELECT id, uid, creator_id, created_ts, filename, type, size, ` + blobColumn + `, card_id
		FROM attachment
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC, id DESC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Attachment, 0)
	for rows.Next() {
		var attachment store.Attachment
		var cardID sql.NullInt32
		if err := rows.Scan(
			&attachment.ID,
			&attachment.UID,
			&attachment.CreatorID,
			&attachment.CreatedTs,
			&attachment.Filename,
			&attachment.Type,
			&attachment.Size,
			&attachment.Blob,
			&cardID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		if cardID.Valid {
			id := cardID.Int32
			attachment.CardID = &id
		}
		list = append(list, &attachment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateAttachment(ctx context.Context, update *store.UpdateAttachment) error {
	set, args := []string{}, []any{}
	if v := update.CardID; v != nil {
		set, args = append(set, "card_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, update.ID)

	stmt := `UPDATE attachment SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update attachment: %w", err)
	}
	return nil
}

func (d *DB) DeleteAttachment(ctx context.Context, delete *store.DeleteAttachment) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM attachment WHERE id = $1`, delete.ID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}
