package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashwise/flashwise/store"
)

func (d *DB) UpsertUserSetting(ctx context.Context, upsert *store.UpsertUserSetting) (*store.UserSetting, error) {
	// Start from defaults so a partial upsert does not zero the other
	// columns on first insert.
	setting := store.DefaultUserSetting(upsert.UserID)
	if v := upsert.Locale; v != nil {
		setting.Locale = *v
	}
	if v := upsert.Timezone; v != nil {
		setting.Timezone = *v
	}
	if v := upsert.DailyNewLimit; v != nil {
		setting.DailyNewLimit = *v
	}

	set := []string{}
	if upsert.Locale != nil {
		set = append(set, "locale = EXCLUDED.locale")
	}
	if upsert.Timezone != nil {
		set = append(set, "timezone = EXCLUDED.timezone")
	}
	if upsert.DailyNewLimit != nil {
		set = append(set, "daily_new_limit = EXCLUDED.daily_new_limit")
	}
	if len(set) == 0 {
		set = append(set, "user_id = EXCLUDED.user_id")
	}

	stmt := `INSERT INTO user_setting (user_id, locale, timezone, daily_new_limit)
		VALUES (` + placeholders(4) + `)
		ON CONFLICT (user_id) DO UPDATE SET ` + strings.Join(set, ", ") + `
		RETURNING user_id, locale, timezone, daily_new_limit`
	result := &store.UserSetting{}
	if err := d.db.QueryRowContext(ctx, stmt,
		setting.UserID, setting.Locale, setting.Timezone, setting.DailyNewLimit,
	).Scan(
		&result.UserID,
		&result.Locale,
		&result.Timezone,
		&result.DailyNewLimit,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert user setting: %w", err)
	}

	return result, nil
}

func (d *DB) ListUserSettings(ctx context.Context, find *store.FindUserSetting) ([]*store.UserSetting, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT user_id, locale, timezone, daily_new_limit
		FROM user_setting
		WHERE ` + strings.Join(where, " AND ")
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user settings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.UserSetting, 0)
	for rows.Next() {
		var setting store.UserSetting
		if err := rows.Scan(
			&setting.UserID,
			&setting.Locale,
			&setting.Timezone,
			&setting.DailyNewLimit,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user setting: %w", err)
		}
		list = append(list, &setting)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
