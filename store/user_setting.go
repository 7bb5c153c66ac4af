package store

import (
	"context"
)

// UserSetting holds the per-user study preferences.
type UserSetting struct {
	UserID int32

	// Locale is the BCP 47 tag used by the web client.
	Locale string
	// Timezone is the IANA timezone the study day boundary is computed in.
	Timezone string
	// DailyNewLimit caps how many never-reviewed cards enter the study
	// queue per day. 0 means no cap.
	DailyNewLimit int32
}

// FindUserSetting is the find condition for user setting.
type FindUserSetting struct {
	UserID *int32
}

// UpsertUserSetting is the upsert condition for user setting.
type UpsertUserSetting struct {
	UserID        int32
	Locale        *string
	Timezone      *string
	DailyNewLimit *int32
}

// DefaultUserSetting returns the settings applied to users without a row.
func DefaultUserSetting(userID int32) *UserSetting {
	return &UserSetting{
		UserID:        userID,
		Locale:        "en",
		Timezone:      "UTC",
		DailyNewLimit: 20,
	}
}

func (s *Store) UpsertUserSetting(ctx context.Context, upsert *UpsertUserSetting) (*UserSetting, error) {
	setting, err := s.driver.UpsertUserSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}

	s.userSettingCache.Set(ctx, cacheKey(setting.UserID), setting)
	return setting, nil
}

// GetUserSetting returns the stored setting for the user, falling back to
// defaults when none has been saved yet.
func (s *Store) GetUserSetting(ctx context.Context, userID int32) (*UserSetting, error) {
	if cached, ok := s.userSettingCache.Get(ctx, cacheKey(userID)); ok {
		if setting, ok := cached.(*UserSetting); ok {
			return setting, nil
		}
	}

	list, err := s.driver.ListUserSettings(ctx, &FindUserSetting{UserID: &userID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return DefaultUserSetting(userID), nil
	}

	setting := list[0]
	s.userSettingCache.Set(ctx, cacheKey(userID), setting)
	return setting, nil
}
