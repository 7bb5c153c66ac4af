package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// InstanceSettingKey names a stored instance-wide setting.
type InstanceSettingKey string

const (
	// InstanceSettingSecretSession is the HS256 secret for access tokens.
	InstanceSettingSecretSession InstanceSettingKey = "secret-session"
	// InstanceSettingAllowSignup controls public registration.
	InstanceSettingAllowSignup InstanceSettingKey = "allow-signup"
)

// InstanceSetting is a key-value setting scoped to the whole instance.
type InstanceSetting struct {
	Name  InstanceSettingKey
	Value string
}

// FindInstanceSetting is the find condition for instance setting.
type FindInstanceSetting struct {
	Name *InstanceSettingKey
}

func (s *Store) UpsertInstanceSetting(ctx context.Context, upsert *InstanceSetting) (*InstanceSetting, error) {
	setting, err := s.driver.UpsertInstanceSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}

	s.instanceSettingCache.Set(ctx, string(setting.Name), setting)
	return setting, nil
}

func (s *Store) GetInstanceSetting(ctx context.Context, find *FindInstanceSetting) (*InstanceSetting, error) {
	if find.Name != nil {
		if cached, ok := s.instanceSettingCache.Get(ctx, string(*find.Name)); ok {
			if setting, ok := cached.(*InstanceSetting); ok {
				return setting, nil
			}
		}
	}

	list, err := s.driver.ListInstanceSettings(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	setting := list[0]
	s.instanceSettingCache.Set(ctx, string(setting.Name), setting)
	return setting, nil
}

// GetSecretSession returns the token signing secret, generating and
// persisting one on first use.
func (s *Store) GetSecretSession(ctx context.Context) (string, error) {
	name := InstanceSettingSecretSession
	setting, err := s.GetInstanceSetting(ctx, &FindInstanceSetting{Name: &name})
	if err != nil {
		return "", errors.Wrap(err, "failed to get secret session setting")
	}
	if setting != nil && setting.Value != "" {
		return setting.Value, nil
	}

	secret := uuid.NewString()
	if _, err := s.UpsertInstanceSetting(ctx, &InstanceSetting{
		Name:  InstanceSettingSecretSession,
		Value: secret,
	}); err != nil {
		return "", errors.Wrap(err, "failed to persist secret session setting")
	}
	return secret, nil
}
