package store

import (
	"context"

	"github.com/pkg/errors"
)

// Role is the type of a user role.
type Role string

const (
	// RoleHost is the HOST role: the first registered user, owns the instance.
	RoleHost Role = "HOST"
	// RoleAdmin is the ADMIN role.
	RoleAdmin Role = "ADMIN"
	// RoleUser is the USER role.
	RoleUser Role = "USER"
)

func (r Role) String() string {
	return string(r)
}

// User is the object representing a registered user.
type User struct {
	ID        int32
	RowStatus RowStatus
	CreatedTs int64
	UpdatedTs int64

	Username     string
	Role         Role
	Email        string
	Nickname     string
	PasswordHash string
}

// UpdateUser is the update condition for user.
type UpdateUser struct {
	ID int32

	UpdatedTs    *int64
	RowStatus    *RowStatus
	Username     *string
	Role         *Role
	Email        *string
	Nickname     *string
	PasswordHash *string
}

// FindUser is the find condition for user.
type FindUser struct {
	ID        *int32
	RowStatus *RowStatus
	Username  *string
	Role      *Role
	Email     *string
}

// DeleteUser is the delete condition for user.
type DeleteUser struct {
	ID int32
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}

	s.userCache.Set(ctx, cacheKey(user.ID), user)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}

	s.userCache.Set(ctx, cacheKey(user.ID), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}

	for _, user := range list {
		s.userCache.Set(ctx, cacheKey(user.ID), user)
	}
	return list, nil
}

func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil {
		if cached, ok := s.userCache.Get(ctx, cacheKey(*find.ID), nil); ok {
			user, ok := cached.(*User)
			if ok {
				return user, nil
			}
		}
	}

	list, err := s.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.userCache.Set(ctx, cacheKey(user.ID), user)
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	user, err := s.GetUser(ctx, &FindUser{ID: &delete.ID})
	if err != nil {
		return errors.Wrap(err, "failed to find user")
	}
	if user == nil {
		return errors.Errorf("user not found with id %d", delete.ID)
	}

	if err := s.driver.DeleteUser(ctx, delete); err != nil {
		return err
	}

	s.userCache.Delete(ctx, cacheKey(delete.ID))
	return nil
}
