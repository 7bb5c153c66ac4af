package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// UserSetting model related methods.
	UpsertUserSetting(ctx context.Context, upsert *UpsertUserSetting) (*UserSetting, error)
	ListUserSettings(ctx context.Context, find *FindUserSetting) ([]*UserSetting, error)

	// InstanceSetting model related methods.
	UpsertInstanceSetting(ctx context.Context, upsert *InstanceSetting) (*InstanceSetting, error)
	ListInstanceSettings(ctx context.Context, find *FindInstanceSetting) ([]*InstanceSetting, error)

	// Deck model related methods.
	CreateDeck(ctx context.Context, create *Deck) (*Deck, error)
	ListDecks(ctx context.Context, find *FindDeck) ([]*Deck, error)
	UpdateDeck(ctx context.Context, update *UpdateDeck) (*Deck, error)
	DeleteDeck(ctx context.Context, delete *DeleteDeck) error

	// Card model related methods.
	CreateCard(ctx context.Context, create *Card) (*Card, error)
	ListCards(ctx context.Context, find *FindCard) ([]*Card, error)
	UpdateCard(ctx context.Context, update *UpdateCard) error
	DeleteCard(ctx context.Context, delete *DeleteCard) error
	CountCards(ctx context.Context, find *FindCard) (int64, error)

	// Review model related methods.
	CreateReview(ctx context.Context, create *Review) (*Review, error)
	ListReviews(ctx context.Context, find *FindReview) ([]*Review, error)
	CountReviews(ctx context.Context, find *FindReview) (int64, error)

	// Optimal-factor matrix related methods.
	UpsertOFMatrixCell(ctx context.Context, upsert *UpsertOFMatrixCell) (*OFMatrixCell, error)
	ListOFMatrixCells(ctx context.Context, find *FindOFMatrixCell) ([]*OFMatrixCell, error)

	// CardEmbedding model related methods.
	UpsertCardEmbedding(ctx context.Context, upsert *CardEmbedding) (*CardEmbedding, error)
	ListCardEmbeddings(ctx context.Context, find *FindCardEmbedding) ([]*CardEmbedding, error)
	ListCardsWithoutEmbedding(ctx context.Context, limit int) ([]*Card, error)

	// Attachment model related methods.
	CreateAttachment(ctx context.Context, create *Attachment) (*Attachment, error)
	ListAttachments(ctx context.Context, find *FindAttachment) ([]*Attachment, error)
	UpdateAttachment(ctx context.Context, update *UpdateAttachment) error
	DeleteAttachment(ctx context.Context, delete *DeleteAttachment) error
}
