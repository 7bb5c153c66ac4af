package store

import (
	"context"
)

// Attachment is a media blob referenced by a card (images, audio).
type Attachment struct {
	ID        int32
	UID       string
	CreatorID int32
	CreatedTs int64

	Filename string
	// Type is the MIME type reported at upload.
	Type string
	Size int64
	Blob []byte

	// CardID links the attachment to a card. Nil until the card is saved.
	CardID *int32
}

// FindAttachment is the find condition for attachment.
type FindAttachment struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	CardID    *int32

	// GetBlob controls whether the blob column is fetched.
	GetBlob bool

	Limit  *int
	Offset *int
}

// UpdateAttachment is the update condition for attachment.
type UpdateAttachment struct {
	ID     int32
	CardID *int32
}

// DeleteAttachment is the delete condition for attachment.
type DeleteAttachment struct {
	ID int32
}

func (s *Store) CreateAttachment(ctx context.Context, create *Attachment) (*Attachment, error) {
	return s.driver.CreateAttachment(ctx, create)
}

func (s *Store) ListAttachments(ctx context.Context, find *FindAttachment) ([]*Attachment, error) {
	return s.driver.ListAttachments(ctx, find)
}

func (s *Store) GetAttachment(ctx context.Context, find *FindAttachment) (*Attachment, error) {
	list, err := s.driver.ListAttachments(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateAttachment(ctx context.Context, update *UpdateAttachment) error {
	return s.driver.UpdateAttachment(ctx, update)
}

func (s *Store) DeleteAttachment(ctx context.Context, delete *DeleteAttachment) error {
	return s.driver.DeleteAttachment(ctx, delete)
}
