package v1

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/store"
)

const (
	// MaxUploadSizeBytes bounds one attachment upload.
	MaxUploadSizeBytes = 32 << 20
	// ThumbnailCacheFolder is the folder under the data directory where
	// generated thumbnails are cached.
	ThumbnailCacheFolder = ".thumbnail_cache"
	// thumbnailMaxWidth is the width thumbnails are resized to.
	thumbnailMaxWidth = 512
)

var thumbnailableTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// attachmentMessage is the API shape of an attachment, without the blob.
type attachmentMessage struct {
	UID       string `json:"uid"`
	Filename  string `json:"filename"`
	Type      string `json:"type"`
	Size      int64  `json:"size"`
	CardUID   string `json:"cardUid,omitempty"`
	CreatedTs int64  `json:"createdTs"`
}

// CreateAttachment stores an uploaded file. The multipart form may carry
// a cardUid field to link the attachment immediately.
func (s *APIV1Service) CreateAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return replyError(c, apierrors.InvalidArgument("multipart file field is required"))
	}
	if fileHeader.Size > MaxUploadSizeBytes {
		return replyError(c, apierrors.InvalidArgument("file exceeds the %d MiB upload limit", MaxUploadSizeBytes>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return replyError(c, apierrors.Internal("failed to open upload", err))
	}
	defer file.Close()
	blob, err := io.ReadAll(io.LimitReader(file, MaxUploadSizeBytes+1))
	if err != nil {
		return replyError(c, apierrors.Internal("failed to read upload", err))
	}
	if int64(len(blob)) > MaxUploadSizeBytes {
		return replyError(c, apierrors.InvalidArgument("file exceeds the %d MiB upload limit", MaxUploadSizeBytes>>20))
	}

	create := &store.Attachment{
		UID:       shortuuid.New(),
		CreatorID: user.ID,
		Filename:  filepath.Base(fileHeader.Filename),
		Type:      fileHeader.Header.Get(echo.HeaderContentType),
		Size:      int64(len(blob)),
		Blob:      blob,
	}
	if cardUID := c.FormValue("cardUid"); cardUID != "" {
		card, _, err := s.cardByUID(ctx, user, cardUID)
		if err != nil {
			return replyError(c, err)
		}
		create.CardID = &card.ID
	}

	attachment, err := s.Store.CreateAttachment(ctx, create)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to store attachment", err))
	}
	return c.JSON(http.StatusCreated, s.convertAttachmentFromStore(ctx, attachment))
}

// ListAttachments returns the current user's attachments.
func (s *APIV1Service) ListAttachments(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return replyError(c, err)
	}
	attachments, err := s.Store.ListAttachments(ctx, &store.FindAttachment{
		CreatorID: &user.ID,
		Limit:     &limit,
		Offset:    &offset,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to list attachments", err))
	}

	messages := make([]*attachmentMessage, 0, len(attachments))
	for _, attachment := range attachments {
		messages = append(messages, s.convertAttachmentFromStore(ctx, attachment))
	}
	return c.JSON(http.StatusOK, messages)
}

// GetAttachment returns attachment metadata.
func (s *APIV1Service) GetAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	attachment, err := s.findOwnedAttachment(c, false)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertAttachmentFromStore(ctx, attachment))
}

// DeleteAttachment removes an attachment and its cached thumbnail.
func (s *APIV1Service) DeleteAttachment(c echo.Context) error {
	attachment, err := s.findOwnedAttachment(c, false)
	if err != nil {
		return replyError(c, err)
	}
	if err := s.Store.DeleteAttachment(c.Request().Context(), &store.DeleteAttachment{ID: attachment.ID}); err != nil {
		return replyError(c, apierrors.Internal("failed to delete attachment", err))
	}
	_ = os.Remove(s.thumbnailPath(attachment))
	return c.NoContent(http.StatusNoContent)
}

// ServeAttachment streams the attachment blob. With ?thumbnail=true an
// image attachment is served as a resized, cached thumbnail.
func (s *APIV1Service) ServeAttachment(c echo.Context) error {
	attachment, err := s.findOwnedAttachment(c, true)
	if err != nil {
		return replyError(c, err)
	}

	blob := attachment.Blob
	contentType := attachment.Type
	if c.QueryParam("thumbnail") == "true" && thumbnailableTypes[attachment.Type] {
		if thumbnail, err := s.getOrGenerateThumbnail(c.Request().Context(), attachment); err == nil {
			blob = thumbnail
			contentType = "image/jpeg"
		}
		// Thumbnail failure falls back to the original blob.
	}

	c.Response().Header().Set("Cache-Control", "max-age=3600")
	return c.Blob(http.StatusOK, contentType, blob)
}

func (s *APIV1Service) convertAttachmentFromStore(ctx context.Context, attachment *store.Attachment) *attachmentMessage {
	message := &attachmentMessage{
		UID:       attachment.UID,
		Filename:  attachment.Filename,
		Type:      attachment.Type,
		Size:      attachment.Size,
		CreatedTs: attachment.CreatedTs,
	}
	if attachment.CardID != nil {
		if card, err := s.Store.GetCard(ctx, &store.FindCard{ID: attachment.CardID}); err == nil && card != nil {
			message.CardUID = card.UID
		}
	}
	return message
}

func (s *APIV1Service) findOwnedAttachment(c echo.Context, withBlob bool) (*store.Attachment, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	uid := c.Param("uid")
	attachment, err := s.Store.GetAttachment(c.Request().Context(), &store.FindAttachment{
		UID:     &uid,
		GetBlob: withBlob,
	})
	if err != nil {
		return nil, apierrors.Internal("failed to find attachment", err)
	}
	if attachment == nil {
		return nil, apierrors.NotFound("attachment %q not found", uid)
	}
	if attachment.CreatorID != user.ID {
		return nil, apierrors.PermissionDenied("attachment %q belongs to another user", uid)
	}
	return attachment, nil
}

// getOrGenerateThumbnail returns the cached thumbnail, generating it
// under the semaphore on first access.
func (s *APIV1Service) getOrGenerateThumbnail(ctx context.Context, attachment *store.Attachment) ([]byte, error) {
	path := s.thumbnailPath(attachment)
	if cached, err := os.ReadFile(path); err == nil {
		return cached, nil
	}

	if err := s.thumbnailSemaphore.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "failed to acquire thumbnail semaphore")
	}
	defer s.thumbnailSemaphore.Release(1)

	image, err := imaging.Decode(bytes.NewReader(attachment.Blob), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	thumbnail := imaging.Resize(image, thumbnailMaxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, errors.Wrap(err, "failed to encode thumbnail")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err == nil {
		// Cache write failure only costs a regeneration next time.
		_ = os.WriteFile(path, buf.Bytes(), 0o640)
	}
	return buf.Bytes(), nil
}

func (s *APIV1Service) thumbnailPath(attachment *store.Attachment) string {
	filename := strings.ReplaceAll(attachment.UID, string(os.PathSeparator), "") + ".jpg"
	return filepath.Join(s.Profile.Data, ThumbnailCacheFolder, filename)
}
