package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/store"
)

const maxDeckNameLength = 256

// deckMessage is the API shape of a deck.
type deckMessage struct {
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	RowStatus   string `json:"rowStatus"`
	CardCount   int32  `json:"cardCount"`
	CreatedTs   int64  `json:"createdTs"`
	UpdatedTs   int64  `json:"updatedTs"`
}

type createDeckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

type updateDeckRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility"`
	RowStatus   *string `json:"rowStatus"`
}

func convertDeckFromStore(deck *store.Deck) *deckMessage {
	return &deckMessage{
		UID:         deck.UID,
		Name:        deck.Name,
		Description: deck.Description,
		Visibility:  deck.Visibility.String(),
		RowStatus:   deck.RowStatus.String(),
		CardCount:   deck.CardCount,
		CreatedTs:   deck.CreatedTs,
		UpdatedTs:   deck.UpdatedTs,
	}
}

// CreateDeck creates a deck for the current user.
func (s *APIV1Service) CreateDeck(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	request := &createDeckRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}
	request.Name = strings.TrimSpace(request.Name)
	if request.Name == "" {
		return replyError(c, apierrors.InvalidArgument("deck name cannot be empty"))
	}
	if len(request.Name) > maxDeckNameLength {
		return replyError(c, apierrors.InvalidArgument("deck name exceeds %d characters", maxDeckNameLength))
	}
	visibility, err := parseVisibility(request.Visibility)
	if err != nil {
		return replyError(c, err)
	}

	deck, err := s.Store.CreateDeck(c.Request().Context(), &store.Deck{
		UID:         shortuuid.New(),
		CreatorID:   user.ID,
		Name:        request.Name,
		Description: request.Description,
		Visibility:  visibility,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to create deck", err))
	}
	return c.JSON(http.StatusCreated, convertDeckFromStore(deck))
}

// ListDecks returns the current user's decks.
func (s *APIV1Service) ListDecks(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	normal := store.Normal
	decks, err := s.Store.ListDecks(c.Request().Context(), &store.FindDeck{
		CreatorID: &user.ID,
		RowStatus: &normal,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to list decks", err))
	}

	messages := make([]*deckMessage, 0, len(decks))
	for _, deck := range decks {
		messages = append(messages, convertDeckFromStore(deck))
	}
	return c.JSON(http.StatusOK, messages)
}

// GetDeck returns one deck. Public decks are readable by anyone.
func (s *APIV1Service) GetDeck(c echo.Context) error {
	deck, err := s.findDeckForRead(c)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, convertDeckFromStore(deck))
}

// UpdateDeck patches a deck owned by the current user.
func (s *APIV1Service) UpdateDeck(c echo.Context) error {
	deck, err := s.findOwnedDeck(c)
	if err != nil {
		return replyError(c, err)
	}

	request := &updateDeckRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}

	update := &store.UpdateDeck{ID: deck.ID}
	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		if name == "" {
			return replyError(c, apierrors.InvalidArgument("deck name cannot be empty"))
		}
		update.Name = &name
	}
	update.Description = request.Description
	if request.Visibility != nil {
		visibility, err := parseVisibility(*request.Visibility)
		if err != nil {
			return replyError(c, err)
		}
		update.Visibility = &visibility
	}
	if request.RowStatus != nil {
		rowStatus := store.RowStatus(*request.RowStatus)
		if rowStatus != store.Normal && rowStatus != store.Archived {
			return replyError(c, apierrors.InvalidArgument("invalid row status %q", *request.RowStatus))
		}
		update.RowStatus = &rowStatus
	}

	updated, err := s.Store.UpdateDeck(c.Request().Context(), update)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to update deck", err))
	}
	return c.JSON(http.StatusOK, convertDeckFromStore(updated))
}

// DeleteDeck removes a deck and its cards.
func (s *APIV1Service) DeleteDeck(c echo.Context) error {
	deck, err := s.findOwnedDeck(c)
	if err != nil {
		return replyError(c, err)
	}
	if err := s.Store.DeleteDeck(c.Request().Context(), &store.DeleteDeck{ID: deck.ID}); err != nil {
		return replyError(c, apierrors.Internal("failed to delete deck", err))
	}
	return c.NoContent(http.StatusNoContent)
}

// findOwnedDeck resolves :uid to a deck owned by the current user.
func (s *APIV1Service) findOwnedDeck(c echo.Context) (*store.Deck, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	uid := c.Param("uid")
	deck, err := s.Store.GetDeck(c.Request().Context(), &store.FindDeck{UID: &uid})
	if err != nil {
		return nil, apierrors.Internal("failed to find deck", err)
	}
	if deck == nil {
		return nil, apierrors.NotFound("deck %q not found", uid)
	}
	if deck.CreatorID != user.ID {
		return nil, apierrors.PermissionDenied("deck %q belongs to another user", uid)
	}
	return deck, nil
}

// findDeckForRead resolves :uid to a deck the current user may read:
// their own, or any public one.
func (s *APIV1Service) findDeckForRead(c echo.Context) (*store.Deck, error) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, err
	}
	uid := c.Param("uid")
	deck, err := s.Store.GetDeck(c.Request().Context(), &store.FindDeck{UID: &uid})
	if err != nil {
		return nil, apierrors.Internal("failed to find deck", err)
	}
	if deck == nil {
		return nil, apierrors.NotFound("deck %q not found", uid)
	}
	if deck.CreatorID != user.ID && deck.Visibility != store.Public {
		return nil, apierrors.PermissionDenied("deck %q belongs to another user", uid)
	}
	return deck, nil
}

func parseVisibility(raw string) (store.Visibility, error) {
	switch raw {
	case "", store.Private.String():
		return store.Private, nil
	case store.Public.String():
		return store.Public, nil
	default:
		return "", apierrors.InvalidArgument("invalid visibility %q", raw)
	}
}
