package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/server/service/srs"
	"github.com/flashwise/flashwise/store"
)

const (
	maxCardFieldLength  = 8192
	defaultCardPageSize = 50
	maxCardPageSize     = 200
)

// cardMessage is the API shape of a card.
type cardMessage struct {
	UID       string   `json:"uid"`
	DeckUID   string   `json:"deckUid"`
	Front     string   `json:"front"`
	Back      string   `json:"back"`
	FrontHTML string   `json:"frontHtml,omitempty"`
	BackHTML  string   `json:"backHtml,omitempty"`
	Tags      []string `json:"tags"`
	RowStatus string   `json:"rowStatus"`
	CreatedTs int64    `json:"createdTs"`
	UpdatedTs int64    `json:"updatedTs"`

	AFactor         float64 `json:"aFactor"`
	RepetitionCount int32   `json:"repetitionCount"`
	IntervalDays    int32   `json:"intervalDays"`
	LapsesCount     int32   `json:"lapsesCount"`
	DueTs           int64   `json:"dueTs"`
	LastReviewTs    int64   `json:"lastReviewTs,omitempty"`
	New             bool    `json:"new"`
}

type createCardRequest struct {
	DeckUID string   `json:"deckUid"`
	Front   string   `json:"front"`
	Back    string   `json:"back"`
	Tags    []string `json:"tags"`
}

type updateCardRequest struct {
	DeckUID   *string   `json:"deckUid"`
	Front     *string   `json:"front"`
	Back      *string   `json:"back"`
	Tags      *[]string `json:"tags"`
	RowStatus *string   `json:"rowStatus"`
}

func (s *APIV1Service) convertCardFromStore(card *store.Card, deckUID string, render bool) *cardMessage {
	message := &cardMessage{
		UID:       card.UID,
		DeckUID:   deckUID,
		Front:     card.Front,
		Back:      card.Back,
		Tags:      decodeTags(card.Tags),
		RowStatus: card.RowStatus.String(),
		CreatedTs: card.CreatedTs,
		UpdatedTs: card.UpdatedTs,

		AFactor:         card.AFactor,
		RepetitionCount: card.RepetitionCount,
		IntervalDays:    card.IntervalDays,
		LapsesCount:     card.LapsesCount,
		DueTs:           card.DueTs,
		LastReviewTs:    card.LastReviewTs,
		New:             card.IsNew(),
	}
	if render {
		if html, err := s.Markdown.RenderHTML(card.Front); err == nil {
			message.FrontHTML = html
		}
		if html, err := s.Markdown.RenderHTML(card.Back); err == nil {
			message.BackHTML = html
		}
	}
	return message
}

// CreateCard creates a card in one of the current user's decks. New cards
// are immediately due.
func (s *APIV1Service) CreateCard(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	request := &createCardRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}
	if err := validateCardField("front", request.Front); err != nil {
		return replyError(c, err)
	}
	if err := validateCardField("back", request.Back); err != nil {
		return replyError(c, err)
	}

	deck, err := s.deckByUID(ctx, user, request.DeckUID)
	if err != nil {
		return replyError(c, err)
	}

	now := time.Now().Unix()
	card, err := s.Store.CreateCard(ctx, &store.Card{
		UID:       shortuuid.New(),
		CreatorID: user.ID,
		DeckID:    deck.ID,
		Front:     strings.TrimSpace(request.Front),
		Back:      strings.TrimSpace(request.Back),
		Tags:      encodeTags(request.Tags),
		AFactor:   srs.DefaultAFactor,
		DueTs:     now,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to create card", err))
	}
	return c.JSON(http.StatusCreated, s.convertCardFromStore(card, deck.UID, true))
}

// ListCards returns the current user's cards, optionally narrowed by a
// CEL filter expression and paginated with limit/offset.
func (s *APIV1Service) ListCards(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	var filter *cardFilter
	if expression := c.QueryParam("filter"); expression != "" {
		filter, err = parseCardFilter(expression)
		if err != nil {
			return replyError(c, err)
		}
	} else {
		filter = &cardFilter{}
	}

	normal := store.Normal
	find := &store.FindCard{
		CreatorID: &user.ID,
		RowStatus: &normal,
	}
	decksByID, err := s.deckUIDsByID(ctx, user)
	if err != nil {
		return replyError(c, err)
	}
	if filter.DeckUID != nil {
		deck, err := s.deckByUID(ctx, user, *filter.DeckUID)
		if err != nil {
			return replyError(c, err)
		}
		find.DeckID = &deck.ID
	}
	if filter.OnlyNew != nil {
		find.OnlyNew = *filter.OnlyNew
		find.OnlyReviewed = !*filter.OnlyNew
	}
	if filter.Due != nil && *filter.Due {
		nowTs := time.Now().Unix()
		find.DueBefore = &nowTs
		find.OrderByDue = true
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return replyError(c, err)
	}
	// Tag narrowing happens after the query, so the SQL page is only
	// applied when no tag filter is present.
	if len(filter.Tags) == 0 {
		find.Limit = &limit
		find.Offset = &offset
	}

	cards, err := s.Store.ListCards(ctx, find)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to list cards", err))
	}
	if len(filter.Tags) > 0 {
		cards = filterCardsByTags(cards, filter.Tags)
		if offset < len(cards) {
			end := offset + limit
			if end > len(cards) {
				end = len(cards)
			}
			cards = cards[offset:end]
		} else {
			cards = nil
		}
	}

	render := c.QueryParam("render") == "true"
	messages := make([]*cardMessage, 0, len(cards))
	for _, card := range cards {
		messages = append(messages, s.convertCardFromStore(card, decksByID[card.DeckID], render))
	}
	return c.JSON(http.StatusOK, messages)
}

// GetCard returns one card with rendered HTML.
func (s *APIV1Service) GetCard(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	card, deckUID, err := s.cardByUID(c.Request().Context(), user, c.Param("uid"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, s.convertCardFromStore(card, deckUID, true))
}

// UpdateCard patches a card's content. Scheduling state is never writable
// through this endpoint; it only moves through reviews.
func (s *APIV1Service) UpdateCard(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	card, deckUID, err := s.cardByUID(ctx, user, c.Param("uid"))
	if err != nil {
		return replyError(c, err)
	}

	request := &updateCardRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}

	update := &store.UpdateCard{ID: card.ID}
	if request.Front != nil {
		front := strings.TrimSpace(*request.Front)
		if err := validateCardField("front", front); err != nil {
			return replyError(c, err)
		}
		update.Front = &front
	}
	if request.Back != nil {
		back := strings.TrimSpace(*request.Back)
		if err := validateCardField("back", back); err != nil {
			return replyError(c, err)
		}
		update.Back = &back
	}
	if request.Tags != nil {
		tags := encodeTags(*request.Tags)
		update.Tags = &tags
	}
	if request.DeckUID != nil {
		deck, err := s.deckByUID(ctx, user, *request.DeckUID)
		if err != nil {
			return replyError(c, err)
		}
		update.DeckID = &deck.ID
		deckUID = deck.UID
	}
	if request.RowStatus != nil {
		rowStatus := store.RowStatus(*request.RowStatus)
		if rowStatus != store.Normal && rowStatus != store.Archived {
			return replyError(c, apierrors.InvalidArgument("invalid row status %q", *request.RowStatus))
		}
		update.RowStatus = &rowStatus
	}

	if err := s.Store.UpdateCard(ctx, update); err != nil {
		return replyError(c, apierrors.Internal("failed to update card", err))
	}

	updated, err := s.Store.GetCard(ctx, &store.FindCard{ID: &card.ID})
	if err != nil || updated == nil {
		return replyError(c, apierrors.Internal("failed to reload card", err))
	}
	return c.JSON(http.StatusOK, s.convertCardFromStore(updated, deckUID, true))
}

// DeleteCard removes a card and its review history.
func (s *APIV1Service) DeleteCard(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	card, _, err := s.cardByUID(c.Request().Context(), user, c.Param("uid"))
	if err != nil {
		return replyError(c, err)
	}
	if err := s.Store.DeleteCard(c.Request().Context(), &store.DeleteCard{ID: card.ID}); err != nil {
		return replyError(c, apierrors.Internal("failed to delete card", err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) cardByUID(ctx context.Context, user *store.User, uid string) (*store.Card, string, error) {
	card, err := s.Store.GetCard(ctx, &store.FindCard{UID: &uid})
	if err != nil {
		return nil, "", apierrors.Internal("failed to find card", err)
	}
	if card == nil {
		return nil, "", apierrors.NotFound("card %q not found", uid)
	}
	if card.CreatorID != user.ID {
		return nil, "", apierrors.PermissionDenied("card %q belongs to another user", uid)
	}

	deck, err := s.Store.GetDeck(ctx, &store.FindDeck{ID: &card.DeckID})
	if err != nil {
		return nil, "", apierrors.Internal("failed to find deck", err)
	}
	deckUID := ""
	if deck != nil {
		deckUID = deck.UID
	}
	return card, deckUID, nil
}

func (s *APIV1Service) deckByUID(ctx context.Context, user *store.User, uid string) (*store.Deck, error) {
	if uid == "" {
		return nil, apierrors.InvalidArgument("deckUid is required")
	}
	deck, err := s.Store.GetDeck(ctx, &store.FindDeck{UID: &uid})
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

func (s *APIV1Service) deckUIDsByID(ctx context.Context, user *store.User) (map[int32]string, error) {
	decks, err := s.Store.ListDecks(ctx, &store.FindDeck{CreatorID: &user.ID})
	if err != nil {
		return nil, apierrors.Internal("failed to list decks", err)
	}
	byID := make(map[int32]string, len(decks))
	for _, deck := range decks {
		byID[deck.ID] = deck.UID
	}
	return byID, nil
}

func validateCardField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return apierrors.InvalidArgument("card %s cannot be empty", name)
	}
	if len(value) > maxCardFieldLength {
		return apierrors.InvalidArgument("card %s exceeds %d characters", name, maxCardFieldLength)
	}
	return nil
}

func parsePagination(c echo.Context) (limit int, offset int, err error) {
	limit = defaultCardPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 1 {
			return 0, 0, apierrors.InvalidArgument("invalid limit %q", raw)
		}
		if parsed > maxCardPageSize {
			parsed = maxCardPageSize
		}
		limit = parsed
	}
	if raw := c.QueryParam("offset"); raw != "" {
		parsed, parseErr := strconv.Atoi(raw)
		if parseErr != nil || parsed < 0 {
			return 0, 0, apierrors.InvalidArgument("invalid offset %q", raw)
		}
		offset = parsed
	}
	return limit, offset, nil
}

func encodeTags(tags []string) string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}

func filterCardsByTags(cards []*store.Card, required []string) []*store.Card {
	filtered := make([]*store.Card, 0, len(cards))
	for _, card := range cards {
		tags := decodeTags(card.Tags)
		tagSet := make(map[string]bool, len(tags))
		for _, tag := range tags {
			tagSet[tag] = true
		}
		match := true
		for _, tag := range required {
			if !tagSet[strings.ToLower(tag)] {
				match = false
				break
			}
		}
		if match {
			filtered = append(filtered, card)
		}
	}
	return filtered
}
