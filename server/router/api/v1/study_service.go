package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/server/internal/observability"
	"github.com/flashwise/flashwise/server/service/srs"
	"github.com/flashwise/flashwise/store"
)

// reviewMessage is the API shape of one review row.
type reviewMessage struct {
	CardUID        string  `json:"cardUid"`
	Grade          int32   `json:"grade"`
	AFactorBefore  float64 `json:"aFactorBefore"`
	AFactorAfter   float64 `json:"aFactorAfter"`
	IntervalBefore int32   `json:"intervalBefore"`
	IntervalAfter  int32   `json:"intervalAfter"`
	DurationMs     int32   `json:"durationMs,omitempty"`
	CreatedTs      int64   `json:"createdTs"`
}

type reviewCardRequest struct {
	Grade      int32 `json:"grade"`
	DurationMs int32 `json:"durationMs"`
}

type reviewCardResponse struct {
	Card   *cardMessage   `json:"card"`
	Review *reviewMessage `json:"review"`
}

type studyQueueResponse struct {
	Cards []*cardMessage `json:"cards"`
	// DueCount and NewCount partition the queue.
	DueCount int `json:"dueCount"`
	NewCount int `json:"newCount"`
}

// ReviewCard grades a recall of a card and reschedules it.
func (s *APIV1Service) ReviewCard(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	reqCtx := observability.NewRequestContext(nil, "review_card", user.ID)

	card, deckUID, err := s.cardByUID(ctx, user, c.Param("uid"))
	if err != nil {
		return replyError(c, err)
	}

	request := &reviewCardRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}
	grade := srs.Grade(request.Grade)
	if !grade.IsValid() {
		return replyError(c, apierrors.InvalidArgument("grade must be between 0 and 5"))
	}
	if request.DurationMs < 0 {
		return replyError(c, apierrors.InvalidArgument("durationMs cannot be negative"))
	}

	updated, review, err := s.SRSService.ReviewCard(ctx, user, card, grade, request.DurationMs)
	if err != nil {
		reqCtx.Error("review failed", err)
		return replyError(c, apierrors.Internal("failed to review card", err))
	}

	reqCtx.Info("card reviewed",
		slog.String(observability.LogFieldCardUID, card.UID),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	return c.JSON(http.StatusOK, &reviewCardResponse{
		Card:   s.convertCardFromStore(updated, deckUID, false),
		Review: convertReviewFromStore(review, card.UID),
	})
}

// ListCardReviews returns the review history of a card, newest first.
func (s *APIV1Service) ListCardReviews(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	card, _, err := s.cardByUID(ctx, user, c.Param("uid"))
	if err != nil {
		return replyError(c, err)
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return replyError(c, err)
	}

	reviews, err := s.Store.ListReviews(ctx, &store.FindReview{
		CardID: &card.ID,
		Limit:  &limit,
		Offset: &offset,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to list reviews", err))
	}

	messages := make([]*reviewMessage, 0, len(reviews))
	for _, review := range reviews {
		messages = append(messages, convertReviewFromStore(review, card.UID))
	}
	return c.JSON(http.StatusOK, messages)
}

// GetStudyQueue returns the cards the user should study now.
func (s *APIV1Service) GetStudyQueue(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}

	setting, err := s.Store.GetUserSetting(ctx, user.ID)
	if err != nil {
		return replyError(c, apierrors.Internal("failed to load user setting", err))
	}

	cards, err := s.SRSService.StudyQueue(ctx, user, setting, time.Now())
	if err != nil {
		return replyError(c, apierrors.Internal("failed to build study queue", err))
	}

	decksByID, err := s.deckUIDsByID(ctx, user)
	if err != nil {
		return replyError(c, err)
	}

	response := &studyQueueResponse{Cards: make([]*cardMessage, 0, len(cards))}
	for _, card := range cards {
		if card.IsNew() {
			response.NewCount++
		} else {
			response.DueCount++
		}
		response.Cards = append(response.Cards, s.convertCardFromStore(card, decksByID[card.DeckID], false))
	}
	return c.JSON(http.StatusOK, response)
}

func convertReviewFromStore(review *store.Review, cardUID string) *reviewMessage {
	return &reviewMessage{
		CardUID:        cardUID,
		Grade:          review.Grade,
		AFactorBefore:  review.AFactorBefore,
		AFactorAfter:   review.AFactorAfter,
		IntervalBefore: review.IntervalBefore,
		IntervalAfter:  review.IntervalAfter,
		DurationMs:     review.DurationMs,
		CreatedTs:      review.CreatedTs,
	}
}
