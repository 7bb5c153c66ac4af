package v1

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/flashwise/flashwise/plugin/ai"
	"github.com/flashwise/flashwise/plugin/ai/generator"
	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/server/internal/observability"
	"github.com/flashwise/flashwise/server/service/srs"
	"github.com/flashwise/flashwise/store"
)

// duplicateSimilarityThreshold marks a generated card as a likely
// duplicate of an existing one.
const duplicateSimilarityThreshold = 0.92

type generateCardsRequest struct {
	DeckUID    string `json:"deckUid"`
	SourceText string `json:"sourceText"`
	CardCount  int    `json:"cardCount"`
	Language   string `json:"language"`
	// DryRun returns drafts without persisting them.
	DryRun bool `json:"dryRun"`
}

type generatedCardMessage struct {
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Tags  []string `json:"tags,omitempty"`
	// Duplicate flags drafts too similar to an existing card in the deck.
	Duplicate bool `json:"duplicate"`
	// UID is set when the draft was persisted.
	UID string `json:"uid,omitempty"`
}

type generateCardsResponse struct {
	Cards     []*generatedCardMessage `json:"cards"`
	Persisted int                     `json:"persisted"`
}

type aiUsageMessage struct {
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	CostUSD          float64 `json:"costUsd"`
	RequestCount     int64   `json:"requestCount"`
	BudgetUSD        float64 `json:"budgetUsd"`
}

// GenerateCards produces flashcard drafts from source text with the chat
// model and stores the non-duplicate ones in the target deck.
func (s *APIV1Service) GenerateCards(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	if s.Generator == nil {
		return replyError(c, apierrors.AIUnavailable("AI generation is not enabled on this instance"))
	}
	if err := s.UsageMonitor.CheckBudget(user.ID); err != nil {
		return replyError(c, apierrors.BudgetExceeded("daily AI budget exhausted"))
	}

	request := &generateCardsRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierrors.InvalidArgument("malformed request body"))
	}
	deck, err := s.deckByUID(ctx, user, request.DeckUID)
	if err != nil {
		return replyError(c, err)
	}

	reqCtx := observability.NewRequestContext(nil, "generate_cards", user.ID)

	result, err := s.Generator.Generate(ctx, &generator.Request{
		SourceText: request.SourceText,
		CardCount:  request.CardCount,
		Language:   request.Language,
	})
	if err != nil {
		reqCtx.Error("generation failed", err)
		return replyError(c, apierrors.AIUnavailable("card generation failed"))
	}
	s.UsageMonitor.RecordChat(user.ID, &ai.ChatResult{
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	})

	existing, err := s.Store.ListCardEmbeddings(ctx, &store.FindCardEmbedding{DeckID: &deck.ID})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to load deck embeddings", err))
	}

	response := &generateCardsResponse{}
	for _, draft := range result.Cards {
		message := &generatedCardMessage{
			Front: draft.Front,
			Back:  draft.Back,
			Tags:  draft.Tags,
		}
		response.Cards = append(response.Cards, message)

		embedding := s.embedDraft(ctx, user.ID, draft.Front)
		if embedding != nil && isDuplicate(embedding, existing) {
			message.Duplicate = true
			continue
		}
		if request.DryRun {
			continue
		}

		card, err := s.Store.CreateCard(ctx, &store.Card{
			UID:       shortuuid.New(),
			CreatorID: user.ID,
			DeckID:    deck.ID,
			Front:     draft.Front,
			Back:      draft.Back,
			Tags:      encodeTags(draft.Tags),
			AFactor:   srs.DefaultAFactor,
			DueTs:     time.Now().Unix(),
		})
		if err != nil {
			return replyError(c, apierrors.Internal("failed to store generated card", err))
		}
		message.UID = card.UID
		response.Persisted++

		if embedding != nil {
			stored, err := s.Store.UpsertCardEmbedding(ctx, &store.CardEmbedding{
				CardID:    card.ID,
				Model:     s.AIProvider.EmbeddingModel(),
				Embedding: embedding,
			})
			if err != nil {
				reqCtx.Warn("failed to store card embedding", slog.String("card_uid", card.UID))
			} else {
				existing = append(existing, stored)
			}
		}
	}

	reqCtx.Info("cards generated",
		slog.Int("drafts", len(result.Cards)),
		slog.Int("persisted", response.Persisted),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))
	return c.JSON(http.StatusOK, response)
}

// GetAIUsage returns the current user's AI spend for today.
func (s *APIV1Service) GetAIUsage(c echo.Context) error {
	user, err := s.currentUser(c)
	if err != nil {
		return replyError(c, err)
	}
	if s.UsageMonitor == nil {
		return replyError(c, apierrors.AIUnavailable("AI is not enabled on this instance"))
	}

	usage := s.UsageMonitor.Usage(user.ID)
	return c.JSON(http.StatusOK, &aiUsageMessage{
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		CostUSD:          usage.CostUSD,
		RequestCount:     usage.RequestCount,
		BudgetUSD:        usage.BudgetUSD,
	})
}

// embedDraft embeds the draft front text. Failure degrades to no
// duplicate detection rather than failing the request.
func (s *APIV1Service) embedDraft(ctx context.Context, userID int32, front string) []float32 {
	embedding, err := s.AIProvider.Embedding(ctx, front)
	if err != nil {
		slog.Warn("failed to embed generated card", "error", err)
		return nil
	}
	s.UsageMonitor.RecordEmbedding(userID, len(front))
	return embedding
}

func isDuplicate(embedding []float32, existing []*store.CardEmbedding) bool {
	for _, candidate := range existing {
		if ai.CosineSimilarity(embedding, candidate.Embedding) >= duplicateSimilarityThreshold {
			return true
		}
	}
	return false
}
