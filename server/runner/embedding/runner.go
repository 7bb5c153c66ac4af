// Package embedding backfills card embeddings in the background so
// duplicate detection covers cards created before AI was enabled or
// while the provider was down.
package embedding

import (
	"context"
	"log/slog"
	"time"

	"github.com/flashwise/flashwise/plugin/ai"
	"github.com/flashwise/flashwise/store"
)

// Runner periodically embeds cards that have no stored vector yet.
type Runner struct {
	store    *store.Store
	provider *ai.Provider
	interval time.Duration
	// batchSize bounds one pass; small batches keep memory and provider
	// load flat.
	batchSize int
}

// NewRunner creates an embedding backfill runner.
func NewRunner(st *store.Store, provider *ai.Provider) *Runner {
	return &Runner{
		store:     st,
		provider:  provider,
		interval:  2 * time.Minute,
		batchSize: 16,
	}
}

// Run processes once at startup, then on every tick until the context is
// canceled.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce embeds one batch of cards without vectors.
func (r *Runner) RunOnce(ctx context.Context) {
	cards, err := r.store.ListCardsWithoutEmbedding(ctx, r.batchSize)
	if err != nil {
		slog.Error("failed to list cards without embedding", "error", err)
		return
	}
	if len(cards) == 0 {
		return
	}

	slog.Debug("backfilling card embeddings", "count", len(cards))
	for _, card := range cards {
		select {
		case <-ctx.Done():
			return
		default:
		}

		vector, err := r.provider.Embedding(ctx, card.Front)
		if err != nil {
			// Provider failures stop the batch; the next tick retries.
			slog.Warn("failed to embed card", "card_uid", card.UID, "error", err)
			return
		}
		if _, err := r.store.UpsertCardEmbedding(ctx, &store.CardEmbedding{
			CardID:    card.ID,
			Model:     r.provider.EmbeddingModel(),
			Embedding: vector,
		}); err != nil {
			slog.Error("failed to store card embedding", "card_uid", card.UID, "error", err)
			return
		}
	}
}
