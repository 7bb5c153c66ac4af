package srs

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/flashwise/flashwise/store"
)

// Service runs the scheduler against the store: it loads the card and the
// matrix cell, computes the transition, and persists the card update, the
// review row, and the adapted cell.
type Service struct {
	store  *store.Store
	engine *Engine
}

// NewService creates a scheduling service.
func NewService(st *store.Store) *Service {
	return &Service{
		store:  st,
		engine: NewEngine(),
	}
}

// ReviewCard grades a recall of the card and reschedules it. The returned
// review row carries the before/after state for the client.
func (s *Service) ReviewCard(ctx context.Context, user *store.User, card *store.Card, grade Grade, durationMs int32) (*store.Card, *store.Review, error) {
	if !grade.IsValid() {
		return nil, nil, errors.Errorf("invalid grade %d: must be 0..5", grade)
	}

	now := time.Now()
	state := State{
		AFactor:         card.AFactor,
		RepetitionCount: card.RepetitionCount,
		IntervalDays:    card.IntervalDays,
		LapsesCount:     card.LapsesCount,
		DueTs:           card.DueTs,
		LastReviewTs:    card.LastReviewTs,
	}

	// The matrix row/column the review will use are derived from the
	// pre-review state, so look the cell up against the same coordinates
	// the engine computes.
	repetition := ClampRepetition(state.RepetitionCount + 1)
	category := Category(orDefault(state.AFactor))

	var optimalFactor float64
	cell, err := s.store.GetOFMatrixCell(ctx, user.ID, repetition, category)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load optimal-factor cell")
	}
	if cell != nil {
		optimalFactor = cell.OptimalFactor
	}

	result := s.engine.Schedule(state, grade, optimalFactor, now, card.UID)

	updatedTs := now.Unix()
	update := &store.UpdateCard{
		ID:              card.ID,
		UpdatedTs:       &updatedTs,
		AFactor:         &result.AFactor,
		RepetitionCount: &result.RepetitionCount,
		IntervalDays:    &result.IntervalDays,
		LapsesCount:     &result.LapsesCount,
		DueTs:           &result.DueTs,
		LastReviewTs:    &result.LastReviewTs,
	}
	if err := s.store.UpdateCard(ctx, update); err != nil {
		return nil, nil, errors.Wrap(err, "failed to update card scheduling state")
	}

	review, err := s.store.CreateReview(ctx, &store.Review{
		CardID:         card.ID,
		UserID:         user.ID,
		Grade:          int32(grade),
		AFactorBefore:  result.AFactorBefore,
		AFactorAfter:   result.AFactor,
		IntervalBefore: result.IntervalBefore,
		IntervalAfter:  result.IntervalDays,
		DurationMs:     durationMs,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to record review")
	}

	// Adapt the matrix for reviews the matrix governs. Early repetitions
	// use fixed intervals and would only add noise.
	if repetition >= 3 {
		s.adaptMatrix(ctx, user.ID, repetition, category, optimalFactor, result, grade, state, now)
	}

	card.AFactor = result.AFactor
	card.RepetitionCount = result.RepetitionCount
	card.IntervalDays = result.IntervalDays
	card.LapsesCount = result.LapsesCount
	card.DueTs = result.DueTs
	card.LastReviewTs = result.LastReviewTs
	card.UpdatedTs = updatedTs

	return card, review, nil
}

func (s *Service) adaptMatrix(ctx context.Context, userID int32, repetition, category int32, currentFactor float64, result Result, grade Grade, prev State, now time.Time) {
	var usage int32
	if cell, err := s.store.GetOFMatrixCell(ctx, userID, repetition, category); err == nil && cell != nil {
		usage = cell.UsageCount
	}

	next := NextOptimalFactor(currentFactor, result.AFactor, usage, grade, overdueRatio(prev, now))
	if _, err := s.store.UpsertOFMatrixCell(ctx, &store.UpsertOFMatrixCell{
		UserID:        userID,
		Repetition:    repetition,
		Category:      category,
		OptimalFactor: next,
		UsageCount:    usage + 1,
		UpdatedTs:     now.Unix(),
	}); err != nil {
		// Matrix adaptation is best-effort; the review itself is already
		// durable.
		slog.Warn("failed to adapt optimal-factor cell",
			"user_id", userID, "repetition", repetition, "category", category, "error", err)
	}
}

// overdueRatio measures how late the review was relative to its scheduled
// interval: 0 for on time (or early), capped at 1 for twice the interval
// or later.
func overdueRatio(prev State, now time.Time) float64 {
	if prev.IntervalDays <= 0 || prev.LastReviewTs == 0 {
		return 0
	}
	actualDays := now.Sub(time.Unix(prev.LastReviewTs, 0)).Hours() / 24
	ratio := actualDays/float64(prev.IntervalDays) - 1
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func orDefault(af float64) float64 {
	if af == 0 {
		return DefaultAFactor
	}
	return af
}
