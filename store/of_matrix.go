package store

import (
	"context"
	"fmt"
)

// OFMatrixCell is one entry in a user's optimal-factor matrix: the tuned
// interval multiplier for a (repetition number, difficulty category) pair.
// Cells are created lazily on first use.
type OFMatrixCell struct {
	UserID     int32
	Repetition int32
	Category   int32

	OptimalFactor float64
	UsageCount    int32
	UpdatedTs     int64
}

// FindOFMatrixCell is the find condition for an optimal-factor cell.
type FindOFMatrixCell struct {
	UserID     int32
	Repetition *int32
	Category   *int32
}

// UpsertOFMatrixCell is the upsert condition for an optimal-factor cell.
type UpsertOFMatrixCell struct {
	UserID     int32
	Repetition int32
	Category   int32

	OptimalFactor float64
	UsageCount    int32
	UpdatedTs     int64
}

func ofCellCacheKey(userID, repetition, category int32) string {
	return fmt.Sprintf("of/%d/%d/%d", userID, repetition, category)
}

func (s *Store) UpsertOFMatrixCell(ctx context.Context, upsert *UpsertOFMatrixCell) (*OFMatrixCell, error) {
	cell, err := s.driver.UpsertOFMatrixCell(ctx, upsert)
	if err != nil {
		return nil, err
	}

	s.ofMatrixCache.Set(ctx, ofCellCacheKey(cell.UserID, cell.Repetition, cell.Category), cell)
	return cell, nil
}

// GetOFMatrixCell returns the cell for the coordinates, or nil when the
// user has no tuned value yet.
func (s *Store) GetOFMatrixCell(ctx context.Context, userID, repetition, category int32) (*OFMatrixCell, error) {
	key := ofCellCacheKey(userID, repetition, category)
	if cached, ok := s.ofMatrixCache.Get(ctx, key); ok {
		if cell, ok := cached.(*OFMatrixCell); ok {
			return cell, nil
		}
	}

	list, err := s.driver.ListOFMatrixCells(ctx, &FindOFMatrixCell{
		UserID:     userID,
		Repetition: &repetition,
		Category:   &category,
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	cell := list[0]
	s.ofMatrixCache.Set(ctx, key, cell)
	return cell, nil
}

// ListOFMatrixCells lists all tuned cells for a user.
func (s *Store) ListOFMatrixCells(ctx context.Context, find *FindOFMatrixCell) ([]*OFMatrixCell, error) {
	return s.driver.ListOFMatrixCells(ctx, find)
}
