package srs

// Optimal-factor matrix adaptation.
//
// Each successful review of repetition >= 3 is evidence about the right
// growth factor for its (repetition, category) cell. The cell moves toward
// the evidenced target with a weight that shrinks as usage accumulates, so
// early reviews shape the matrix quickly and a mature matrix is stable.

const (
	// MinOptimalFactor and MaxOptimalFactor bound matrix cells. The floor
	// sits below MinAFactor so a chronically hard cell can shrink growth
	// beyond what the per-card A-factor alone allows.
	MinOptimalFactor = 1.1
	MaxOptimalFactor = 3.5

	// gradeStep is the per-grade-point relative adjustment of the target
	// factor: +5% for a perfect recall above Good, -5% for a hard pass.
	gradeStep = 0.05
	// overdueStep discounts the target when the review happened late: a
	// pass on an overdue card overstates the factor that produced it.
	overdueStep = 0.10
)

// NextOptimalFactor returns the updated cell value after one review.
//
// current is the present cell value (pass 0 for an unpopulated cell along
// with the fallback), usage is how many reviews already shaped the cell,
// and overdueRatio is (actual interval / scheduled interval) - 1, clamped
// to [0, 1] by this function.
func NextOptimalFactor(current float64, fallback float64, usage int32, grade Grade, overdueRatio float64) float64 {
	if current <= 0 {
		current = fallback
	}
	if current <= 0 {
		current = DefaultAFactor
	}

	if overdueRatio < 0 {
		overdueRatio = 0
	}
	if overdueRatio > 1 {
		overdueRatio = 1
	}

	var target float64
	if grade.IsLapse() {
		// A failure says the factor was too aggressive; pull toward the
		// floor by one smoothing step.
		target = MinOptimalFactor
	} else {
		target = current * (1 + gradeStep*float64(grade-GradeGood) - overdueStep*overdueRatio)
	}

	next := current + (target-current)/float64(usage+1)
	return clamp(next, MinOptimalFactor, MaxOptimalFactor)
}
