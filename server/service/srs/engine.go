// Package srs implements the spaced-repetition scheduler: an SM-2-family
// algorithm whose interval growth factors are tuned per user through an
// optimal-factor matrix keyed by repetition number and difficulty category.
package srs

import (
	"hash/fnv"
	"math"
	"time"
)

// Grade is the recall quality of a review on the SM-2 0..5 scale.
type Grade int32

const (
	// GradeBlackout is a complete failure to recall.
	GradeBlackout Grade = 0
	// GradeWrong is an incorrect answer where the correct one felt familiar.
	GradeWrong Grade = 1
	// GradeWrongEasy is an incorrect answer that felt easy in hindsight.
	GradeWrongEasy Grade = 2
	// GradeHard is a correct answer recalled with serious difficulty.
	GradeHard Grade = 3
	// GradeGood is a correct answer after some hesitation.
	GradeGood Grade = 4
	// GradePerfect is an instant, effortless recall.
	GradePerfect Grade = 5
)

// IsValid reports whether the grade is on the 0..5 scale.
func (g Grade) IsValid() bool {
	return g >= GradeBlackout && g <= GradePerfect
}

// IsLapse reports whether the grade counts as a recall failure.
func (g Grade) IsLapse() bool {
	return g < GradeHard
}

const (
	// DefaultAFactor is the easiness assigned to new cards.
	DefaultAFactor = 2.5
	// MinAFactor and MaxAFactor bound the per-card easiness.
	MinAFactor = 1.3
	MaxAFactor = 3.0

	// firstInterval and secondInterval are the fixed early intervals, in
	// days, before the optimal-factor matrix takes over.
	firstInterval  = 1
	secondInterval = 6

	// lapseInterval is the relearning interval after a failed review.
	lapseInterval = 1

	// MaxRepetition caps the matrix row; interval growth beyond this many
	// successful repetitions reuses the last row.
	MaxRepetition = 20
	// CategoryCount is the number of difficulty columns in the matrix.
	CategoryCount = 10

	// Intervals at or above fuzzThresholdDays get a deterministic ±5%
	// spread so cards created together do not stay due together forever.
	fuzzThresholdDays = 7
	fuzzFraction      = 0.05
)

// State is the scheduling state carried by a card.
type State struct {
	AFactor         float64
	RepetitionCount int32
	IntervalDays    int32
	LapsesCount     int32
	DueTs           int64
	LastReviewTs    int64
}

// Result is the outcome of scheduling one review.
type Result struct {
	State

	AFactorBefore  float64
	IntervalBefore int32

	// Repetition and Category are the matrix coordinates this review used
	// (and should feed back into).
	Repetition int32
	Category   int32
	// MatrixUsed is true when the interval came from a matrix factor
	// rather than the fixed early intervals or the lapse reset.
	MatrixUsed bool
}

// AdjustAFactor applies the SM-2 easiness update for a grade and clamps
// the result.
func AdjustAFactor(af float64, grade Grade) float64 {
	if af == 0 {
		af = DefaultAFactor
	}
	q := float64(grade)
	af += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return clamp(af, MinAFactor, MaxAFactor)
}

// Category maps an A-factor onto a difficulty column: 0 for the easiest
// cards (af near MaxAFactor) through CategoryCount-1 for the hardest.
func Category(af float64) int32 {
	if af == 0 {
		af = DefaultAFactor
	}
	step := (MaxAFactor - MinAFactor) / float64(CategoryCount)
	cat := int32(math.Round((MaxAFactor - af) / step))
	if cat < 0 {
		cat = 0
	}
	if cat >= CategoryCount {
		cat = CategoryCount - 1
	}
	return cat
}

// ClampRepetition bounds a repetition number onto a matrix row.
func ClampRepetition(rep int32) int32 {
	if rep < 1 {
		return 1
	}
	if rep > MaxRepetition {
		return MaxRepetition
	}
	return rep
}

// Engine computes scheduling transitions. It is stateless; persistence is
// the service's concern.
type Engine struct{}

// NewEngine creates a scheduling engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Schedule computes the next scheduling state for a graded review.
//
// optimalFactor is the matrix value for the (repetition, category) pair
// the card is entering; pass 0 when the user has no tuned value yet, in
// which case the adjusted A-factor is used, which degrades exactly to
// SM-2. seed makes the interval fuzz deterministic per card.
func (*Engine) Schedule(state State, grade Grade, optimalFactor float64, now time.Time, seed string) Result {
	result := Result{
		State:          state,
		AFactorBefore:  state.AFactor,
		IntervalBefore: state.IntervalDays,
	}
	if result.AFactor == 0 {
		result.AFactor = DefaultAFactor
		result.AFactorBefore = DefaultAFactor
	}

	// The matrix coordinates are fixed before the A-factor moves: the row
	// is the repetition being attempted, the column reflects how hard the
	// card was judged going in.
	result.Repetition = ClampRepetition(state.RepetitionCount + 1)
	result.Category = Category(result.AFactor)

	result.AFactor = AdjustAFactor(result.AFactor, grade)

	if grade.IsLapse() {
		// The one-day relearn step counts as repetition 1, so the next
		// success lands on repetition 2 and its fixed six-day interval.
		result.LapsesCount++
		result.RepetitionCount = 1
		result.IntervalDays = lapseInterval
	} else {
		result.RepetitionCount++
		switch {
		case result.RepetitionCount == 1:
			result.IntervalDays = firstInterval
		case result.RepetitionCount == 2:
			result.IntervalDays = secondInterval
		default:
			factor := optimalFactor
			if factor <= 0 {
				factor = result.AFactor
			} else {
				result.MatrixUsed = true
			}
			next := int32(math.Ceil(float64(state.IntervalDays) * factor))
			// A successful review always pushes the card further out.
			if next <= state.IntervalDays {
				next = state.IntervalDays + 1
			}
			result.IntervalDays = next
		}
	}

	if result.IntervalDays < 1 {
		result.IntervalDays = 1
	}
	result.IntervalDays = fuzzInterval(result.IntervalDays, seed)
	// Fuzz must not undo the growth guarantee for matrix-governed reviews.
	if !grade.IsLapse() && result.RepetitionCount > 2 && result.IntervalDays <= state.IntervalDays {
		result.IntervalDays = state.IntervalDays + 1
	}

	result.LastReviewTs = now.Unix()
	result.DueTs = now.AddDate(0, 0, int(result.IntervalDays)).Unix()

	return result
}

// fuzzInterval spreads long intervals by up to ±5%, derived from the seed
// so the same card always fuzzes the same way.
func fuzzInterval(interval int32, seed string) int32 {
	if interval < fuzzThresholdDays || seed == "" {
		return interval
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	// Map the hash onto [-fuzzFraction, +fuzzFraction].
	unit := float64(h.Sum32())/float64(math.MaxUint32)*2 - 1
	fuzzed := int32(math.Round(float64(interval) * (1 + unit*fuzzFraction)))
	if fuzzed < 1 {
		fuzzed = 1
	}
	return fuzzed
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
