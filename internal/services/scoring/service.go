// Package scoring turns raw judge marks into averages and final scores.
// Everything here is pure; callers persist the results.
package scoring

import (
	"math"
	"slices"

	"github.com/mcoot/teamscore/internal/model"
)

const (
	// MaxMark is the highest mark a judge may award
	MaxMark = 10.0

	// trimThreshold is the number of nonzero marks at which the single
	// lowest and single highest are dropped
	trimThreshold = 4
)

// Average computes the panel average for a player's marks.
// Zero marks count as not yet scored and are excluded.
func Average(marks model.Marks) float64 {
	scored := make([]float64, 0, len(model.JudgeRoles))
	for _, v := range marks.Values() {
		if v > 0 {
			scored = append(scored, v)
		}
	}

	if len(scored) == 0 {
		return 0
	}

	if len(scored) >= trimThreshold {
		slices.Sort(scored)
		scored = scored[1 : len(scored)-1]
	}

	var sum float64
	for _, v := range scored {
		sum += v
	}
	return Round2(sum / float64(len(scored)))
}

// FinalScore subtracts both deductions from the average, floored at zero
func FinalScore(average, deduction, otherDeduction float64) float64 {
	return Round2(math.Max(0, average-math.Max(0, deduction)-math.Max(0, otherDeduction)))
}

// Recompute refreshes the derived fields of a player score in place
func Recompute(ps *model.PlayerScore) {
	ps.AverageMarks = Average(ps.Marks)
	ps.FinalScore = FinalScore(ps.AverageMarks, ps.Deduction, ps.OtherDeduction)
}

// ValidateMark checks a single mark is in [0, MaxMark]
func ValidateMark(v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxMark {
		return model.ErrMarkOutOfRange
	}
	return nil
}

// ValidateMarks checks every seat's mark is in range
func ValidateMarks(marks model.Marks) error {
	for _, v := range marks.Values() {
		if err := ValidateMark(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDeductions rejects negative deductions
func ValidateDeductions(deduction, otherDeduction float64) error {
	if math.IsNaN(deduction) || math.IsNaN(otherDeduction) || deduction < 0 || otherDeduction < 0 {
		return model.ErrNegativeDeduction
	}
	return nil
}

// ScoredCount returns the number of nonzero marks
func ScoredCount(marks model.Marks) int {
	n := 0
	for _, v := range marks.Values() {
		if v > 0 {
			n++
		}
	}
	return n
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
