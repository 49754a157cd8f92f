package ladder

import (
	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/shopspring/decimal"
)

// DefaultTolerance is the smallest gap flagged, in probability units (5 points)
const DefaultTolerance = 0.05

// Checker finds monotonicity violations within ladder groups
type Checker struct {
	tolerance decimal.Decimal
}

// NewChecker creates a checker that flags gaps strictly larger than tolerance
func NewChecker(tolerance float64) *Checker {
	return &Checker{tolerance: decimal.NewFromFloat(tolerance)}
}

// Tolerance returns the configured tolerance
func (c *Checker) Tolerance() float64 {
	return c.tolerance.InexactFloat64()
}

// Check compares every pair of rungs, not just neighbours, because a
// violation can skip a rung. Groups hold a handful of deadlines, so the
// quadratic scan is cheap. Differences are computed in decimal so that a gap
// exactly equal to the tolerance is never flagged through float rounding.
func (c *Checker) Check(group model.LadderGroup) []model.Violation {
	rungs := make([]model.Rung, len(group.Rungs))
	copy(rungs, group.Rungs)
	sortRungs(rungs)

	var violations []model.Violation
	for i := 0; i < len(rungs); i++ {
		for j := i + 1; j < len(rungs); j++ {
			earlier, later := rungs[i], rungs[j]

			gap := decimal.NewFromFloat(earlier.Market.Probability).
				Sub(decimal.NewFromFloat(later.Market.Probability))
			if !gap.GreaterThan(c.tolerance) {
				continue
			}

			violations = append(violations, model.Violation{
				BaseQuestion:    group.BaseQuestion,
				Earlier:         earlier.Market,
				Later:           later.Market,
				EarlierDeadline: earlier.Deadline,
				LaterDeadline:   later.Deadline,
				EarlierProb:     earlier.Market.Probability,
				LaterProb:       later.Market.Probability,
				Size:            gap.InexactFloat64(),
			})
		}
	}
	return violations
}

// CheckAll groups the markets and checks every group
func (c *Checker) CheckAll(markets []model.Market) []model.Violation {
	var all []model.Violation
	for _, g := range Group(markets) {
		all = append(all, c.Check(g)...)
	}
	return all
}
