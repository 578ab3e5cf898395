package schedule

import (
	"github.com/tariffkit/tariffkit/pkg/types"
)

// RateGrid is a 12x24 matrix of effective rates (rate+adj of each slot's
// scheduled period), the shape rendered as a heatmap by callers.
type RateGrid struct {
	Weekday [types.MonthsPerYear][types.HoursPerDay]float64 `json:"weekday"`
	Weekend [types.MonthsPerYear][types.HoursPerDay]float64 `json:"weekend"`
}

// BuildRateGrid expands a schedule pair and rate structure into effective
// per-slot rates. Slots referencing a missing period price at 0.
func BuildRateGrid(structure []types.TierList, weekday, weekend types.Schedule) RateGrid {
	var g RateGrid
	if len(weekday) < types.MonthsPerYear || len(weekend) < types.MonthsPerYear {
		return g
	}
	rateOf := func(p int) float64 {
		if p < 0 || p >= len(structure) {
			return 0
		}
		return structure[p].FirstRate()
	}
	for m := 0; m < types.MonthsPerYear; m++ {
		for h := 0; h < types.HoursPerDay; h++ {
			g.Weekday[m][h] = rateOf(weekday[m][h])
			g.Weekend[m][h] = rateOf(weekend[m][h])
		}
	}
	return g
}
