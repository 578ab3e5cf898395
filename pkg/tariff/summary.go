package tariff

import (
	"time"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// RateStats summarizes the nonzero rates of one rate class.
type RateStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// Summary is a high-level description of a tariff used by listings and the
// API without exposing the full document.
type Summary struct {
	Utility     string    `json:"utility"`
	Name        string    `json:"name"`
	Sector      string    `json:"sector"`
	Description string    `json:"description"`
	EnergyRates RateStats `json:"energyRates"`
	DemandRates RateStats `json:"demandRates"`
	FlatDemand  RateStats `json:"flatDemandRates"`
}

// Summarize computes rate statistics across the tariff's schedules. Energy
// and demand stats weight each rate by its scheduled (month, hour) slots,
// mirroring how the rates appear across the year; flat demand uses the
// twelve monthly assignments.
func Summarize(t *types.Tariff) Summary {
	s := Summary{
		Utility:     t.Utility,
		Name:        t.Name,
		Sector:      t.Sector,
		Description: t.Description,
	}

	s.EnergyRates = scheduledRateStats(t.EnergyRateStructure, t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule)
	if t.HasTOUDemand() {
		s.DemandRates = scheduledRateStats(t.DemandRateStructure, t.DemandWeekdaySchedule, t.DemandWeekendSchedule)
	}
	if t.HasFlatDemand() {
		var rates []float64
		for m := time.January; m <= time.December; m++ {
			if r := t.FlatDemandTier(m).FirstRate(); r > 0 {
				rates = append(rates, r)
			}
		}
		s.FlatDemand = statsOf(rates)
	}
	return s
}

func scheduledRateStats(structure []types.TierList, weekday, weekend types.Schedule) RateStats {
	var rates []float64
	for _, sched := range []types.Schedule{weekday, weekend} {
		for _, hours := range sched {
			for _, p := range hours {
				if p < 0 || p >= len(structure) {
					continue
				}
				if r := structure[p].FirstRate(); r > 0 {
					rates = append(rates, r)
				}
			}
		}
	}
	return statsOf(rates)
}

func statsOf(rates []float64) RateStats {
	st := RateStats{Count: len(rates)}
	if len(rates) == 0 {
		return st
	}
	st.Min = rates[0]
	st.Max = rates[0]
	var sum float64
	for _, r := range rates {
		if r < st.Min {
			st.Min = r
		}
		if r > st.Max {
			st.Max = r
		}
		sum += r
	}
	st.Avg = sum / float64(len(rates))
	return st
}
