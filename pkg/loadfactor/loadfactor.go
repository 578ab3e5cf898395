// Package loadfactor answers "what is my effective $/kWh at load factor
// X%?" for a tariff, given user-asserted peak demands per TOU/flat demand
// period and an assumed energy split across energy TOU periods.
package loadfactor

import (
	"math"
	"time"

	"github.com/tariffkit/tariffkit/pkg/schedule"
	"github.com/tariffkit/tariffkit/pkg/types"
)

// feasibilityTolerance absorbs floating point slop when comparing a swept
// load factor against the feasibility ceiling.
const feasibilityTolerance = 0.005

// Inputs are the user-asserted demand and energy assumptions for an
// analysis. TOUDemandKW is keyed by demand period index; EnergyPercentages
// is keyed by energy period index with values summing to 100.
type Inputs struct {
	TOUDemandKW       map[int]float64
	FlatDemandKW      float64
	EnergyPercentages map[int]float64
}

// PeakDemand returns the largest positive demand across all inputs. The
// sweep treats it as the billing peak that average load is measured
// against.
func (in Inputs) PeakDemand() float64 {
	var peak float64
	for _, v := range in.TOUDemandKW {
		if v > peak {
			peak = v
		}
	}
	if in.FlatDemandKW > peak {
		peak = in.FlatDemandKW
	}
	return peak
}

// MaxValidLoadFactor computes the feasibility ceiling implied by the
// energy distribution: for each period carrying energy, load factor cannot
// exceed hourPct/energyPct without the implied period power crossing the
// peak. A period with energy but no scheduled hours makes any positive
// load factor infeasible.
func MaxValidLoadFactor(energyPcts, hourPcts map[int]float64) float64 {
	maxValid := 1.0
	for period, energyPct := range energyPcts {
		if energyPct <= 0 {
			continue
		}
		hourPct, ok := hourPcts[period]
		if !ok {
			continue
		}
		if hourPct <= 0 {
			return 0
		}
		if ratio := hourPct / energyPct; ratio < maxValid {
			maxValid = ratio
		}
	}
	return math.Min(maxValid, 1.0)
}

// GenerateLoadFactors sweeps 1% steps up to the feasibility ceiling and
// always appends 100% as the final point. The 100% point is priced with
// hour-percentage substitution when it sits above the ceiling.
func GenerateLoadFactors(maxValid float64) []float64 {
	var out []float64
	for i := 1; i <= 100; i++ {
		lf := float64(i) / 100
		if lf <= maxValid {
			out = append(out, lf)
			continue
		}
		out = append(out, 1.0)
		break
	}
	return out
}

// effectivePercentages selects the energy distribution for a swept point:
// the user's percentages inside the feasible region, the period
// hour-percentages beyond it. At 100% load factor the load runs flat
// around the clock, so consumption follows hours, not preference.
func effectivePercentages(lf, maxValid float64, userPcts, hourPcts map[int]float64) map[int]float64 {
	if lf > maxValid+feasibilityTolerance {
		return hourPcts
	}
	return userPcts
}

// energyCost prices an energy total split across periods by percentage,
// using each period's first-tier rate plus adjustment.
func energyCost(structure []types.TierList, pcts map[int]float64, totalKWH float64) float64 {
	if totalKWH <= 0 {
		return 0
	}
	var cost float64
	for period, pct := range pcts {
		if pct <= 0 || period >= len(structure) {
			continue
		}
		cost += totalKWH * pct / 100 * structure[period].FirstRate()
	}
	return cost
}

// monthlyDemandCost bills the asserted TOU demands and flat demand for one
// month at first-tier rates.
func monthlyDemandCost(t *types.Tariff, in Inputs, month time.Month) float64 {
	var cost float64
	if t.HasTOUDemand() {
		for period, demand := range in.TOUDemandKW {
			if demand > 0 && period < len(t.DemandRateStructure) {
				cost += demand * t.DemandRateStructure[period].FirstRate()
			}
		}
	}
	if t.HasFlatDemand() && in.FlatDemandKW > 0 {
		cost += in.FlatDemandKW * t.FlatDemandTier(month).FirstRate()
	}
	return cost
}

// CalculateRates sweeps load factors for one month and prices each point.
// Demand charges are independent of load factor; energy scales with it.
func CalculateRates(t *types.Tariff, in Inputs, month time.Month) []types.LoadFactorPoint {
	hourPcts := schedule.HourPercentagesForMonth(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, month, schedule.ReferenceYear)
	maxValid := MaxValidLoadFactor(in.EnergyPercentages, hourPcts)
	hours := schedule.HoursInMonth[month-1]
	peak := in.PeakDemand()
	demandCost := monthlyDemandCost(t, in, month)
	fixed := t.MonthlyFixedCharge()

	var points []types.LoadFactorPoint
	for _, lf := range GenerateLoadFactors(maxValid) {
		avgLoad := peak * lf
		totalEnergy := avgLoad * hours
		pcts := effectivePercentages(lf, maxValid, in.EnergyPercentages, hourPcts)
		eCost := energyCost(t.EnergyRateStructure, pcts, totalEnergy)
		total := demandCost + eCost + fixed

		point := types.LoadFactorPoint{
			LoadFactor:     lf,
			PeakDemandKW:   peak,
			AvgLoadKW:      avgLoad,
			TotalEnergyKWH: totalEnergy,
			DemandCharges:  demandCost,
			EnergyCharges:  eCost,
			FixedCharges:   fixed,
			TotalCost:      total,
		}
		if totalEnergy > 0 {
			point.EffectiveRate = total / totalEnergy
		}
		points = append(points, point)
	}
	return points
}

// CalculateAnnualRates sweeps load factors across all 12 months. TOU
// demand bills only in months the period is scheduled; flat demand follows
// the seasonal tier assignment month by month; the user's energy split is
// renormalized each month over that month's active energy periods.
func CalculateAnnualRates(t *types.Tariff, in Inputs) []types.LoadFactorPoint {
	annualHourPcts := schedule.HourPercentagesForYear(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, schedule.ReferenceYear)
	maxValid := MaxValidLoadFactor(in.EnergyPercentages, annualHourPcts)
	peak := in.PeakDemand()
	fixed := t.MonthlyFixedCharge() * types.MonthsPerYear

	var points []types.LoadFactorPoint
	for _, lf := range GenerateLoadFactors(maxValid) {
		avgLoad := peak * lf
		var totalEnergy, demandCost, eCost float64

		for m := time.January; m <= time.December; m++ {
			monthEnergy := avgLoad * schedule.HoursInMonth[m-1]
			totalEnergy += monthEnergy

			if t.HasTOUDemand() {
				active := schedule.ActivePeriodsForMonth(t.DemandWeekdaySchedule, t.DemandWeekendSchedule, m)
				for period, demand := range in.TOUDemandKW {
					if demand > 0 && active[period] && period < len(t.DemandRateStructure) {
						demandCost += demand * t.DemandRateStructure[period].FirstRate()
					}
				}
			}
			if t.HasFlatDemand() && in.FlatDemandKW > 0 {
				demandCost += in.FlatDemandKW * t.FlatDemandTier(m).FirstRate()
			}

			if monthEnergy > 0 {
				eCost += energyCost(t.EnergyRateStructure, monthPercentages(t, in, lf, maxValid, m), monthEnergy)
			}
		}

		total := demandCost + eCost + fixed
		point := types.LoadFactorPoint{
			LoadFactor:     lf,
			PeakDemandKW:   peak,
			AvgLoadKW:      avgLoad,
			TotalEnergyKWH: totalEnergy,
			DemandCharges:  demandCost,
			EnergyCharges:  eCost,
			FixedCharges:   fixed,
			TotalCost:      total,
		}
		if totalEnergy > 0 {
			point.EffectiveRate = total / totalEnergy
		}
		points = append(points, point)
	}
	return points
}

// monthPercentages picks the energy distribution for one month of an
// annual sweep: hour-percentages beyond the feasibility ceiling, otherwise
// the user's percentages restricted to the month's active periods and
// renormalized to 100.
func monthPercentages(t *types.Tariff, in Inputs, lf, maxValid float64, month time.Month) map[int]float64 {
	hourPcts := schedule.HourPercentagesForMonth(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, month, schedule.ReferenceYear)
	if lf > maxValid+feasibilityTolerance {
		return hourPcts
	}
	active := schedule.ActivePeriodsForMonth(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, month)
	restricted := make(map[int]float64)
	var total float64
	for period, pct := range in.EnergyPercentages {
		if active[period] {
			restricted[period] = pct
			total += pct
		}
	}
	if total <= 0 {
		return hourPcts
	}
	for period := range restricted {
		restricted[period] = restricted[period] / total * 100
	}
	return restricted
}
