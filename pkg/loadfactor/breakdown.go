package loadfactor

import (
	"sort"
	"time"

	"github.com/tariffkit/tariffkit/pkg/schedule"
	"github.com/tariffkit/tariffkit/pkg/types"
)

// MonthlyBreakdown expands each swept point into per-period energy and
// demand components for one month's analysis.
func MonthlyBreakdown(t *types.Tariff, in Inputs, points []types.LoadFactorPoint, month time.Month) []types.BreakdownRow {
	hourPcts := schedule.HourPercentagesForMonth(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, month, schedule.ReferenceYear)
	maxValid := MaxValidLoadFactor(in.EnergyPercentages, hourPcts)

	rows := make([]types.BreakdownRow, 0, len(points))
	for _, point := range points {
		pcts := effectivePercentages(point.LoadFactor, maxValid, in.EnergyPercentages, hourPcts)
		row := baseRow(point)
		row.EnergyPeriods = energyPeriodCosts(t, pcts, point.TotalEnergyKWH)
		if t.HasTOUDemand() {
			row.DemandPeriods = touDemandCosts(t, in, nil)
		}
		if t.HasFlatDemand() {
			tiers := t.FlatDemandMonths
			tier := 0
			if int(month)-1 < len(tiers) {
				tier = tiers[int(month)-1]
			}
			row.FlatDemand = []types.FlatDemandCost{flatDemandCost(t, in, tier, 0)}
		}
		rows = append(rows, row)
	}
	return rows
}

// AnnualBreakdown expands each swept point of an annual analysis,
// attaching month-active counts to TOU demand periods and one entry per
// distinct seasonal flat-demand tier.
func AnnualBreakdown(t *types.Tariff, in Inputs, points []types.LoadFactorPoint) []types.BreakdownRow {
	hourPcts := schedule.HourPercentagesForYear(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, schedule.ReferenceYear)
	maxValid := MaxValidLoadFactor(in.EnergyPercentages, hourPcts)

	var demandMonthCounts map[int]int
	if t.HasTOUDemand() {
		demandMonthCounts = schedule.ActivePeriodsForYear(t.DemandWeekdaySchedule, t.DemandWeekendSchedule)
	}
	tierMonthCounts := make(map[int]int)
	if t.HasFlatDemand() {
		for _, tier := range t.FlatDemandMonths {
			tierMonthCounts[tier]++
		}
	}

	rows := make([]types.BreakdownRow, 0, len(points))
	for _, point := range points {
		pcts := effectivePercentages(point.LoadFactor, maxValid, in.EnergyPercentages, hourPcts)
		row := baseRow(point)
		row.EnergyPeriods = energyPeriodCosts(t, pcts, point.TotalEnergyKWH)
		if t.HasTOUDemand() {
			row.DemandPeriods = touDemandCosts(t, in, demandMonthCounts)
		}
		if t.HasFlatDemand() {
			tiers := make([]int, 0, len(tierMonthCounts))
			for tier := range tierMonthCounts {
				tiers = append(tiers, tier)
			}
			sort.Ints(tiers)
			for _, tier := range tiers {
				row.FlatDemand = append(row.FlatDemand, flatDemandCost(t, in, tier, tierMonthCounts[tier]))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func baseRow(point types.LoadFactorPoint) types.BreakdownRow {
	return types.BreakdownRow{
		LoadFactor:         point.LoadFactor,
		AvgLoadKW:          point.AvgLoadKW,
		TotalEnergyKWH:     point.TotalEnergyKWH,
		TotalDemandCharges: point.DemandCharges,
		TotalEnergyCharges: point.EnergyCharges,
		FixedCharges:       point.FixedCharges,
		TotalCost:          point.TotalCost,
		EffectiveRate:      point.EffectiveRate,
	}
}

func energyPeriodCosts(t *types.Tariff, pcts map[int]float64, totalKWH float64) []types.EnergyPeriodCost {
	out := make([]types.EnergyPeriodCost, 0, len(t.EnergyRateStructure))
	for period := range t.EnergyRateStructure {
		rate := t.EnergyRateStructure[period].FirstRate()
		kwh := totalKWH * pcts[period] / 100
		out = append(out, types.EnergyPeriodCost{
			Period: period,
			Label:  t.EnergyPeriodLabel(period),
			KWH:    kwh,
			Rate:   rate,
			Cost:   kwh * rate,
		})
	}
	return out
}

// touDemandCosts lists every TOU demand period; monthCounts non-nil marks
// an annual analysis, multiplying each period's cost by its active months.
func touDemandCosts(t *types.Tariff, in Inputs, monthCounts map[int]int) []types.DemandPeriodCost {
	out := make([]types.DemandPeriodCost, 0, len(t.DemandRateStructure))
	for period := range t.DemandRateStructure {
		rate := t.DemandRateStructure[period].FirstRate()
		demand := in.TOUDemandKW[period]
		cost := demand * rate
		entry := types.DemandPeriodCost{
			Period:   period,
			Label:    t.DemandPeriodLabel(period),
			DemandKW: demand,
			Rate:     rate,
			Cost:     cost,
		}
		if monthCounts != nil {
			entry.MonthsActive = monthCounts[period]
			entry.Cost = cost * float64(entry.MonthsActive)
		}
		out = append(out, entry)
	}
	return out
}

// flatDemandCost prices the flat demand input against one seasonal tier.
// monthsCovered is 0 for single-month analyses.
func flatDemandCost(t *types.Tariff, in Inputs, tier, monthsCovered int) types.FlatDemandCost {
	var rate float64
	if tier >= 0 && tier < len(t.FlatDemandStructure) {
		rate = t.FlatDemandStructure[tier].FirstRate()
	} else if len(t.FlatDemandStructure) > 0 {
		rate = t.FlatDemandStructure[0].FirstRate()
	}
	cost := in.FlatDemandKW * rate
	if monthsCovered > 0 {
		cost *= float64(monthsCovered)
	}
	return types.FlatDemandCost{
		Tier:          tier,
		DemandKW:      in.FlatDemandKW,
		Rate:          rate,
		Cost:          cost,
		MonthsCovered: monthsCovered,
	}
}
