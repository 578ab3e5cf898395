// Package schedule maps load-profile timestamps onto TOU periods and
// derives period statistics (active months, calendar-weighted hour shares)
// from a tariff's 12x24 weekday/weekend schedules.
package schedule

import (
	"time"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// ReferenceYear anchors calendar-day counting for hour-percentage
// statistics when the caller has no profile year in hand.
const ReferenceYear = 2024

// Resolve returns the TOU period active at one (month, hour, weekend)
// coordinate.
func Resolve(weekday, weekend types.Schedule, month time.Month, hour int, isWeekend bool) int {
	if isWeekend {
		return weekend.At(month, hour)
	}
	return weekday.At(month, hour)
}

// ResolveAll maps whole profile columns onto period indices in one pass.
// The schedules are first flattened into fixed arrays so the loop body is a
// pair of array indexes with no bounds-check surprises or per-row map
// lookups; profiles run to tens of thousands of rows.
func ResolveAll(weekday, weekend types.Schedule, months []time.Month, hours []int, isWeekend []bool) []int {
	var wd, we [types.MonthsPerYear][types.HoursPerDay]int
	for m := 0; m < types.MonthsPerYear; m++ {
		for h := 0; h < types.HoursPerDay; h++ {
			wd[m][h] = weekday[m][h]
			we[m][h] = weekend[m][h]
		}
	}
	periods := make([]int, len(months))
	for i := range months {
		if isWeekend[i] {
			periods[i] = we[int(months[i])-1][hours[i]]
		} else {
			periods[i] = wd[int(months[i])-1][hours[i]]
		}
	}
	return periods
}

// ActivePeriodsForMonth returns the set of period indices appearing
// anywhere in the month's weekday or weekend 24-hour pattern.
func ActivePeriodsForMonth(weekday, weekend types.Schedule, month time.Month) map[int]bool {
	active := make(map[int]bool)
	idx := int(month) - 1
	if idx < len(weekday) {
		for _, p := range weekday[idx] {
			active[p] = true
		}
	}
	if idx < len(weekend) {
		for _, p := range weekend[idx] {
			active[p] = true
		}
	}
	return active
}

// ActivePeriodsForYear counts, per period, how many calendar months the
// period appears in.
func ActivePeriodsForYear(weekday, weekend types.Schedule) map[int]int {
	counts := make(map[int]int)
	for m := time.January; m <= time.December; m++ {
		for p := range ActivePeriodsForMonth(weekday, weekend, m) {
			counts[p]++
		}
	}
	return counts
}
