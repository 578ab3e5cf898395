package schedule

import (
	"time"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// HoursInMonth returns the hour count of each calendar month for a
// non-leap-year accounting, as used by the load-factor sweep.
var HoursInMonth = [types.MonthsPerYear]float64{744, 672, 744, 720, 744, 720, 744, 744, 720, 744, 720, 744}

// countDays returns the number of weekday and weekend days in a calendar
// month of the given year.
func countDays(year int, month time.Month) (weekdays, weekends int) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			weekends++
		default:
			weekdays++
		}
	}
	return weekdays, weekends
}

// HourPercentagesForMonth computes, for each period in the month's
// schedule, the share of the month's total hours it covers (0-100).
// Weekday and weekend hour-slots are weighted by the actual number of
// weekday/weekend days in the month, so a weekend-only period's share
// moves with how many weekend days the month happens to contain.
func HourPercentagesForMonth(weekday, weekend types.Schedule, month time.Month, year int) map[int]float64 {
	idx := int(month) - 1
	if idx >= len(weekday) || idx >= len(weekend) {
		return map[int]float64{}
	}
	weekdayCount, weekendCount := countDays(year, month)

	periodHours := make(map[int]float64)
	for hour := 0; hour < types.HoursPerDay; hour++ {
		periodHours[weekday[idx][hour]] += float64(weekdayCount)
		periodHours[weekend[idx][hour]] += float64(weekendCount)
	}
	totalHours := float64(weekdayCount+weekendCount) * types.HoursPerDay

	pcts := make(map[int]float64, len(periodHours))
	for p, hours := range periodHours {
		if totalHours > 0 {
			pcts[p] = hours / totalHours * 100
		} else {
			pcts[p] = 0
		}
	}
	return pcts
}

// HourPercentagesForYear computes each period's share of the full year's
// hours (0-100) across all twelve months.
func HourPercentagesForYear(weekday, weekend types.Schedule, year int) map[int]float64 {
	if len(weekday) < types.MonthsPerYear || len(weekend) < types.MonthsPerYear {
		return map[int]float64{}
	}
	periodHours := make(map[int]float64)
	var totalHours float64
	for m := time.January; m <= time.December; m++ {
		weekdayCount, weekendCount := countDays(year, m)
		idx := int(m) - 1
		for hour := 0; hour < types.HoursPerDay; hour++ {
			periodHours[weekday[idx][hour]] += float64(weekdayCount)
			periodHours[weekend[idx][hour]] += float64(weekendCount)
		}
		totalHours += float64(weekdayCount+weekendCount) * types.HoursPerDay
	}

	pcts := make(map[int]float64, len(periodHours))
	for p, hours := range periodHours {
		if totalHours > 0 {
			pcts[p] = hours / totalHours * 100
		} else {
			pcts[p] = 0
		}
	}
	return pcts
}
