package tariff

import (
	"context"
	"log/slog"

	"github.com/tariffkit/tariffkit/pkg/log"
	"github.com/tariffkit/tariffkit/pkg/types"
)

// Validate checks a tariff's structural invariants before any calculation:
// required energy fields, 12x24 schedule dimensions, all-or-nothing demand
// sections, non-empty rate structures, and schedule period indices that
// stay in bounds of their rate structure.
func Validate(t *types.Tariff, defaultVoltage float64) error {
	if len(t.EnergyRateStructure) == 0 {
		return invalidf("energy rate structure cannot be empty")
	}
	if len(t.EnergyWeekdaySchedule) == 0 {
		return invalidf("missing required field: energyweekdayschedule")
	}
	if len(t.EnergyWeekendSchedule) == 0 {
		return invalidf("missing required field: energyweekendschedule")
	}
	if !t.EnergyWeekdaySchedule.Valid() {
		return invalidf("energy weekday schedule must have 12 months of 24 hours")
	}
	if !t.EnergyWeekendSchedule.Valid() {
		return invalidf("energy weekend schedule must have 12 months of 24 hours")
	}
	if err := checkPeriodBounds(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule, len(t.EnergyRateStructure), "energy"); err != nil {
		return err
	}

	// TOU demand fields are all-or-nothing
	hasAnyDemand := len(t.DemandRateStructure) > 0 ||
		len(t.DemandWeekdaySchedule) > 0 ||
		len(t.DemandWeekendSchedule) > 0
	if hasAnyDemand {
		if len(t.DemandRateStructure) == 0 {
			return invalidf("demand rate structure cannot be empty when demand charges are present")
		}
		if len(t.DemandWeekdaySchedule) == 0 || len(t.DemandWeekendSchedule) == 0 {
			return invalidf("demand schedules required when demand rates exist")
		}
		if !t.DemandWeekdaySchedule.Valid() || !t.DemandWeekendSchedule.Valid() {
			return invalidf("demand schedules must have 12 months of 24 hours")
		}
		if err := checkPeriodBounds(t.DemandWeekdaySchedule, t.DemandWeekendSchedule, len(t.DemandRateStructure), "demand"); err != nil {
			return err
		}
	}

	if t.HasFlatDemand() {
		if len(t.FlatDemandMonths) != types.MonthsPerYear {
			return invalidf("flat demand months must have 12 entries")
		}
	}

	for _, ratchet := range [][]float64{t.DemandRatchetPercentage, t.MinDemandRatchet} {
		if len(ratchet) > 0 && len(ratchet) != types.MonthsPerYear {
			return invalidf("ratchet lists must have 12 entries")
		}
	}

	checkVoltage(t, defaultVoltage)
	return nil
}

func checkPeriodBounds(weekday, weekend types.Schedule, periods int, kind string) error {
	if p := weekday.MaxPeriod(); p >= periods {
		return invalidf("%s weekday schedule references period %d but only %d periods exist", kind, p, periods)
	}
	if p := weekend.MaxPeriod(); p >= periods {
		return invalidf("%s weekend schedule references period %d but only %d periods exist", kind, p, periods)
	}
	return nil
}

// checkVoltage logs when the customer voltage falls outside the tariff's
// service window. Not an error: real documents frequently omit or misstate
// these bounds.
func checkVoltage(t *types.Tariff, voltage float64) {
	ctx := context.Background()
	if t.VoltageMinimum > 0 && t.VoltageMinimum > voltage {
		log.Ctx(ctx).WarnContext(ctx, "tariff minimum voltage above customer voltage",
			slog.Float64("voltageMinimum", t.VoltageMinimum),
			slog.Float64("voltage", voltage))
	}
	if t.VoltageMaximum > 0 && t.VoltageMaximum < voltage {
		log.Ctx(ctx).WarnContext(ctx, "tariff maximum voltage below customer voltage",
			slog.Float64("voltageMaximum", t.VoltageMaximum),
			slog.Float64("voltage", voltage))
	}
}
