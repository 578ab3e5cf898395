package types

import (
	"math"
	"strconv"
	"time"
)

const (
	// MonthsPerYear and HoursPerDay describe the required shape of a TOU
	// schedule: one row per calendar month, one entry per hour of day.
	MonthsPerYear = 12
	HoursPerDay   = 24

	// DefaultPowerFactor is assumed when a tariff configures a reactive
	// power charge but no power factor.
	DefaultPowerFactor = 0.95

	// DefaultVoltage is the assumed customer service voltage when the
	// caller doesn't supply one.
	DefaultVoltage = 480.0
)

// RateTier is a single consumption or demand band within a TOU period.
// Tiers are applied in order: each tier absorbs up to Max units (unbounded
// when Max is nil) at Rate plus Adj dollars per unit.
type RateTier struct {
	Rate float64  `json:"rate"`
	Adj  float64  `json:"adj"`
	Max  *float64 `json:"max,omitempty"`
}

// Bound returns the tier's upper bound, or +Inf when unbounded.
func (t RateTier) Bound() float64 {
	if t.Max == nil {
		return math.Inf(1)
	}
	return *t.Max
}

// TierList is the ordered list of tiers for one TOU period.
type TierList []RateTier

// FirstRate returns rate+adj of the first tier, or 0 for an empty list.
// The load-factor engine prices each period off its first tier.
func (l TierList) FirstRate() float64 {
	if len(l) == 0 {
		return 0
	}
	return l[0].Rate + l[0].Adj
}

// SingleUnbounded reports whether the list is exactly one tier with no
// upper bound, the shape that permits the array-lookup energy fast path.
func (l TierList) SingleUnbounded() bool {
	return len(l) == 1 && math.IsInf(l[0].Bound(), 1)
}

// Schedule holds a 12x24 TOU period assignment: Schedule[month][hour] is
// the period index active at that month (0-based) and hour of day.
type Schedule [][]int

// Valid reports whether the schedule has exactly 12 months of 24 hours.
func (s Schedule) Valid() bool {
	if len(s) != MonthsPerYear {
		return false
	}
	for _, hours := range s {
		if len(hours) != HoursPerDay {
			return false
		}
	}
	return true
}

// At returns the period index for a 1-based calendar month and hour of day.
func (s Schedule) At(month time.Month, hour int) int {
	return s[int(month)-1][hour]
}

// MaxPeriod returns the largest period index referenced anywhere in the
// schedule, or -1 for an empty schedule.
func (s Schedule) MaxPeriod() int {
	max := -1
	for _, hours := range s {
		for _, p := range hours {
			if p > max {
				max = p
			}
		}
	}
	return max
}

// Tariff is a typed URDB tariff document. Optional sections (TOU demand,
// flat demand, ratchet) are nil/empty slices when absent; Validate enforces
// the all-or-nothing rules before any calculation runs.
type Tariff struct {
	Label       string `json:"label,omitempty"`
	Utility     string `json:"utility,omitempty"`
	Name        string `json:"name,omitempty"`
	Sector      string `json:"sector,omitempty"`
	Description string `json:"description,omitempty"`

	// Energy charges (required)
	EnergyRateStructure   []TierList `json:"energyratestructure"`
	EnergyWeekdaySchedule Schedule   `json:"energyweekdayschedule"`
	EnergyWeekendSchedule Schedule   `json:"energyweekendschedule"`
	EnergyTOULabels       []string   `json:"energytoulabels,omitempty"`

	// TOU demand charges (optional, all-or-nothing)
	DemandRateStructure   []TierList `json:"demandratestructure,omitempty"`
	DemandWeekdaySchedule Schedule   `json:"demandweekdayschedule,omitempty"`
	DemandWeekendSchedule Schedule   `json:"demandweekendschedule,omitempty"`
	DemandTOULabels       []string   `json:"demandtoulabels,omitempty"`

	// Flat (seasonal) demand charges (optional)
	FlatDemandStructure []TierList `json:"flatdemandstructure,omitempty"`
	FlatDemandMonths    []int      `json:"flatdemandmonths,omitempty"`

	// Demand ratchet, one entry per calendar month
	DemandRatchetPercentage []float64 `json:"demandratchetpercentage,omitempty"`
	MinDemandRatchet        []float64 `json:"mindemandratchet,omitempty"`

	// Scalar charges and parameters
	FixedChargeFirstMeter     *float64 `json:"fixedchargefirstmeter,omitempty"`
	FixedMonthlyCharge        float64  `json:"fixedmonthlycharge,omitempty"`
	MinMonthlyCharge          float64  `json:"minmonthlycharge,omitempty"`
	DemandReactivePowerCharge float64  `json:"demandreactivepowercharge,omitempty"`
	PowerFactor               float64  `json:"powerfactor,omitempty"`
	VoltageMinimum            float64  `json:"voltageminimum,omitempty"`
	VoltageMaximum            float64  `json:"voltagemaximum,omitempty"`

	EnergyComments string `json:"energycomments,omitempty"`
	DemandComments string `json:"demandcomments,omitempty"`
}

// HasTOUDemand reports whether the tariff carries TOU demand charges.
func (t *Tariff) HasTOUDemand() bool {
	return len(t.DemandRateStructure) > 0 &&
		len(t.DemandWeekdaySchedule) > 0 &&
		len(t.DemandWeekendSchedule) > 0
}

// HasFlatDemand reports whether the tariff carries seasonal flat demand
// charges.
func (t *Tariff) HasFlatDemand() bool {
	return len(t.FlatDemandStructure) > 0 && len(t.FlatDemandMonths) > 0
}

// EffectivePowerFactor returns the configured power factor or the default.
func (t *Tariff) EffectivePowerFactor() float64 {
	if t.PowerFactor > 0 {
		return t.PowerFactor
	}
	return DefaultPowerFactor
}

// MonthlyFixedCharge returns the per-meter fixed charge when present,
// otherwise the larger of the fixed and minimum monthly charges.
func (t *Tariff) MonthlyFixedCharge() float64 {
	if t.FixedChargeFirstMeter != nil {
		return *t.FixedChargeFirstMeter
	}
	return math.Max(t.FixedMonthlyCharge, t.MinMonthlyCharge)
}

// RatchetPercentage returns the ratchet percentage for a calendar month,
// 0 when no ratchet is configured.
func (t *Tariff) RatchetPercentage(month time.Month) float64 {
	idx := int(month) - 1
	if idx < 0 || idx >= len(t.DemandRatchetPercentage) {
		return 0
	}
	return t.DemandRatchetPercentage[idx]
}

// MinRatchet returns the absolute demand floor for a calendar month,
// 0 when none is configured.
func (t *Tariff) MinRatchet(month time.Month) float64 {
	idx := int(month) - 1
	if idx < 0 || idx >= len(t.MinDemandRatchet) {
		return 0
	}
	return t.MinDemandRatchet[idx]
}

// FlatDemandTier returns the flat demand tier list assigned to a calendar
// month. Out-of-range tier indices fall back to the first tier, matching
// how URDB consumers have historically handled malformed documents.
func (t *Tariff) FlatDemandTier(month time.Month) TierList {
	if !t.HasFlatDemand() {
		return nil
	}
	idx := int(month) - 1
	tier := 0
	if idx >= 0 && idx < len(t.FlatDemandMonths) {
		tier = t.FlatDemandMonths[idx]
	}
	if tier < 0 || tier >= len(t.FlatDemandStructure) {
		tier = 0
	}
	return t.FlatDemandStructure[tier]
}

// EnergyPeriodLabel returns the configured label for an energy period, or a
// positional fallback.
func (t *Tariff) EnergyPeriodLabel(period int) string {
	return periodLabel(t.EnergyTOULabels, period, "Period")
}

// DemandPeriodLabel returns the configured label for a TOU demand period,
// or a positional fallback.
func (t *Tariff) DemandPeriodLabel(period int) string {
	return periodLabel(t.DemandTOULabels, period, "TOU Period")
}

func periodLabel(labels []string, period int, prefix string) string {
	if period >= 0 && period < len(labels) && labels[period] != "" {
		return labels[period]
	}
	return prefix + " " + strconv.Itoa(period)
}
