package tariff

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffkit/tariffkit/pkg/types"
)

func scheduleJSON(period int) string {
	row := make([]int, 24)
	for i := range row {
		row[i] = period
	}
	sched := make([][]int, 12)
	for i := range sched {
		sched[i] = row
	}
	data, _ := json.Marshal(sched)
	return string(data)
}

func minimalTariffJSON() string {
	return `{
		"utility": "Test Electric",
		"name": "GS-1",
		"energyratestructure": [[{"rate": 0.10, "adj": 0.01}]],
		"energyweekdayschedule": ` + scheduleJSON(0) + `,
		"energyweekendschedule": ` + scheduleJSON(0) + `
	}`
}

func makeSchedule(period int) types.Schedule {
	s := make(types.Schedule, 12)
	for m := range s {
		s[m] = make([]int, 24)
		for h := range s[m] {
			s[m][h] = period
		}
	}
	return s
}

func TestParse(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		tr, err := Parse([]byte(minimalTariffJSON()))
		require.NoError(t, err)
		assert.Equal(t, "Test Electric", tr.Utility)
		require.Len(t, tr.EnergyRateStructure, 1)
		assert.InDelta(t, 0.10, tr.EnergyRateStructure[0][0].Rate, 1e-9)
	})

	t.Run("items wrapped", func(t *testing.T) {
		tr, err := Parse([]byte(`{"items": [` + minimalTariffJSON() + `]}`))
		require.NoError(t, err)
		assert.Equal(t, "Test Electric", tr.Utility)
	})

	t.Run("empty items", func(t *testing.T) {
		_, err := Parse([]byte(`{"items": []}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTariff)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Parse([]byte(`{not json`))
		assert.ErrorIs(t, err, ErrMalformedDocument)
	})

	t.Run("missing schedules", func(t *testing.T) {
		_, err := Parse([]byte(`{"energyratestructure": [[{"rate": 0.1}]]}`))
		assert.ErrorIs(t, err, ErrInvalidTariff)
	})
}

func TestWrapRoundTrip(t *testing.T) {
	tr, err := Parse([]byte(minimalTariffJSON()))
	require.NoError(t, err)

	wrapped, err := Wrap(tr)
	require.NoError(t, err)

	tr2, err := Parse(wrapped)
	require.NoError(t, err)
	assert.Equal(t, tr, tr2)
}

func TestValidate(t *testing.T) {
	base := func() *types.Tariff {
		return &types.Tariff{
			EnergyRateStructure:   []types.TierList{{{Rate: 0.10}}},
			EnergyWeekdaySchedule: makeSchedule(0),
			EnergyWeekendSchedule: makeSchedule(0),
		}
	}

	t.Run("valid minimal", func(t *testing.T) {
		assert.NoError(t, Validate(base(), types.DefaultVoltage))
	})

	t.Run("empty energy structure", func(t *testing.T) {
		tr := base()
		tr.EnergyRateStructure = nil
		assert.ErrorIs(t, Validate(tr, types.DefaultVoltage), ErrInvalidTariff)
	})

	t.Run("short schedule", func(t *testing.T) {
		tr := base()
		tr.EnergyWeekdaySchedule = tr.EnergyWeekdaySchedule[:6]
		assert.ErrorIs(t, Validate(tr, types.DefaultVoltage), ErrInvalidTariff)
	})

	t.Run("schedule references missing period", func(t *testing.T) {
		tr := base()
		tr.EnergyWeekdaySchedule = makeSchedule(3)
		assert.ErrorIs(t, Validate(tr, types.DefaultVoltage), ErrInvalidTariff)
	})

	t.Run("demand sections are all or nothing", func(t *testing.T) {
		tr := base()
		tr.DemandRateStructure = []types.TierList{{{Rate: 10}}}
		assert.ErrorIs(t, Validate(tr, types.DefaultVoltage), ErrInvalidTariff)

		tr.DemandWeekdaySchedule = makeSchedule(0)
		tr.DemandWeekendSchedule = makeSchedule(0)
		assert.NoError(t, Validate(tr, types.DefaultVoltage))
	})

	t.Run("flat demand months must have 12 entries", func(t *testing.T) {
		tr := base()
		tr.FlatDemandStructure = []types.TierList{{{Rate: 5}}}
		tr.FlatDemandMonths = []int{0, 0, 0}
		assert.ErrorIs(t, Validate(tr, types.DefaultVoltage), ErrInvalidTariff)
	})

	t.Run("ratchet lists must have 12 entries", func(t *testing.T) {
		tr := base()
		tr.DemandRatchetPercentage = []float64{90}
		assert.ErrorIs(t, Validate(tr, types.DefaultVoltage), ErrInvalidTariff)
	})
}

func TestUpdateRate(t *testing.T) {
	base := &types.Tariff{
		EnergyRateStructure:   []types.TierList{{{Rate: 0.10, Adj: 0.01}}},
		EnergyWeekdaySchedule: makeSchedule(0),
		EnergyWeekendSchedule: makeSchedule(0),
		DemandRateStructure:   []types.TierList{{{Rate: 10}}},
		DemandWeekdaySchedule: makeSchedule(0),
		DemandWeekendSchedule: makeSchedule(0),
	}

	t.Run("energy", func(t *testing.T) {
		updated, err := UpdateRate(base, RateTypeEnergy, 0, 0.25, 0.02)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, updated.EnergyRateStructure[0][0].Rate, 1e-9)
		assert.InDelta(t, 0.02, updated.EnergyRateStructure[0][0].Adj, 1e-9)
		// the source document is untouched
		assert.InDelta(t, 0.10, base.EnergyRateStructure[0][0].Rate, 1e-9)
	})

	t.Run("demand", func(t *testing.T) {
		updated, err := UpdateRate(base, RateTypeDemand, 0, 15, 0)
		require.NoError(t, err)
		assert.InDelta(t, 15.0, updated.DemandRateStructure[0][0].Rate, 1e-9)
	})

	t.Run("period out of range", func(t *testing.T) {
		_, err := UpdateRate(base, RateTypeEnergy, 4, 0.25, 0)
		assert.Error(t, err)
	})
}

func TestUpdateFlatDemandRate(t *testing.T) {
	months := make([]int, 12)
	months[6] = 1
	base := &types.Tariff{
		EnergyRateStructure:   []types.TierList{{{Rate: 0.10}}},
		EnergyWeekdaySchedule: makeSchedule(0),
		EnergyWeekendSchedule: makeSchedule(0),
		FlatDemandStructure:   []types.TierList{{{Rate: 5}}, {{Rate: 12}}},
		FlatDemandMonths:      months,
	}

	updated, err := UpdateFlatDemandRate(base, time.July, 14, 0.5)
	require.NoError(t, err)
	// July maps to tier 1
	assert.InDelta(t, 14.0, updated.FlatDemandStructure[1][0].Rate, 1e-9)
	assert.InDelta(t, 12.0, base.FlatDemandStructure[1][0].Rate, 1e-9)
}

func TestSummarize(t *testing.T) {
	tr := &types.Tariff{
		Utility: "Test Electric",
		Name:    "GS-1",
		EnergyRateStructure: []types.TierList{
			{{Rate: 0.10}},
			{{Rate: 0.30}},
		},
		EnergyWeekdaySchedule: makeSchedule(1),
		EnergyWeekendSchedule: makeSchedule(0),
	}

	s := Summarize(tr)
	assert.Equal(t, "Test Electric", s.Utility)
	// 288 weekday slots at 0.30 and 288 weekend slots at 0.10
	assert.Equal(t, 576, s.EnergyRates.Count)
	assert.InDelta(t, 0.10, s.EnergyRates.Min, 1e-9)
	assert.InDelta(t, 0.30, s.EnergyRates.Max, 1e-9)
	assert.InDelta(t, 0.20, s.EnergyRates.Avg, 1e-9)
	assert.Zero(t, s.DemandRates.Count)
}

func TestTranslateLocal(t *testing.T) {
	t.Run("camelCase with nested tiers", func(t *testing.T) {
		local := `{
			"utilityName": "Local Power",
			"rateName": "Small Commercial",
			"energyRateStrux": [{"energyRateTiers": [{"rate": 0.11, "adj": 0.01, "max": 500}]}],
			"energyWeekdaySched": ` + scheduleJSON(0) + `,
			"energyWeekendSched": ` + scheduleJSON(0) + `
		}`
		tr, err := TranslateLocal([]byte(local))
		require.NoError(t, err)
		assert.Equal(t, "Local Power", tr.Utility)
		assert.Equal(t, "Small Commercial", tr.Name)
		require.Len(t, tr.EnergyRateStructure, 1)
		tier := tr.EnergyRateStructure[0][0]
		assert.InDelta(t, 0.11, tier.Rate, 1e-9)
		require.NotNil(t, tier.Max)
		assert.InDelta(t, 500.0, *tier.Max, 1e-9)
	})

	t.Run("invalid document still fails validation", func(t *testing.T) {
		_, err := TranslateLocal([]byte(`{"utilityName": "X"}`))
		assert.ErrorIs(t, err, ErrInvalidTariff)
	})
}
