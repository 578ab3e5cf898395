package billing

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffkit/tariffkit/pkg/profile"
	"github.com/tariffkit/tariffkit/pkg/tariff"
	"github.com/tariffkit/tariffkit/pkg/types"
)

func flatSchedule(period int) types.Schedule {
	s := make(types.Schedule, 12)
	for m := range s {
		s[m] = make([]int, 24)
		for h := range s[m] {
			s[m][h] = period
		}
	}
	return s
}

func fixed(v float64) *float64 { return &v }

// constantProfile builds an hourly profile at a constant load between two
// times. Hourly intervals keep test energy arithmetic simple; kWh is set
// directly per hour.
func constantProfile(start, end time.Time, loadKW float64) *profile.Profile {
	p := &profile.Profile{}
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		p.Timestamps = append(p.Timestamps, ts)
		p.LoadKW = append(p.LoadKW, loadKW)
		p.KWH = append(p.KWH, loadKW)
	}
	deriveColumns(p)
	return p
}

func deriveColumns(p *profile.Profile) {
	for _, ts := range p.Timestamps {
		p.Months = append(p.Months, ts.Month())
		p.Years = append(p.Years, ts.Year())
		p.Hours = append(p.Hours, ts.Hour())
		wd := ts.Weekday()
		p.IsWeekend = append(p.IsWeekend, wd == time.Saturday || wd == time.Sunday)
	}
}

func TestCalculateEnergyOnly(t *testing.T) {
	// Three TOU periods but the schedule keeps everything off-peak, so the
	// whole month bills at 0.10 with a $20 fixed charge.
	tr := &types.Tariff{
		EnergyRateStructure: []types.TierList{
			{{Rate: 0.10}},
			{{Rate: 0.15}},
			{{Rate: 0.20}},
		},
		EnergyWeekdaySchedule: flatSchedule(0),
		EnergyWeekendSchedule: flatSchedule(0),
		FixedChargeFirstMeter: fixed(20),
	}

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	p := constantProfile(start, start.AddDate(0, 1, 0), 10)

	bills, err := Calculate(context.Background(), tr, p)
	require.NoError(t, err)
	require.Len(t, bills, 1)

	b := bills[0]
	assert.Equal(t, 2024, b.Year)
	assert.Equal(t, time.January, b.Month)
	// 10kW for 31 days of 24h at 0.10
	assert.InDelta(t, 744.0, b.EnergyCharge, 1e-6)
	assert.InDelta(t, 20.0, b.FixedCharge, 1e-9)
	assert.InDelta(t, 764.0, b.TotalCharge, 1e-6)
	assert.InDelta(t, 7440.0, b.TotalKWH, 1e-6)
	assert.InDelta(t, 10.0, b.PeakKW, 1e-9)
	assert.InDelta(t, 1.0, b.LoadFactor, 1e-9)
	assert.InDelta(t, 7440.0, b.KWHByEnergyPeriod[0], 1e-6)
	assert.Zero(t, b.DemandCharge)
	assert.Zero(t, b.FlatDemandCharge)
}

func TestCalculateRatchetCarryForward(t *testing.T) {
	pct := make([]float64, 12)
	for i := 1; i < 12; i++ {
		pct[i] = 90
	}
	tr := &types.Tariff{
		EnergyRateStructure:     []types.TierList{{{Rate: 0.10}}},
		EnergyWeekdaySchedule:   flatSchedule(0),
		EnergyWeekendSchedule:   flatSchedule(0),
		DemandRateStructure:     []types.TierList{{{Rate: 10.0}}},
		DemandWeekdaySchedule:   flatSchedule(0),
		DemandWeekendSchedule:   flatSchedule(0),
		DemandRatchetPercentage: pct,
		PowerFactor:             1.0,
	}

	// January peaks at 100kW, later months at 50kW.
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	p := constantProfile(jan, jan.AddDate(0, 3, 0), 50)
	p.LoadKW[0] = 100
	p.KWH[0] = 100

	bills, err := Calculate(context.Background(), tr, p)
	require.NoError(t, err)
	require.Len(t, bills, 3)

	assert.InDelta(t, 100.0, bills[0].RatchetedByTOUPeriod[0], 1e-9)
	assert.InDelta(t, 1000.0, bills[0].DemandCharge, 1e-6)

	// February's raw peak is 50 but the ratchet holds it at 90% of 100.
	assert.InDelta(t, 50.0, bills[1].PeakKWByTOUPeriod[0], 1e-9)
	assert.InDelta(t, 90.0, bills[1].RatchetedByTOUPeriod[0], 1e-9)
	assert.InDelta(t, 900.0, bills[1].DemandCharge, 1e-6)

	// March ratchets off February's ratcheted 90, not its raw 50.
	assert.InDelta(t, 90.0, bills[2].RatchetedByTOUPeriod[0], 1e-9)
}

func TestCalculateMinRatchet(t *testing.T) {
	minR := make([]float64, 12)
	for i := range minR {
		minR[i] = 75
	}
	tr := &types.Tariff{
		EnergyRateStructure:   []types.TierList{{{Rate: 0.10}}},
		EnergyWeekdaySchedule: flatSchedule(0),
		EnergyWeekendSchedule: flatSchedule(0),
		DemandRateStructure:   []types.TierList{{{Rate: 10.0}}},
		DemandWeekdaySchedule: flatSchedule(0),
		DemandWeekendSchedule: flatSchedule(0),
		MinDemandRatchet:      minR,
		PowerFactor:           1.0,
	}

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	p := constantProfile(jan, jan.AddDate(0, 1, 0), 50)

	bills, err := Calculate(context.Background(), tr, p)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.InDelta(t, 75.0, bills[0].RatchetedByTOUPeriod[0], 1e-9)
	assert.InDelta(t, 750.0, bills[0].DemandCharge, 1e-6)
}

func TestCalculateFlatDemand(t *testing.T) {
	months := make([]int, 12)
	for i := 5; i < 9; i++ {
		months[i] = 1 // summer tier
	}
	tr := &types.Tariff{
		EnergyRateStructure:   []types.TierList{{{Rate: 0.10}}},
		EnergyWeekdaySchedule: flatSchedule(0),
		EnergyWeekendSchedule: flatSchedule(0),
		FlatDemandStructure: []types.TierList{
			{{Rate: 5.0}},
			{{Rate: 12.0}},
		},
		FlatDemandMonths: months,
	}

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	p := constantProfile(jan, jan.AddDate(0, 1, 0), 40)
	p2 := constantProfile(jul, jul.AddDate(0, 1, 0), 40)
	p.Timestamps = append(p.Timestamps, p2.Timestamps...)
	p.LoadKW = append(p.LoadKW, p2.LoadKW...)
	p.KWH = append(p.KWH, p2.KWH...)
	p.Months = append(p.Months, p2.Months...)
	p.Years = append(p.Years, p2.Years...)
	p.Hours = append(p.Hours, p2.Hours...)
	p.IsWeekend = append(p.IsWeekend, p2.IsWeekend...)

	bills, err := Calculate(context.Background(), tr, p)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.InDelta(t, 200.0, bills[0].FlatDemandCharge, 1e-6) // 40kW * 5
	assert.InDelta(t, 480.0, bills[1].FlatDemandCharge, 1e-6) // 40kW * 12
}

func TestCalculateInvalidTariff(t *testing.T) {
	tr := &types.Tariff{}
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	p := constantProfile(jan, jan.Add(24*time.Hour), 10)

	_, err := Calculate(context.Background(), tr, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, tariff.ErrInvalidTariff)
}

func TestForDisplay(t *testing.T) {
	bills := []types.MonthlyBill{{
		Year:                 2024,
		Month:                time.March,
		TotalKWH:             1234.5678,
		EnergyCharge:         100.123,
		EnergyAdjustment:     1.111,
		DemandCharge:         50,
		FlatDemandCharge:     25,
		FlatDemandAdjustment: 0.006,
		FixedCharge:          20,
		TotalCharge:          196.24,
		LoadFactor:           0.56789,
	}}
	out := ForDisplay(bills)
	require.Len(t, out, 1)
	assert.Equal(t, "March", out[0].MonthName)
	assert.InDelta(t, 101.23, out[0].TotalEnergyCost, 1e-9)
	assert.InDelta(t, 75.01, out[0].TotalDemandCost, 1e-9)
	assert.InDelta(t, 0.568, out[0].LoadFactor, 1e-9)
}

func TestWriteCSV(t *testing.T) {
	bills := []types.MonthlyBill{{
		Year:              2024,
		Month:             time.January,
		TotalKWH:          100,
		TotalCharge:       30,
		KWHByEnergyPeriod: map[int]float64{0: 60, 1: 40},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, bills))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "kwh_period_0")
	assert.Contains(t, lines[0], "kwh_period_1")
	assert.Contains(t, lines[1], "2024,1,")
}
