package profile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tariffkit/tariffkit/pkg/types"
)

func TestParseCSV(t *testing.T) {
	t.Run("load_kW column derives kWh", func(t *testing.T) {
		p, err := ParseCSV(strings.NewReader(
			"timestamp,load_kW\n" +
				"2024-01-01 00:00:00,10\n" +
				"2024-01-01 00:15:00,20\n"))
		require.NoError(t, err)
		require.Equal(t, 2, p.Len())
		assert.InDelta(t, 2.5, p.KWH[0], 1e-9)
		assert.InDelta(t, 5.0, p.KWH[1], 1e-9)
		assert.InDelta(t, 7.5, p.TotalKWH(), 1e-9)
	})

	t.Run("kWh column used directly", func(t *testing.T) {
		p, err := ParseCSV(strings.NewReader(
			"timestamp,kWh\n" +
				"2024-01-01 00:00:00,3\n"))
		require.NoError(t, err)
		assert.InDelta(t, 3.0, p.KWH[0], 1e-9)
		assert.InDelta(t, 12.0, p.LoadKW[0], 1e-9)
	})

	t.Run("sorts out of order rows", func(t *testing.T) {
		p, err := ParseCSV(strings.NewReader(
			"timestamp,load_kW\n" +
				"2024-01-01 01:00:00,2\n" +
				"2024-01-01 00:00:00,1\n"))
		require.NoError(t, err)
		assert.True(t, p.Timestamps[0].Before(p.Timestamps[1]))
		assert.Equal(t, 1.0, p.LoadKW[0])
	})

	t.Run("derives calendar columns", func(t *testing.T) {
		// 2024-01-06 is a Saturday
		p, err := ParseCSV(strings.NewReader(
			"timestamp,load_kW\n" +
				"2024-01-06 14:00:00,5\n"))
		require.NoError(t, err)
		assert.Equal(t, time.January, p.Months[0])
		assert.Equal(t, 2024, p.Years[0])
		assert.Equal(t, 14, p.Hours[0])
		assert.True(t, p.IsWeekend[0])
	})

	t.Run("missing timestamp column", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("load_kW\n10\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidLoadProfile)
	})

	t.Run("missing load column", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("timestamp\n2024-01-01 00:00:00\n"))
		assert.ErrorIs(t, err, ErrInvalidLoadProfile)
	})

	t.Run("unparseable timestamp", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("timestamp,load_kW\nnot-a-date,10\n"))
		assert.ErrorIs(t, err, ErrInvalidLoadProfile)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("timestamp,load_kW\n"))
		assert.ErrorIs(t, err, ErrInvalidLoadProfile)
	})
}

func TestWriteCSVRoundTrip(t *testing.T) {
	p, err := ParseCSV(strings.NewReader(
		"timestamp,load_kW\n" +
			"2024-01-01 00:00:00,10\n" +
			"2024-01-01 00:15:00,12.5\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.WriteCSV(&buf))

	p2, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, p.Len(), p2.Len())
	for i := range p.Timestamps {
		assert.True(t, p.Timestamps[i].Equal(p2.Timestamps[i]))
		assert.InDelta(t, p.LoadKW[i], p2.LoadKW[i], 1e-3)
		assert.InDelta(t, p.KWH[i], p2.KWH[i], 1e-3)
	}
}

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

func TestGenerate(t *testing.T) {
	tariff := &types.Tariff{
		EnergyRateStructure:   []types.TierList{{{Rate: 0.10}}},
		EnergyWeekdaySchedule: flatSchedule(0),
		EnergyWeekendSchedule: flatSchedule(0),
	}

	t.Run("hits average load and interval count", func(t *testing.T) {
		p := Generate(tariff, GeneratorOptions{
			AvgLoadKW:  100,
			LoadFactor: 0.6,
			Year:       2024,
			NoiseLevel: DefaultNoiseLevel,
		})
		// 2024 is a leap year: 366 * 96 intervals
		assert.Equal(t, 366*96, p.Len())

		var sum, peak float64
		for _, v := range p.LoadKW {
			sum += v
			if v > peak {
				peak = v
			}
		}
		avg := sum / float64(p.Len())
		assert.InDelta(t, 100.0, avg, 1.0)
		assert.LessOrEqual(t, peak, 100.0/0.6+1e-6)
	})

	t.Run("deterministic for a given seed", func(t *testing.T) {
		opts := GeneratorOptions{AvgLoadKW: 50, LoadFactor: 0.5, Year: 2023, NoiseLevel: 0.1, Seed: 42}
		a := Generate(tariff, opts)
		b := Generate(tariff, opts)
		require.Equal(t, a.Len(), b.Len())
		assert.Equal(t, a.LoadKW[:100], b.LoadKW[:100])
	})

	t.Run("kWh follows load", func(t *testing.T) {
		p := Generate(tariff, GeneratorOptions{AvgLoadKW: 40, LoadFactor: 0.8, Year: 2023})
		for i := 0; i < 10; i++ {
			assert.InDelta(t, p.LoadKW[i]*0.25, p.KWH[i], 1e-9)
		}
	})
}
