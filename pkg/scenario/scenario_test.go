package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("monthly scenario", func(t *testing.T) {
		s, err := Load(writeScenario(t, `
tariff: testdata/gs1.json
month: 7
tou_demand_kw:
  0: 150
flat_demand_kw: 150
energy_percentages:
  0: 60
  1: 40
breakdown: true
`))
		require.NoError(t, err)
		assert.Equal(t, time.July, s.SelectedMonth())
		assert.False(t, s.Annual)
		assert.True(t, s.Breakdown)

		in := s.Inputs()
		assert.InDelta(t, 150.0, in.TOUDemandKW[0], 1e-9)
		assert.InDelta(t, 150.0, in.FlatDemandKW, 1e-9)
		assert.InDelta(t, 60.0, in.EnergyPercentages[0], 1e-9)
	})

	t.Run("annual needs no month", func(t *testing.T) {
		_, err := Load(writeScenario(t, `
tariff: t.json
annual: true
energy_percentages:
  0: 100
`))
		assert.NoError(t, err)
	})

	t.Run("missing month", func(t *testing.T) {
		_, err := Load(writeScenario(t, `
tariff: t.json
energy_percentages:
  0: 100
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "month")
	})

	t.Run("percentages must sum to 100", func(t *testing.T) {
		_, err := Load(writeScenario(t, `
tariff: t.json
month: 1
energy_percentages:
  0: 50
  1: 30
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 100")
	})

	t.Run("missing tariff", func(t *testing.T) {
		_, err := Load(writeScenario(t, `
month: 1
energy_percentages:
  0: 100
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tariff")
	})
}
