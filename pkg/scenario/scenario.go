// Package scenario loads load-factor analysis scenarios from YAML.
package scenario

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tariffkit/tariffkit/pkg/loadfactor"
)

// Scenario is the on-disk analysis shape (YAML).
type Scenario struct {
	// Tariff is the path of the tariff JSON document to analyze.
	Tariff string `yaml:"tariff"`

	// Annual runs the full-year analysis; otherwise Month selects one
	// month (1-12).
	Annual bool `yaml:"annual"`
	Month  int  `yaml:"month"`

	TOUDemandKW       map[int]float64 `yaml:"tou_demand_kw"`
	FlatDemandKW      float64         `yaml:"flat_demand_kw"`
	EnergyPercentages map[int]float64 `yaml:"energy_percentages"`

	Breakdown bool `yaml:"breakdown"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the scenario is well formed: a tariff path, a month when
// not annual, and energy percentages summing to 100.
func (s *Scenario) Validate() error {
	if s.Tariff == "" {
		return fmt.Errorf("tariff is required")
	}
	if !s.Annual && (s.Month < 1 || s.Month > 12) {
		return fmt.Errorf("month must be 1 through 12 (or set annual: true)")
	}
	if len(s.EnergyPercentages) == 0 {
		return fmt.Errorf("energy_percentages is required")
	}
	var total float64
	for period, pct := range s.EnergyPercentages {
		if pct < 0 {
			return fmt.Errorf("energy percentage for period %d cannot be negative", period)
		}
		total += pct
	}
	if math.Abs(total-100) > 0.01 {
		return fmt.Errorf("energy percentages must sum to 100, got %.2f", total)
	}
	return nil
}

// Inputs converts the scenario into engine inputs.
func (s *Scenario) Inputs() loadfactor.Inputs {
	return loadfactor.Inputs{
		TOUDemandKW:       s.TOUDemandKW,
		FlatDemandKW:      s.FlatDemandKW,
		EnergyPercentages: s.EnergyPercentages,
	}
}

// SelectedMonth returns the scenario month as a time.Month.
func (s *Scenario) SelectedMonth() time.Month {
	return time.Month(s.Month)
}
