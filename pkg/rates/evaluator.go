package rates

import (
	"github.com/tariffkit/tariffkit/pkg/types"
)

// EnergyEvaluator prices per-interval energy values against an energy rate
// structure. When every period is a single unbounded tier (the common case
// for TOU-only tariffs), it precomputes per-period rate arrays and prices
// each interval with a lookup-multiply; otherwise it walks the tiers per
// value.
type EnergyEvaluator struct {
	structure []types.TierList

	// fast path arrays, indexed by period; nil when any period is tiered
	rates []float64
	adjs  []float64
}

// NewEnergyEvaluator builds an evaluator for the given energy rate
// structure. The path is chosen once, not per interval.
func NewEnergyEvaluator(structure []types.TierList) *EnergyEvaluator {
	e := &EnergyEvaluator{structure: structure}
	for _, tiers := range structure {
		if !tiers.SingleUnbounded() {
			return e
		}
	}
	e.rates = make([]float64, len(structure))
	e.adjs = make([]float64, len(structure))
	for i, tiers := range structure {
		e.rates[i] = tiers[0].Rate
		e.adjs[i] = tiers[0].Adj
	}
	return e
}

// Fast reports whether the evaluator uses the precomputed single-tier path.
func (e *EnergyEvaluator) Fast() bool { return e.rates != nil }

// Price returns the base charge and adjustment charge for one energy value
// in the given period. Periods outside the structure price at zero.
func (e *EnergyEvaluator) Price(period int, kwh float64) (charge, adj float64) {
	if period < 0 || period >= len(e.structure) {
		return 0, 0
	}
	if e.rates != nil {
		return kwh * e.rates[period], kwh * e.adjs[period]
	}
	return ApplyTiers(e.structure[period], kwh)
}

// PriceAll prices a column of energy values against a parallel column of
// resolved periods and returns the total base charge, total adjustment, and
// per-period energy totals.
func (e *EnergyEvaluator) PriceAll(periods []int, kwh []float64) (charge, adj float64, byPeriod map[int]float64) {
	byPeriod = make(map[int]float64)
	if e.rates != nil {
		for i, p := range periods {
			v := kwh[i]
			byPeriod[p] += v
			if p >= 0 && p < len(e.rates) {
				charge += v * e.rates[p]
				adj += v * e.adjs[p]
			}
		}
		return charge, adj, byPeriod
	}
	for i, p := range periods {
		v := kwh[i]
		byPeriod[p] += v
		c, a := e.Price(p, v)
		charge += c
		adj += a
	}
	return charge, adj, byPeriod
}
