// Package rates evaluates tiered (inclining/declining block) rate
// structures against consumption and demand quantities.
package rates

import (
	"math"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// ApplyTiers fills tiers in order with the given quantity and returns the
// base charge and the adjustment charge. Each tier absorbs up to its bound;
// an unbounded tier absorbs everything remaining.
//
// Note that tiered charges are path-dependent on cumulative quantity: for
// bounded multi-tier structures, ApplyTiers(t, q1) + ApplyTiers(t, q2) is
// generally NOT ApplyTiers(t, q1+q2). Callers must evaluate the full
// billing-period quantity at once.
func ApplyTiers(tiers types.TierList, quantity float64) (charge, adj float64) {
	remaining := quantity
	for _, tier := range tiers {
		amount := remaining
		if bound := tier.Bound(); !math.IsInf(bound, 1) && bound < remaining {
			amount = bound
		}
		charge += amount * tier.Rate
		adj += amount * tier.Adj
		remaining -= amount
		if remaining <= 0 {
			break
		}
	}
	return charge, adj
}

// ApplyDemandTiers evaluates a demand quantity against tiers, first adding
// the reactive power surcharge when one is configured and the power factor
// is below unity: apparent = demand/pf, reactive = sqrt(apparent^2 -
// demand^2), surcharge = reactive * reactiveRate.
func ApplyDemandTiers(tiers types.TierList, demand, reactiveRate, powerFactor float64) (charge, adj float64) {
	if reactiveRate > 0 && powerFactor > 0 && powerFactor < 1 {
		apparent := demand / powerFactor
		reactive := math.Sqrt(apparent*apparent - demand*demand)
		charge += reactive * reactiveRate
	}
	c, a := ApplyTiers(tiers, demand)
	return charge + c, adj + a
}
