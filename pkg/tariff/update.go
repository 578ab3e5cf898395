package tariff

import (
	"encoding/json"
	"time"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// RateType selects which rate structure an update targets.
type RateType string

const (
	RateTypeEnergy RateType = "energy"
	RateTypeDemand RateType = "demand"
)

// Clone deep-copies a tariff via a JSON round-trip so edits never leak into
// the caller's document.
func Clone(t *types.Tariff) (*types.Tariff, error) {
	buf, err := json.Marshal(t)
	if err != nil {
		return nil, malformedf("encoding tariff for clone: %v", err)
	}
	var out types.Tariff
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, malformedf("decoding cloned tariff: %v", err)
	}
	return &out, nil
}

// UpdateRate returns a copy of the tariff with the first tier of the given
// energy or demand period set to the new rate and adjustment. All other
// fields are left untouched.
func UpdateRate(t *types.Tariff, rateType RateType, period int, rate, adj float64) (*types.Tariff, error) {
	updated, err := Clone(t)
	if err != nil {
		return nil, err
	}
	var structure []types.TierList
	switch rateType {
	case RateTypeEnergy:
		structure = updated.EnergyRateStructure
	case RateTypeDemand:
		structure = updated.DemandRateStructure
	default:
		return nil, invalidf("invalid rate type: %s", rateType)
	}
	if period < 0 || period >= len(structure) {
		return nil, invalidf("%s period %d out of range (%d periods)", rateType, period, len(structure))
	}
	if len(structure[period]) == 0 {
		return nil, invalidf("%s period %d has no tiers", rateType, period)
	}
	structure[period][0].Rate = rate
	structure[period][0].Adj = adj
	return updated, nil
}

// UpdateFlatDemandRate returns a copy of the tariff with the flat demand
// tier assigned to the given calendar month set to the new rate and
// adjustment. Months sharing the tier see the change too, matching the
// seasonal-bucket semantics of the flat demand structure.
func UpdateFlatDemandRate(t *types.Tariff, month time.Month, rate, adj float64) (*types.Tariff, error) {
	updated, err := Clone(t)
	if err != nil {
		return nil, err
	}
	if !updated.HasFlatDemand() {
		return nil, invalidf("tariff has no flat demand structure")
	}
	idx := int(month) - 1
	if idx < 0 || idx >= len(updated.FlatDemandMonths) {
		return nil, invalidf("month %d out of range", month)
	}
	tier := updated.FlatDemandMonths[idx]
	if tier < 0 || tier >= len(updated.FlatDemandStructure) || len(updated.FlatDemandStructure[tier]) == 0 {
		return nil, invalidf("flat demand tier %d out of range", tier)
	}
	updated.FlatDemandStructure[tier][0].Rate = rate
	updated.FlatDemandStructure[tier][0].Adj = adj
	return updated, nil
}
