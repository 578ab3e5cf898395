// Package billing runs a load profile through a tariff and produces the
// monthly bill breakdown.
package billing

import (
	"context"
	"sort"
	"time"

	"github.com/tariffkit/tariffkit/pkg/log"
	"github.com/tariffkit/tariffkit/pkg/profile"
	"github.com/tariffkit/tariffkit/pkg/rates"
	"github.com/tariffkit/tariffkit/pkg/schedule"
	"github.com/tariffkit/tariffkit/pkg/tariff"
	"github.com/tariffkit/tariffkit/pkg/types"
)

type monthKey struct {
	Year  int
	Month time.Month
}

// monthAccum collects per-interval results for one (year, month) before the
// charges are assembled.
type monthAccum struct {
	totalKWH     float64
	loadSum      float64
	count        int
	peakKW       float64
	energyCharge float64
	energyAdj    float64
	kwhByPeriod  map[int]float64
	peakByPeriod map[int]float64
}

// Calculate validates the tariff, prices every interval of the profile, and
// returns one bill per (year, month) in chronological order.
func Calculate(ctx context.Context, t *types.Tariff, p *profile.Profile) ([]types.MonthlyBill, error) {
	if err := tariff.Validate(t, types.DefaultVoltage); err != nil {
		return nil, err
	}

	energyPeriods := schedule.ResolveAll(t.EnergyWeekdaySchedule, t.EnergyWeekendSchedule,
		p.Months, p.Hours, p.IsWeekend)
	var demandPeriods []int
	if t.HasTOUDemand() {
		demandPeriods = schedule.ResolveAll(t.DemandWeekdaySchedule, t.DemandWeekendSchedule,
			p.Months, p.Hours, p.IsWeekend)
	}

	evaluator := rates.NewEnergyEvaluator(t.EnergyRateStructure)
	log.Ctx(ctx).Debug("pricing intervals",
		"intervals", p.Len(),
		"fastPath", evaluator.Fast(),
		"touDemand", t.HasTOUDemand(),
	)

	accums := make(map[monthKey]*monthAccum)
	for i := 0; i < p.Len(); i++ {
		key := monthKey{p.Years[i], p.Months[i]}
		acc := accums[key]
		if acc == nil {
			acc = &monthAccum{
				kwhByPeriod:  make(map[int]float64),
				peakByPeriod: make(map[int]float64),
			}
			accums[key] = acc
		}
		kwh := p.KWH[i]
		load := p.LoadKW[i]
		acc.totalKWH += kwh
		acc.loadSum += load
		acc.count++
		if load > acc.peakKW {
			acc.peakKW = load
		}

		charge, adj := evaluator.Price(energyPeriods[i], kwh)
		acc.energyCharge += charge
		acc.energyAdj += adj
		acc.kwhByPeriod[energyPeriods[i]] += kwh

		if demandPeriods != nil {
			dp := demandPeriods[i]
			if load > acc.peakByPeriod[dp] {
				acc.peakByPeriod[dp] = load
			}
		}
	}

	keys := make([]monthKey, 0, len(accums))
	for key := range accums {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].Year != keys[b].Year {
			return keys[a].Year < keys[b].Year
		}
		return keys[a].Month < keys[b].Month
	})

	bills := make([]types.MonthlyBill, 0, len(keys))
	ratchet := newRatchetState()
	for _, key := range keys {
		acc := accums[key]
		bill := types.MonthlyBill{
			Year:              key.Year,
			Month:             key.Month,
			TotalKWH:          acc.totalKWH,
			PeakKW:            acc.peakKW,
			EnergyCharge:      acc.energyCharge,
			EnergyAdjustment:  acc.energyAdj,
			FixedCharge:       t.MonthlyFixedCharge(),
			KWHByEnergyPeriod: acc.kwhByPeriod,
		}
		if acc.count > 0 {
			bill.AvgLoadKW = acc.loadSum / float64(acc.count)
		}
		if acc.peakKW > 0 {
			bill.LoadFactor = bill.AvgLoadKW / acc.peakKW
		}

		if t.HasTOUDemand() {
			bill.PeakKWByTOUPeriod = acc.peakByPeriod
			bill.RatchetedByTOUPeriod = make(map[int]float64, len(acc.peakByPeriod))
			bill.DemandCharge, bill.DemandAdjustment = demandCharges(t, key, acc.peakByPeriod, ratchet, bill.RatchetedByTOUPeriod)
		}
		if t.HasFlatDemand() {
			tiers := t.FlatDemandTier(key.Month)
			bill.FlatDemandCharge, bill.FlatDemandAdjustment = rates.ApplyTiers(tiers, acc.peakKW)
		}

		bill.TotalCharge = bill.EnergyCharge + bill.EnergyAdjustment +
			bill.DemandCharge + bill.DemandAdjustment +
			bill.FlatDemandCharge + bill.FlatDemandAdjustment +
			bill.FixedCharge
		bills = append(bills, bill)
	}
	return bills, nil
}

// ratchetState tracks the ratchet-adjusted peaks already billed, keyed by
// (year, month). Months must be folded in chronological order so later
// months in a year see earlier months' ratcheted peaks rather than raw
// ones.
type ratchetState struct {
	history map[monthKey]float64
}

func newRatchetState() *ratchetState {
	return &ratchetState{history: make(map[monthKey]float64)}
}

// lookback returns the highest ratcheted peak recorded for the same
// calendar year in months strictly before the given one.
func (r *ratchetState) lookback(key monthKey) float64 {
	var peak float64
	for k, v := range r.history {
		if k.Year == key.Year && k.Month < key.Month && v > peak {
			peak = v
		}
	}
	return peak
}

func (r *ratchetState) record(key monthKey, peak float64) {
	if peak > r.history[key] {
		r.history[key] = peak
	}
}

// demandCharges bills each TOU demand period's peak, applying the demand
// ratchet and the reactive power surcharge, and fills ratcheted with the
// billed (post-ratchet) demand per period.
func demandCharges(t *types.Tariff, key monthKey, peaks map[int]float64, state *ratchetState, ratcheted map[int]float64) (charge, adj float64) {
	ratchetPct := t.RatchetPercentage(key.Month)
	minRatchet := t.MinRatchet(key.Month)
	pf := t.EffectivePowerFactor()

	periods := make([]int, 0, len(peaks))
	for period := range peaks {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	for _, period := range periods {
		peak := peaks[period]
		if ratchetPct > 0 || minRatchet > 0 {
			historical := state.lookback(key)
			if ratchetPct > 0 && historical*ratchetPct/100 > peak {
				peak = historical * ratchetPct / 100
			}
			if minRatchet > peak {
				peak = minRatchet
			}
		}
		state.record(key, peak)
		ratcheted[period] = peak

		if period >= 0 && period < len(t.DemandRateStructure) {
			c, a := rates.ApplyDemandTiers(t.DemandRateStructure[period], peak, t.DemandReactivePowerCharge, pf)
			charge += c
			adj += a
		}
	}
	return charge, adj
}
