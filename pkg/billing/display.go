package billing

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/tariffkit/tariffkit/pkg/types"
)

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ForDisplay collapses bills into the simplified per-month view: energy and
// demand charges combined with their adjustments, values rounded to cents.
func ForDisplay(bills []types.MonthlyBill) []types.BillSummary {
	out := make([]types.BillSummary, len(bills))
	for i, b := range bills {
		out[i] = types.BillSummary{
			Year:            b.Year,
			Month:           b.Month,
			MonthName:       b.Month.String(),
			TotalKWH:        roundCents(b.TotalKWH),
			PeakKW:          roundCents(b.PeakKW),
			AvgLoadKW:       roundCents(b.AvgLoadKW),
			LoadFactor:      math.Round(b.LoadFactor*1000) / 1000,
			TotalEnergyCost: roundCents(b.EnergyCharge + b.EnergyAdjustment),
			TotalDemandCost: roundCents(b.DemandCharge + b.DemandAdjustment + b.FlatDemandCharge + b.FlatDemandAdjustment),
			FixedCharge:     roundCents(b.FixedCharge),
			TotalCharge:     roundCents(b.TotalCharge),
		}
	}
	return out
}

// WriteCSV writes bills as CSV with one row per (year, month). Per-period
// breakdown columns cover the union of periods seen across all months.
func WriteCSV(w io.Writer, bills []types.MonthlyBill) error {
	energyPeriods := periodUnion(bills, func(b types.MonthlyBill) map[int]float64 { return b.KWHByEnergyPeriod })
	demandPeriods := periodUnion(bills, func(b types.MonthlyBill) map[int]float64 { return b.PeakKWByTOUPeriod })

	header := []string{
		"year", "month", "total_kwh", "peak_kw", "avg_load_kw", "load_factor",
		"energy_charge", "energy_adjustment", "demand_charge", "demand_adjustment",
		"flat_demand_charge", "flat_demand_adjustment", "fixed_charge", "total_charge",
	}
	for _, p := range energyPeriods {
		header = append(header, fmt.Sprintf("kwh_period_%d", p))
	}
	for _, p := range demandPeriods {
		header = append(header, fmt.Sprintf("peak_kw_period_%d", p))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range bills {
		rec := []string{
			strconv.Itoa(b.Year),
			strconv.Itoa(int(b.Month)),
			fmtF(b.TotalKWH), fmtF(b.PeakKW), fmtF(b.AvgLoadKW), fmtF(b.LoadFactor),
			fmtF(b.EnergyCharge), fmtF(b.EnergyAdjustment),
			fmtF(b.DemandCharge), fmtF(b.DemandAdjustment),
			fmtF(b.FlatDemandCharge), fmtF(b.FlatDemandAdjustment),
			fmtF(b.FixedCharge), fmtF(b.TotalCharge),
		}
		for _, p := range energyPeriods {
			rec = append(rec, fmtF(b.KWHByEnergyPeriod[p]))
		}
		for _, p := range demandPeriods {
			rec = append(rec, fmtF(b.PeakKWByTOUPeriod[p]))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func periodUnion(bills []types.MonthlyBill, get func(types.MonthlyBill) map[int]float64) []int {
	seen := make(map[int]bool)
	for _, b := range bills {
		for p := range get(b) {
			seen[p] = true
		}
	}
	periods := make([]int, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}
