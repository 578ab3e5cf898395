package loadfactor

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// WriteCSV writes the swept rate curve as CSV.
func WriteCSV(w io.Writer, points []types.LoadFactorPoint) error {
	cw := csv.NewWriter(w)
	header := []string{
		"load_factor", "peak_demand_kw", "avg_load_kw", "total_energy_kwh",
		"demand_charges", "energy_charges", "fixed_charges", "total_cost", "effective_rate",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range points {
		rec := []string{
			strconv.FormatFloat(p.LoadFactor, 'f', 2, 64),
			fmtF(p.PeakDemandKW), fmtF(p.AvgLoadKW), fmtF(p.TotalEnergyKWH),
			fmtF(p.DemandCharges), fmtF(p.EnergyCharges), fmtF(p.FixedCharges),
			fmtF(p.TotalCost), strconv.FormatFloat(p.EffectiveRate, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBreakdownCSV writes the comprehensive breakdown as a wide CSV with
// one column group per energy period, demand period, and flat-demand tier.
// All rows share the same period layout, so the header comes from the
// first row.
func WriteBreakdownCSV(w io.Writer, rows []types.BreakdownRow) error {
	if len(rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)

	header := []string{"load_factor", "avg_load_kw", "total_energy_kwh"}
	for _, ep := range rows[0].EnergyPeriods {
		header = append(header,
			ep.Label+"_kwh", ep.Label+"_rate", ep.Label+"_cost")
	}
	for _, dp := range rows[0].DemandPeriods {
		if dp.MonthsActive > 0 {
			header = append(header, dp.Label+"_months")
		}
		header = append(header,
			dp.Label+"_demand_kw", dp.Label+"_rate", dp.Label+"_cost")
	}
	for _, fd := range rows[0].FlatDemand {
		label := "flat_demand_tier_" + strconv.Itoa(fd.Tier)
		if fd.MonthsCovered > 0 {
			header = append(header, label+"_months")
		}
		header = append(header, label+"_demand_kw", label+"_rate", label+"_cost")
	}
	header = append(header,
		"total_demand_charges", "total_energy_charges", "fixed_charges",
		"total_cost", "effective_rate")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range rows {
		rec := []string{
			strconv.FormatFloat(row.LoadFactor, 'f', 2, 64),
			fmtF(row.AvgLoadKW), fmtF(row.TotalEnergyKWH),
		}
		for _, ep := range row.EnergyPeriods {
			rec = append(rec, fmtF(ep.KWH), fmtF(ep.Rate), fmtF(ep.Cost))
		}
		for _, dp := range row.DemandPeriods {
			if dp.MonthsActive > 0 {
				rec = append(rec, strconv.Itoa(dp.MonthsActive))
			}
			rec = append(rec, fmtF(dp.DemandKW), fmtF(dp.Rate), fmtF(dp.Cost))
		}
		for _, fd := range row.FlatDemand {
			if fd.MonthsCovered > 0 {
				rec = append(rec, strconv.Itoa(fd.MonthsCovered))
			}
			rec = append(rec, fmtF(fd.DemandKW), fmtF(fd.Rate), fmtF(fd.Cost))
		}
		rec = append(rec,
			fmtF(row.TotalDemandCharges), fmtF(row.TotalEnergyCharges),
			fmtF(row.FixedCharges), fmtF(row.TotalCost),
			strconv.FormatFloat(row.EffectiveRate, 'f', 6, 64))
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
