package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tariffkit/tariffkit/pkg/loadfactor"
	"github.com/tariffkit/tariffkit/pkg/scenario"
	"github.com/tariffkit/tariffkit/pkg/tariff"
	"github.com/tariffkit/tariffkit/pkg/types"
)

var loadFactorCmd = &cobra.Command{
	Use:   "loadfactor <scenario.yaml>",
	Short: "Sweep effective rates across load factors",
	Long: "Reads a scenario YAML naming a tariff, the asserted peak demands per " +
		"period, and an energy split, then sweeps load factors from 1% to the " +
		"feasibility ceiling (plus the forced 100% point).",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}
		t, err := tariff.Load(sc.Tariff)
		if err != nil {
			return err
		}
		if err := tariff.Validate(t, types.DefaultVoltage); err != nil {
			return err
		}

		in := sc.Inputs()
		var points []types.LoadFactorPoint
		var rows []types.BreakdownRow
		if sc.Annual {
			points = loadfactor.CalculateAnnualRates(t, in)
			if sc.Breakdown {
				rows = loadfactor.AnnualBreakdown(t, in, points)
			}
		} else {
			points = loadfactor.CalculateRates(t, in, sc.SelectedMonth())
			if sc.Breakdown {
				rows = loadfactor.MonthlyBreakdown(t, in, points, sc.SelectedMonth())
			}
		}

		csvOut, _ := cmd.Flags().GetString("output")
		if csvOut != "" {
			f, closeF, err := openOutput(csvOut)
			if err != nil {
				return err
			}
			defer closeF()
			if sc.Breakdown {
				if err := loadfactor.WriteBreakdownCSV(f, rows); err != nil {
					return err
				}
			} else if err := loadfactor.WriteCSV(f, points); err != nil {
				return err
			}
			fmt.Printf("Wrote %d points to %s\n", len(points), csvOut)
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LF\tAvg kW\tEnergy kWh\tDemand $\tEnergy $\tFixed $\tTotal $\t$/kWh")
		for _, p := range points {
			fmt.Fprintf(tw, "%.0f%%\t%.1f\t%.0f\t%.2f\t%.2f\t%.2f\t%.2f\t%.4f\n",
				p.LoadFactor*100, p.AvgLoadKW, p.TotalEnergyKWH,
				p.DemandCharges, p.EnergyCharges, p.FixedCharges, p.TotalCost, p.EffectiveRate)
		}
		return tw.Flush()
	},
}

func init() {
	loadFactorCmd.Flags().StringP("output", "o", "", "Write results as CSV to this path")
}
