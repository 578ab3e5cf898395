package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tariffkit/tariffkit/pkg/billing"
	"github.com/tariffkit/tariffkit/pkg/profile"
	"github.com/tariffkit/tariffkit/pkg/tariff"
)

var billCmd = &cobra.Command{
	Use:   "bill <tariff.json> <profile.csv>",
	Short: "Calculate monthly bills for a load profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := tariff.Load(args[0])
		if err != nil {
			return err
		}
		p, err := profile.Load(args[1])
		if err != nil {
			return err
		}

		bills, err := billing.Calculate(context.Background(), t, p)
		if err != nil {
			return err
		}

		csvOut, _ := cmd.Flags().GetString("output")
		if csvOut != "" {
			f, closeF, err := openOutput(csvOut)
			if err != nil {
				return err
			}
			defer closeF()
			if err := billing.WriteCSV(f, bills); err != nil {
				return err
			}
			fmt.Printf("Wrote %d monthly bills to %s\n", len(bills), csvOut)
			return nil
		}

		summary := billing.ForDisplay(bills)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "Year\tMonth\tkWh\tPeak kW\tLF\tEnergy $\tDemand $\tFixed $\tTotal $")
		var total float64
		for _, b := range summary {
			fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.1f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
				b.Year, b.MonthName, b.TotalKWH, b.PeakKW, b.LoadFactor,
				b.TotalEnergyCost, b.TotalDemandCost, b.FixedCharge, b.TotalCharge)
			total += b.TotalCharge
		}
		fmt.Fprintf(tw, "\t\t\t\t\t\t\t\t%.2f\n", total)
		return tw.Flush()
	},
}

func init() {
	billCmd.Flags().StringP("output", "o", "", "Write full bill detail as CSV to this path")
}
