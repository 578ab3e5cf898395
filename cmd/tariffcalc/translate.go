package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tariffkit/tariffkit/pkg/tariff"
)

var translateCmd = &cobra.Command{
	Use:   "translate <local-tariff.json>",
	Short: "Convert a local-database tariff export to the API document format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		t, err := tariff.TranslateLocal(data)
		if err != nil {
			return err
		}
		wrapped, err := tariff.Wrap(t)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		f, closeF, err := openOutput(out)
		if err != nil {
			return err
		}
		defer closeF()
		if _, err := f.Write(wrapped); err != nil {
			return err
		}
		if out != "" {
			fmt.Printf("Wrote translated tariff to %s\n", out)
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().StringP("output", "o", "", "Write the translated document to this path (default stdout)")
}
