package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tariffcalc",
	Short: "Utility tariff billing and load-factor analysis",
	Long: "tariffcalc prices interval load profiles against URDB tariff documents " +
		"and sweeps effective rates across load factors.",
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(loadFactorCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(translateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openOutput returns stdout when path is empty, otherwise creates the file.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
