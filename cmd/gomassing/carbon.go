package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var carbonCmd = &cobra.Command{
	Use:   "carbon [file]",
	Short: "Estimate the embodied carbon of a massing model",
	Long:  "Show embodied carbon per material and per structural category, and list materials without a carbon factor.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCarbon,
}

func init() {
	rootCmd.AddCommand(carbonCmd)
}

func runCarbon(cmd *cobra.Command, args []string) error {
	runner, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer runner.Logger.Sync()

	result, err := runner.RunFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	c := result.Carbon
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Embodied Carbon Estimate")
	fmt.Fprintln(out, "========================")
	fmt.Fprintf(out, "Factor table: %s\n", c.TableVersion)
	fmt.Fprintf(out, "Total: %.2f kgCO2e\n", c.Total)
	fmt.Fprintf(out, "Matched volume: %.6f of %.6f m3 (%.1f%%)\n\n", c.MatchedVolume, c.TotalVolume, c.MatchedFraction*100)

	fmt.Fprintln(out, "By Material:")
	if len(c.Materials) == 0 {
		fmt.Fprintln(out, "  none")
	} else {
		fmt.Fprintf(out, "  %-24s %-9s %-7s %-12s %-14s %-14s %-14s\n", "Material", "Source", "Nodes", "Factor", "Volume (m3)", "Mass (kg)", "kgCO2e")
		for _, m := range c.Materials {
			factor := "-"
			if m.Kind != "" {
				factor = fmt.Sprintf("%g/%s", m.Factor, m.Kind)
			}
			fmt.Fprintf(out, "  %-24s %-9s %-7d %-12s %-14.6f %-14.2f %-14.2f\n",
				truncate(m.Material, 24), m.Source, m.NodeCount, factor, m.Volume, m.Mass, m.Carbon)
		}
	}

	fmt.Fprintln(out, "\nBy Category:")
	if len(c.ByCategory) == 0 {
		fmt.Fprintln(out, "  none")
	}
	for _, cc := range c.ByCategory {
		share := 0.0
		if c.Total > 0 {
			share = cc.Carbon / c.Total * 100
		}
		fmt.Fprintf(out, "  %-24s %14.2f kgCO2e  %5.1f%%\n", cc.Category, cc.Carbon, share)
	}

	if len(c.Unmatched) > 0 {
		fmt.Fprintln(out, "\nUnmatched Materials (excluded from total):")
		for _, u := range c.Unmatched {
			fmt.Fprintf(out, "  %-24s %14.6f m3  (%d nodes)\n", truncate(u.Material, 24), u.Volume, u.NodeCount)
		}
	}
	return nil
}
