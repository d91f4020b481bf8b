package main

import (
	"fmt"
	"math"

	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/spf13/cobra"
)

var (
	nodesCount     int
	nodesLargest   bool
	nodesSmallest  bool
	nodesMinVolume float64
	nodesMaxVolume float64
)

var nodesCmd = &cobra.Command{
	Use:   "nodes [file]",
	Short: "List the measured nodes of a massing model",
	Long:  "List mesh nodes with their material, category, volume and surface area, including the largest, smallest, or nodes within a volume range.",
	Args:  cobra.ExactArgs(1),
	RunE:  runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)

	nodesCmd.Flags().IntVarP(&nodesCount, "count", "n", 10, "Number of nodes to display")
	nodesCmd.Flags().BoolVarP(&nodesLargest, "largest", "l", false, "Show largest nodes by volume")
	nodesCmd.Flags().BoolVarP(&nodesSmallest, "smallest", "s", false, "Show smallest nodes by volume")
	nodesCmd.Flags().Float64Var(&nodesMinVolume, "min", 0.0, "Minimum volume filter in m3")
	nodesCmd.Flags().Float64Var(&nodesMaxVolume, "max", 0.0, "Maximum volume filter in m3")
	nodesCmd.MarkFlagsMutuallyExclusive("largest", "smallest")
}

func runNodes(cmd *cobra.Command, args []string) error {
	runner, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer runner.Logger.Sync()

	result, err := runner.RunFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	report := result.Metrics

	var nodes []analysis.NodeMetrics
	var title string

	if nodesLargest {
		nodes = analysis.FindLargestNodes(report, nodesCount)
		title = fmt.Sprintf("Top %d Largest Nodes", len(nodes))
	} else if nodesSmallest {
		nodes = analysis.FindSmallestNodes(report, nodesCount)
		title = fmt.Sprintf("Top %d Smallest Nodes", len(nodes))
	} else if flags := cmd.Flags(); flags.Changed("min") || flags.Changed("max") {
		maxVolume := nodesMaxVolume
		if !flags.Changed("max") {
			maxVolume = math.Inf(1)
		}
		nodes = analysis.FindNodesByVolume(report, nodesMinVolume, maxVolume)
		if math.IsInf(maxVolume, 1) {
			title = fmt.Sprintf("Nodes of at least %.6f m3 (found %d)", nodesMinVolume, len(nodes))
		} else {
			title = fmt.Sprintf("Nodes between %.6f and %.6f m3 (found %d)", nodesMinVolume, maxVolume, len(nodes))
		}
		if len(nodes) > nodesCount {
			nodes = nodes[:nodesCount]
		}
	} else {
		nodes = analysis.MeshNodes(report)
		title = fmt.Sprintf("Mesh Nodes (showing first %d of %d)", min(nodesCount, len(nodes)), len(nodes))
		if len(nodes) > nodesCount {
			nodes = nodes[:nodesCount]
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Total nodes in model: %d\n", report.Totals.NodeCount)
	fmt.Fprintf(out, "Mesh nodes: %d\n\n", report.Totals.MeshCount)

	if len(nodes) == 0 {
		fmt.Fprintln(out, "No nodes found matching the criteria.")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-32s %-16s %-10s %-14s %-14s %-10s %-10s\n", "Index", "Path", "Material", "Category", "Volume (m3)", "Area (m2)", "Min Z", "Max Z")
	fmt.Fprintln(out, "--------------------------------------------------------------------------------------------------------------------------")
	for i, n := range nodes {
		volume := fmt.Sprintf("%.6f", n.Volume)
		if n.Approximate {
			volume += "~"
		}
		fmt.Fprintf(out, "%-6d %-32s %-16s %-10s %-14s %-14.6f %-10.3f %-10.3f\n",
			i+1,
			truncate(n.Path, 32),
			truncate(n.Material, 16),
			n.Category,
			volume,
			n.SurfaceArea,
			n.Bounds.Min.Z,
			n.Bounds.Max.Z)
	}
	return nil
}

// truncate keeps the tail of s, which for paths is the node itself
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return "..." + string(r[len(r)-width+3:])
}
