package main

import (
	"fmt"

	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a massing model",
	Long:  "Show dimensions, element counts, volume, surface area, edge statistics, the carbon estimate and any data quality warnings.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	runner, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer runner.Logger.Sync()

	result, err := runner.RunFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	m := result.Metrics
	doc := result.Document

	fmt.Fprintln(out, "Massing Model Information")
	fmt.Fprintln(out, "=========================")
	fmt.Fprintf(out, "File: %s\n", args[0])
	fmt.Fprintf(out, "Format: %s\n", doc.Format)
	fmt.Fprintf(out, "Units: %s (reported in %s)\n\n", m.SourceUnits, m.Units)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Nodes: %d\n", m.Totals.NodeCount)
	fmt.Fprintf(out, "  Meshes: %d\n", m.Totals.MeshCount)
	fmt.Fprintf(out, "  Vertices: %d\n", m.Totals.VertexCount)
	fmt.Fprintf(out, "  Triangles: %d\n", m.Totals.TriangleCount)
	fmt.Fprintf(out, "  Volume: %s\n", analysis.FormatMeasurement(m.Totals.Volume, "m3"))
	fmt.Fprintf(out, "  Surface Area: %s\n\n", analysis.FormatMeasurement(m.Totals.SurfaceArea, "m2"))

	fmt.Fprintln(out, "Bounding Box:")
	if m.Bounds.IsEmpty() {
		fmt.Fprint(out, "  empty\n\n")
	} else {
		size := m.Bounds.Size()
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(m.Bounds.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(m.Bounds.Max))
		fmt.Fprintf(out, "  Center: %s\n", analysis.FormatVector(m.Bounds.Center()))
		fmt.Fprintf(out, "  Width (X): %.6f m\n", size.X)
		fmt.Fprintf(out, "  Depth (Y): %.6f m\n", size.Y)
		fmt.Fprintf(out, "  Height (Z): %.6f m\n", size.Z)
		fmt.Fprintf(out, "  Diagonal: %.6f m\n\n", m.Bounds.Diagonal())
	}

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Count: %d\n", m.Edges.Count)
	fmt.Fprintf(out, "  Minimum: %.6f m\n", m.Edges.Min)
	fmt.Fprintf(out, "  Maximum: %.6f m\n", m.Edges.Max)
	fmt.Fprintf(out, "  Average: %.6f m\n\n", m.Edges.Average)

	c := result.Carbon
	fmt.Fprintln(out, "Embodied Carbon:")
	fmt.Fprintf(out, "  Total: %.2f kgCO2e\n", c.Total)
	fmt.Fprintf(out, "  Matched volume: %.1f%%\n", c.MatchedFraction*100)
	fmt.Fprintf(out, "  Factor table: %s\n", c.TableVersion)

	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings (%d):\n", len(warnings))
		for _, w := range warnings {
			if w.Path != "" {
				fmt.Fprintf(out, "  [%s] %s: %s\n", w.Kind, w.Path, w.Message)
			} else {
				fmt.Fprintf(out, "  [%s] %s\n", w.Kind, w.Message)
			}
		}
	}
	return nil
}
