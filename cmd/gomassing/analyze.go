package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	analyzeOutput  string
	analyzeCompact bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Write the metrics and carbon reports as JSON",
	Long:  "Analyze a massing model and write the combined metrics and carbon report as JSON, for charts, viewers and other tools.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeCompact, "compact", false, "Write compact JSON without indentation")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	runner, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer runner.Logger.Sync()

	result, err := runner.RunFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if analyzeOutput != "" {
		file, err := os.Create(analyzeOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	if !analyzeCompact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
