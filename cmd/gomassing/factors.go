package main

import (
	"fmt"

	"github.com/philipparndt/gomassing/internal/pipeline"
	"github.com/philipparndt/gomassing/pkg/carbon"
	"github.com/spf13/cobra"
)

var factorsFormat string

var factorsCmd = &cobra.Command{
	Use:   "factors",
	Short: "Print the effective carbon factor table",
	Long:  "Print the carbon factor table selected by --factors, the config file or the built-in default, in YAML, TOML or JSON.",
	Args:  cobra.NoArgs,
	RunE:  runFactors,
}

func init() {
	rootCmd.AddCommand(factorsCmd)

	factorsCmd.Flags().StringVarP(&factorsFormat, "format", "f", carbon.FormatYAML, "Output format (yaml, toml or json)")
}

func runFactors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := pipeline.LoadTable(cfg)
	if err != nil {
		return err
	}
	data, err := table.Encode(factorsFormat)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
	return err
}
