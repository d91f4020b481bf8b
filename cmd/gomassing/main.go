package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/gomassing/internal/config"
	"github.com/philipparndt/gomassing/internal/logging"
	"github.com/philipparndt/gomassing/internal/metrics"
	"github.com/philipparndt/gomassing/internal/pipeline"
	"github.com/philipparndt/gomassing/version"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	factorsPath string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "gomassing",
	Short: "Measure massing models and estimate their embodied carbon",
	Long: `gomassing reads a JSON massing model (a native scene document or a three.js
object export) and reports bounding volumes, element counts, per-object
volumes and a material-weighted embodied carbon estimate.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ./"+config.DefaultPath+" if present)")
	flags.StringVar(&factorsPath, "factors", "", "Carbon factor table (.yaml, .toml or .json)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format (console or json)")
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("factors") {
		cfg.Factors = factorsPath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	return cfg, cfg.Validate()
}

// setup builds the runner shared by the analysis commands
func setup(cmd *cobra.Command, m *metrics.Metrics) (*pipeline.Runner, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg, logger, m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
