package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/philipparndt/gomassing/internal/metrics"
	"github.com/philipparndt/gomassing/internal/pipeline"
	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/philipparndt/gomassing/pkg/carbon"
	"github.com/philipparndt/gomassing/pkg/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchMetricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-analyze a massing model whenever it changes",
	Long: `Watch a massing model and the carbon factor table and print a summary
after every change. With --metrics-addr the run metrics are served for
Prometheus at /metrics.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]
	m := metrics.New()
	runner, err := setup(cmd, m)
	if err != nil {
		return err
	}
	defer runner.Logger.Sync()

	addr := runner.Config.Watch.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		addr = watchMetricsAddr
	}

	ctx := cmd.Context()
	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsMux(m)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				runner.Logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
		runner.Logger.Info("Serving metrics", zap.String("addr", addr))
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		result, err := runner.RunFile(ctx, filename)
		if err != nil {
			fmt.Fprintf(out, "[%s] %s: %v\n", time.Now().Format(time.TimeOnly), filename, err)
			return
		}
		printSummary(out, result)
	}

	fw, err := watcher.NewFileWatcher(runner.Config.Watch.Debounce, func(err error) {
		runner.Logger.Warn("Watcher error", zap.Error(err))
	})
	if err != nil {
		return err
	}

	if err := fw.Watch([]string{filename}, func(string) { report() }); err != nil {
		fw.Close()
		return err
	}
	if runner.Config.Factors != "" {
		err := fw.Watch([]string{runner.Config.Factors}, func(path string) {
			if reloadFactors(runner, path) {
				report()
			}
		})
		if err != nil {
			fw.Close()
			return err
		}
	}

	report()
	runner.Logger.Info("Watching for changes", zap.String("file", filename))

	err = fw.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reloadFactors swaps in the factor table at path. An unreadable or invalid
// table is logged and the previous one stays in use.
func reloadFactors(runner *pipeline.Runner, path string) bool {
	table, err := carbon.LoadTable(path)
	if err != nil {
		runner.Logger.Error("Keeping previous factor table", zap.String("path", path), zap.Error(err))
		return false
	}
	runner.SetTable(table)
	runner.Logger.Info("Reloaded factor table", zap.String("path", path), zap.String("version", table.Version()))
	return true
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

// printSummary writes the one-block summary shown after every change
func printSummary(out io.Writer, result *pipeline.Result) {
	m := result.Metrics
	c := result.Carbon
	fmt.Fprintf(out, "[%s] %s (%s, %s)\n", time.Now().Format(time.TimeOnly), result.Document.Source, result.Document.Format, m.SourceUnits)
	fmt.Fprintf(out, "  Nodes: %d  Meshes: %d  Triangles: %d\n", m.Totals.NodeCount, m.Totals.MeshCount, m.Totals.TriangleCount)
	fmt.Fprintf(out, "  Volume: %s  Surface Area: %s\n",
		analysis.FormatMeasurement(m.Totals.Volume, "m3"),
		analysis.FormatMeasurement(m.Totals.SurfaceArea, "m2"))
	fmt.Fprintf(out, "  Bounds: %s\n", analysis.FormatBounds(m.Bounds))
	fmt.Fprintf(out, "  Carbon: %.2f kgCO2e (%.1f%% matched, %s)\n", c.Total, c.MatchedFraction*100, c.TableVersion)
	if warnings := result.Warnings(); len(warnings) > 0 {
		fmt.Fprintf(out, "  Warnings: %d\n", len(warnings))
	}
}
