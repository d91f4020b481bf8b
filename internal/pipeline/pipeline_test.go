package pipeline

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gomassing/internal/config"
	"github.com/philipparndt/gomassing/internal/logging"
	"github.com/philipparndt/gomassing/internal/metrics"
	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/philipparndt/gomassing/pkg/carbon"
	"github.com/philipparndt/gomassing/pkg/parser"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRunner(t *testing.T) (*Runner, *observer.ObservedLogs, *metrics.Metrics) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.New()
	r, err := NewRunner(config.Default(), logging.FromZap(zap.New(core)), m)
	require.NoError(t, err)
	return r, logs, m
}

func TestRunFile(t *testing.T) {
	r, logs, m := newRunner(t)

	result, err := r.RunFile(context.Background(), filepath.Join("testdata", "tower.json"))
	require.NoError(t, err)

	assert.Equal(t, "tower.json", result.Document.Source)
	assert.Equal(t, parser.FormatNative, result.Document.Format)
	assert.Equal(t, 3, result.Document.NodeCount)
	assert.NotNil(t, result.Scene())

	assert.InDelta(t, 1.0, result.Metrics.Totals.Volume, 1e-9)
	assert.InDelta(t, 300.0, result.Carbon.Total, 1e-9)
	require.Len(t, result.Carbon.Unmatched, 1)
	assert.Equal(t, "unobtainium", result.Carbon.Unmatched[0].Material)

	kinds := map[analysis.WarningKind]int{}
	for _, w := range result.Warnings() {
		kinds[w.Kind]++
	}
	assert.Equal(t, map[analysis.WarningKind]int{
		analysis.OpenSurfaceApproximation: 1,
		analysis.UnmatchedMaterial:        1,
	}, kinds)

	assert.Equal(t, 2, logs.FilterMessage("Data quality issue").Len())
	assert.Equal(t, 3, logs.FilterMessage("Stage finished").Len())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(metrics.StatusOK, parser.FormatNative)))
	assert.Equal(t, 14.0, testutil.ToFloat64(m.TrianglesAnalyzed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WarningsTotal.WithLabelValues(string(analysis.UnmatchedMaterial))))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.CarbonTotal))
}

func TestRunRejectsDocument(t *testing.T) {
	r, logs, m := newRunner(t)

	_, err := r.Run(context.Background(), []byte(`{"root": {"mesh": {"vertices": [0,0,0], "indices": [0,0,1]}}}`), "bad.json")
	assert.ErrorIs(t, err, parser.ErrMalformedGeometry)

	assert.Equal(t, 1, logs.FilterMessage("Document rejected").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues(metrics.StatusError, parser.ErrMalformedGeometry.Error())))
}

func TestRunHonoursConfigLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxNodes = 2
	r, err := NewRunner(cfg, nil, nil)
	require.NoError(t, err)

	_, err = r.RunFile(context.Background(), filepath.Join("testdata", "tower.json"))
	assert.ErrorIs(t, err, parser.ErrTooLarge)
}

func TestRunCancelled(t *testing.T) {
	r, _, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, []byte(`{"root": {}}`), "empty.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultJSON(t *testing.T) {
	r, _, _ := newRunner(t)
	result, err := r.Run(context.Background(), []byte(`{"root": {"name": "empty"}}`), "empty.json")
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "document")
	assert.Contains(t, decoded, "metrics")
	assert.Contains(t, decoded, "carbon")
	metricsJSON := decoded["metrics"].(map[string]any)
	assert.Equal(t, map[string]any{"empty": true}, metricsJSON["bounds"])
}

func TestNewRunnerBadFactors(t *testing.T) {
	cfg := config.Default()
	cfg.Factors = filepath.Join("testdata", "missing.yaml")
	_, err := NewRunner(cfg, nil, nil)
	assert.Error(t, err)
}

func TestSetTable(t *testing.T) {
	r, _, _ := newRunner(t)
	table, err := carbon.NewFactorTable("test-2", []carbon.Factor{
		{Material: "concrete", Value: 100},
		{Material: "unobtainium", Value: 1000},
	})
	require.NoError(t, err)
	r.SetTable(table)

	result, err := r.RunFile(context.Background(), filepath.Join("testdata", "tower.json"))
	require.NoError(t, err)

	assert.Equal(t, "test-2", result.Carbon.TableVersion)
	assert.Empty(t, result.Carbon.Unmatched)
	// the canopy is an open quad with no volume
	assert.InDelta(t, 100.0, result.Carbon.Total, 1e-9)
}
