// Package pipeline runs parse, analyze and estimate on a document with
// logging and metrics around each stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/philipparndt/gomassing/internal/config"
	"github.com/philipparndt/gomassing/internal/logging"
	"github.com/philipparndt/gomassing/internal/metrics"
	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/philipparndt/gomassing/pkg/carbon"
	"github.com/philipparndt/gomassing/pkg/parser"
	"github.com/philipparndt/gomassing/pkg/scene"
	"go.uber.org/zap"
)

// Document describes the analyzed input
type Document struct {
	Source    string      `json:"source"`
	Format    string      `json:"format"`
	Units     scene.Units `json:"units"`
	NodeCount int         `json:"nodeCount"`
}

// Result is the combined output of one run
type Result struct {
	Document Document                `json:"document"`
	Metrics  *analysis.MetricsReport `json:"metrics"`
	Carbon   *carbon.Report          `json:"carbon"`

	scene *scene.Scene
}

// Scene returns the parsed scene
func (r *Result) Scene() *scene.Scene { return r.scene }

// Warnings returns the analysis and carbon warnings together
func (r *Result) Warnings() []analysis.Warning {
	out := append([]analysis.Warning(nil), r.Metrics.Warnings...)
	return append(out, r.Carbon.Warnings...)
}

// Runner holds what every run shares. It is safe for concurrent runs.
type Runner struct {
	Config  config.Config
	Table   *carbon.FactorTable
	Logger  *logging.Logger
	Metrics *metrics.Metrics

	mu sync.RWMutex
}

// SetTable swaps the factor table used by later runs
func (r *Runner) SetTable(t *carbon.FactorTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Table = t
}

func (r *Runner) table() *carbon.FactorTable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Table
}

// NewRunner creates a runner, loading the factor table named by the config
// or falling back to the built-in table
func NewRunner(cfg config.Config, logger *logging.Logger, m *metrics.Metrics) (*Runner, error) {
	table, err := LoadTable(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{Config: cfg, Table: table, Logger: logger, Metrics: m}, nil
}

// LoadTable returns the configured factor table
func LoadTable(cfg config.Config) (*carbon.FactorTable, error) {
	if cfg.Factors == "" {
		return carbon.DefaultTable(), nil
	}
	return carbon.LoadTable(cfg.Factors)
}

// RunFile analyzes the document at filename
func (r *Runner) RunFile(ctx context.Context, filename string) (*Result, error) {
	timer := metrics.NewTimer()
	s, err := parser.ParseFile(filename, parser.WithLimits(r.Config.ParserLimits()))
	return r.run(ctx, s, err, timer)
}

// Run analyzes an in-memory document
func (r *Runner) Run(ctx context.Context, doc []byte, source string) (*Result, error) {
	timer := metrics.NewTimer()
	s, err := parser.Parse(doc, parser.WithLimits(r.Config.ParserLimits()), parser.WithSource(source))
	return r.run(ctx, s, err, timer)
}

func (r *Runner) run(ctx context.Context, s *scene.Scene, parseErr error, parseTimer *metrics.Timer) (*Result, error) {
	elapsed := parseTimer.Duration()
	if parseErr != nil {
		kind := errorKind(parseErr)
		r.Logger.Error("Document rejected", zap.String("kind", kind), zap.Error(parseErr))
		if r.Metrics != nil {
			r.Metrics.RecordParse(metrics.StatusError, kind, elapsed)
		}
		return nil, parseErr
	}

	meta := s.Metadata()
	log := r.Logger.WithDocument(meta.Source)
	log.Stage("parse", elapsed, zap.String("format", meta.Format), zap.Int("nodes", s.NodeCount()))
	if r.Metrics != nil {
		r.Metrics.RecordParse(metrics.StatusOK, meta.Format, elapsed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := metrics.NewTimer()
	report := analysis.Analyze(s, r.Config.AnalysisOptions()...)
	log.Stage("analyze", timer.Duration(),
		zap.Int("triangles", report.Totals.TriangleCount),
		zap.Float64("volume_m3", report.Totals.Volume))
	if r.Metrics != nil {
		r.Metrics.RecordAnalysis(report.Totals.TriangleCount, timer.Duration())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer = metrics.NewTimer()
	estimate, err := carbon.Estimate(s, report, r.table())
	if err != nil {
		return nil, fmt.Errorf("carbon estimate: %w", err)
	}
	log.Stage("estimate", timer.Duration(),
		zap.Float64("carbon_kgco2e", estimate.Total),
		zap.Float64("matched_fraction", estimate.MatchedFraction))
	if r.Metrics != nil {
		r.Metrics.RecordCarbon(estimate.Total, estimate.UnmatchedVolume())
	}

	result := &Result{
		Document: Document{
			Source:    meta.Source,
			Format:    meta.Format,
			Units:     meta.Units,
			NodeCount: s.NodeCount(),
		},
		Metrics: report,
		Carbon:  estimate,
		scene:   s,
	}
	for _, w := range result.Warnings() {
		entity := w.Path
		if entity == "" {
			entity = meta.Source
		}
		log.DataQuality(entity, string(w.Kind), severity(w.Kind), zap.String("detail", w.Message))
		if r.Metrics != nil {
			r.Metrics.RecordWarning(string(w.Kind))
		}
	}
	return result, nil
}

func severity(kind analysis.WarningKind) string {
	if kind == analysis.UnmatchedMaterial || kind == analysis.NumericOverflow {
		return "high"
	}
	return "low"
}

// errorKind labels an error for metrics: the parse error kind, or "io"
func errorKind(err error) string {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return pe.Kind.Error()
	}
	return "io"
}
