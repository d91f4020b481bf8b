// Package analysis derives geometric metrics from a scene: per-node bounds,
// volume and surface area in meters, aggregates per category and material,
// and data quality warnings. Analysis never fails on a parsed scene.
package analysis

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/philipparndt/gomassing/pkg/geometry"
	"github.com/philipparndt/gomassing/pkg/scene"
)

// DefaultParallelThreshold is the triangle count from which a mesh is
// integrated in parallel chunks
const DefaultParallelThreshold = 50_000

type options struct {
	workers   int
	threshold int
	infer     bool
}

// Option configures Analyze
type Option func(*options)

// WithWorkers bounds the goroutines used to integrate one large mesh.
// Values below 1 select GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParallelThreshold sets the triangle count from which a mesh is split
// into chunks. Zero or less disables chunking.
func WithParallelThreshold(n int) Option {
	return func(o *options) {
		o.threshold = n
	}
}

// WithCategoryInference toggles deriving missing categories from node names
func WithCategoryInference(enabled bool) Option {
	return func(o *options) {
		o.infer = enabled
	}
}

func newOptions(opts []Option) options {
	o := options{threshold: DefaultParallelThreshold, infer: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Analyze measures every node of s. Coordinates are converted from the
// scene units to meters before measuring.
func Analyze(s *scene.Scene, opts ...Option) *MetricsReport {
	o := newOptions(opts)
	report := &MetricsReport{
		Units:      scene.Meters,
		Nodes:      []NodeMetrics{},
		ByCategory: []Aggregate{},
		ByMaterial: []Aggregate{},
		Bounds:     geometry.NewBoundingBox(),
		Warnings:   []Warning{},
	}
	if s == nil {
		report.SourceUnits = scene.DefaultUnits
		return report
	}
	report.Source = s.Source()
	report.SourceUnits = s.Units()

	toMeters := geometry.Uniform(s.Units().MetersPerUnit())
	byCategory := make(map[string]*Aggregate)
	byMaterial := make(map[string]*Aggregate)

	_ = s.WalkFrom(toMeters, func(v scene.Visit) error {
		report.Totals.NodeCount++
		nm, found := measure(v, o)
		report.Nodes = append(report.Nodes, nm)
		report.Warnings = append(report.Warnings, found.list...)
		report.Edges = report.Edges.merge(found.edges)

		if !nm.Contributes() {
			return nil
		}
		report.Totals.MeshCount++
		report.Totals.VertexCount += nm.VertexCount
		report.Totals.TriangleCount += nm.TriangleCount
		report.Totals.Volume += nm.Volume
		report.Totals.SurfaceArea += nm.SurfaceArea
		report.Bounds = report.Bounds.Union(nm.Bounds)

		accumulate(byCategory, nm.Category, nm)
		accumulate(byMaterial, scene.NormalizeKey(nm.Material), nm)
		return nil
	})

	report.ByCategory = sorted(byCategory)
	report.ByMaterial = sorted(byMaterial)
	return report
}

// findings collects what measuring a node produced besides its metrics
type findings struct {
	list  []Warning
	edges EdgeStats
}

func measure(v scene.Visit, o options) (NodeMetrics, findings) {
	n := v.Node
	nm := NodeMetrics{
		ID:       n.ID(),
		Path:     v.Path,
		Name:     n.Name(),
		Material: n.Material(),
		Bounds:   geometry.NewBoundingBox(),
	}
	nm.Category, nm.CategoryInferred = categoryOf(n, o.infer)
	if c, ok := n.DeclaredCarbon(); ok {
		nm.DeclaredCarbon = &c
	}

	var f findings
	if !n.HasMesh() {
		return nm, f
	}

	mesh := n.Mesh().Transform(v.World)
	nm.HasMesh = true
	nm.VertexCount = mesh.VertexCount()
	nm.TriangleCount = mesh.TriangleCount()
	nm.DegenerateCount = mesh.DegenerateCount()
	nm.Closed = mesh.IsClosed()
	nm.Bounds = mesh.Bounds()
	nm.BoundingBoxVolume = nm.Bounds.Volume()
	if !nm.Bounds.Min.IsFinite() || !nm.Bounds.Max.IsFinite() || !finite(nm.BoundingBoxVolume) {
		return overflowed(nm, f)
	}
	if !nm.Contributes() {
		return nm, f
	}

	sum := integrate(mesh, nm.Bounds.Center(), o)
	if !finite(sum.SignedVolume) || !finite(sum.Area) || !finite(sum.edges.Average) {
		return overflowed(nm, f)
	}
	nm.Volume = math.Abs(sum.SignedVolume)
	nm.SurfaceArea = sum.Area
	f.edges = sum.edges

	// a mirroring transform flips the winding of an otherwise sound mesh
	authored := sum.SignedVolume
	if v.World.Determinant() < 0 {
		authored = -authored
	}

	switch {
	case !nm.Closed:
		nm.Approximate = true
		f.list = append(f.list, Warning{
			Kind:    OpenSurfaceApproximation,
			NodeID:  nm.ID,
			Path:    nm.Path,
			Message: fmt.Sprintf("mesh is not closed; volume %s is approximate", FormatMeasurement(nm.Volume, "m3")),
		})
	case authored < 0:
		f.list = append(f.list, Warning{
			Kind:    InvertedWinding,
			NodeID:  nm.ID,
			Path:    nm.Path,
			Message: "closed mesh has inward-facing winding; volume reported as absolute value",
		})
	}
	return nm, f
}

// overflowed zeroes the measurements of a node that left float64 range
func overflowed(nm NodeMetrics, f findings) (NodeMetrics, findings) {
	nm.Overflow = true
	nm.Bounds = geometry.NewBoundingBox()
	nm.BoundingBoxVolume = 0
	nm.Volume = 0
	nm.SurfaceArea = 0
	f.edges = EdgeStats{}
	f.list = append(f.list, Warning{
		Kind:    NumericOverflow,
		NodeID:  nm.ID,
		Path:    nm.Path,
		Message: "world-space coordinates overflow float64; node excluded from totals",
	})
	return nm, f
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func accumulate(aggs map[string]*Aggregate, key string, nm NodeMetrics) {
	a, ok := aggs[key]
	if !ok {
		a = &Aggregate{Key: key}
		aggs[key] = a
	}
	a.Count++
	a.Volume += nm.Volume
	a.SurfaceArea += nm.SurfaceArea
	a.TriangleCount += nm.TriangleCount
}

func sorted(aggs map[string]*Aggregate) []Aggregate {
	out := make([]Aggregate, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
