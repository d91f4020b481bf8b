package analysis

import (
	"github.com/philipparndt/gomassing/pkg/geometry"
	"github.com/philipparndt/gomassing/pkg/scene"
)

// UnknownCategory groups nodes without a category
const UnknownCategory = "unknown"

// WarningKind classifies a non-fatal data quality finding
type WarningKind string

const (
	// OpenSurfaceApproximation marks a volume computed over an open surface
	OpenSurfaceApproximation WarningKind = "OpenSurfaceApproximation"
	// UnmatchedMaterial marks a material with no carbon factor
	UnmatchedMaterial WarningKind = "UnmatchedMaterial"
	// InvertedWinding marks a closed mesh whose faces point inward
	InvertedWinding WarningKind = "InvertedWinding"
	// NumericOverflow marks a mesh whose world-space measurements exceed
	// float64 range; its metrics are zeroed
	NumericOverflow WarningKind = "NumericOverflow"
)

// Warning is attached to a report instead of failing the analysis
type Warning struct {
	Kind    WarningKind `json:"kind"`
	NodeID  string      `json:"nodeId,omitempty"`
	Path    string      `json:"path,omitempty"`
	Message string      `json:"message"`
}

// NodeMetrics holds the measurements of a single node's own mesh, in meters
type NodeMetrics struct {
	ID                string               `json:"id"`
	Path              string               `json:"path"`
	Name              string               `json:"name,omitempty"`
	Material          string               `json:"material"`
	Category          string               `json:"category"`
	CategoryInferred  bool                 `json:"categoryInferred,omitempty"`
	HasMesh           bool                 `json:"hasMesh"`
	VertexCount       int                  `json:"vertexCount"`
	TriangleCount     int                  `json:"triangleCount"`
	DegenerateCount   int                  `json:"degenerateCount,omitempty"`
	Bounds            geometry.BoundingBox `json:"bounds"`
	Volume            float64              `json:"volume"`
	SurfaceArea       float64              `json:"surfaceArea"`
	BoundingBoxVolume float64              `json:"boundingBoxVolume"`
	Approximate       bool                 `json:"approximate,omitempty"`
	Closed            bool                 `json:"closed"`
	Overflow          bool                 `json:"overflow,omitempty"`
	DeclaredCarbon    *float64             `json:"declaredCarbon,omitempty"`
}

// Contributes reports whether the node adds to aggregates. Only meshes with
// at least one non-degenerate triangle and finite measurements do.
func (n NodeMetrics) Contributes() bool {
	return n.HasMesh && !n.Overflow && n.TriangleCount > n.DegenerateCount
}

// Aggregate sums the contributing nodes sharing a category or material
type Aggregate struct {
	Key           string  `json:"key"`
	Count         int     `json:"count"`
	Volume        float64 `json:"volume"`
	SurfaceArea   float64 `json:"surfaceArea"`
	TriangleCount int     `json:"triangleCount"`
}

// Totals sums the whole scene
type Totals struct {
	NodeCount     int     `json:"nodeCount"`
	MeshCount     int     `json:"meshCount"`
	VertexCount   int     `json:"vertexCount"`
	TriangleCount int     `json:"triangleCount"`
	Volume        float64 `json:"volume"`
	SurfaceArea   float64 `json:"surfaceArea"`
}

// EdgeStats summarizes triangle edge lengths
type EdgeStats struct {
	Count   int     `json:"count"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	total   float64
}

func (e *EdgeStats) add(length float64) {
	if e.Count == 0 || length < e.Min {
		e.Min = length
	}
	if length > e.Max {
		e.Max = length
	}
	e.Count++
	e.total += length
	e.Average = e.total / float64(e.Count)
}

func (e EdgeStats) merge(other EdgeStats) EdgeStats {
	if other.Count == 0 {
		return e
	}
	if e.Count == 0 {
		return other
	}
	out := EdgeStats{
		Count: e.Count + other.Count,
		Min:   min(e.Min, other.Min),
		Max:   max(e.Max, other.Max),
		total: e.total + other.total,
	}
	out.Average = out.total / float64(out.Count)
	return out
}

// MetricsReport is the result of Analyze. It holds no reference to the
// scene it was computed from.
type MetricsReport struct {
	Source      string               `json:"source,omitempty"`
	Units       scene.Units          `json:"units"`
	SourceUnits scene.Units          `json:"sourceUnits"`
	Nodes       []NodeMetrics        `json:"nodes"`
	ByCategory  []Aggregate          `json:"byCategory"`
	ByMaterial  []Aggregate          `json:"byMaterial"`
	Bounds      geometry.BoundingBox `json:"bounds"`
	Totals      Totals               `json:"totals"`
	Edges       EdgeStats            `json:"edges"`
	Warnings    []Warning            `json:"warnings"`
}

// Category returns the aggregate for a category key
func (r *MetricsReport) Category(key string) (Aggregate, bool) {
	return find(r.ByCategory, scene.NormalizeKey(key))
}

// Material returns the aggregate for a material key
func (r *MetricsReport) Material(key string) (Aggregate, bool) {
	return find(r.ByMaterial, scene.NormalizeKey(key))
}

// WarningsOf returns the warnings of one kind
func (r *MetricsReport) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func find(aggs []Aggregate, key string) (Aggregate, bool) {
	for _, a := range aggs {
		if a.Key == key {
			return a, true
		}
	}
	return Aggregate{}, false
}
