package carbon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/philipparndt/gomassing/pkg/scene"
)

// ErrMetricsMismatch is returned when a metrics report was not computed from
// the scene passed alongside it
var ErrMetricsMismatch = errors.New("metrics do not match scene")

// Source says where a material's carbon figure came from
type Source string

const (
	// FromFactor is volume or mass times a table factor
	FromFactor Source = "factor"
	// FromDeclared is the embodied carbon authored on the node
	FromDeclared Source = "declared"
)

// MaterialCarbon is the carbon of one material from one source
type MaterialCarbon struct {
	Material  string  `json:"material"`
	Matched   bool    `json:"matched"`
	Source    Source  `json:"source"`
	Kind      Kind    `json:"kind,omitempty"`
	Factor    float64 `json:"factor,omitempty"`
	Density   float64 `json:"density,omitempty"`
	Volume    float64 `json:"volume"`
	Mass      float64 `json:"mass,omitempty"`
	Carbon    float64 `json:"carbon"`
	NodeCount int     `json:"nodeCount"`
}

// Unmatched is a material without a factor. Its volume is reported, never
// merged into a zero-carbon bucket.
type Unmatched struct {
	Material  string  `json:"material"`
	Volume    float64 `json:"volume"`
	NodeCount int     `json:"nodeCount"`
}

// CategoryCarbon is the matched carbon of one structural category
type CategoryCarbon struct {
	Category string  `json:"category"`
	Volume   float64 `json:"volume"`
	Carbon   float64 `json:"carbon"`
}

// Report is the result of Estimate. Carbon is in kgCO2e, volume in m3.
type Report struct {
	Materials       []MaterialCarbon   `json:"materials"`
	Unmatched       []Unmatched        `json:"unmatched"`
	ByCategory      []CategoryCarbon   `json:"byCategory"`
	Total           float64            `json:"total"`
	TotalVolume     float64            `json:"totalVolume"`
	MatchedVolume   float64            `json:"matchedVolume"`
	MatchedFraction float64            `json:"matchedFraction"`
	TableVersion    string             `json:"tableVersion"`
	Warnings        []analysis.Warning `json:"warnings"`
}

// UnmatchedVolume returns the summed volume of all unmatched materials
func (r *Report) UnmatchedVolume() float64 {
	total := 0.0
	for _, u := range r.Unmatched {
		total += u.Volume
	}
	return total
}

// Material returns the factor-based entry for a material, if any
func (r *Report) Material(name string) (MaterialCarbon, bool) {
	key := scene.NormalizeKey(name)
	for _, m := range r.Materials {
		if m.Material == key && m.Source == FromFactor {
			return m, true
		}
	}
	return MaterialCarbon{}, false
}

type materialKey struct {
	material string
	source   Source
}

// Estimate converts the per-node volumes of m into embodied carbon. A
// carbon figure declared on a node wins over the factor table; materials
// missing from t are listed as unmatched with an UnmatchedMaterial warning
// and left out of the total.
func Estimate(s *scene.Scene, m *analysis.MetricsReport, t *FactorTable) (*Report, error) {
	if err := checkMetrics(s, m); err != nil {
		return nil, err
	}

	report := &Report{
		Materials:  []MaterialCarbon{},
		Unmatched:  []Unmatched{},
		ByCategory: []CategoryCarbon{},
		Warnings:   []analysis.Warning{},
	}
	if t != nil {
		report.TableVersion = t.Version()
	}

	materials := make(map[materialKey]*MaterialCarbon)
	unmatched := make(map[string]*Unmatched)
	categories := make(map[string]*CategoryCarbon)

	for _, nm := range m.Nodes {
		if !nm.Contributes() {
			continue
		}
		report.TotalVolume += nm.Volume
		key := scene.NormalizeKey(nm.Material)

		var entry MaterialCarbon
		switch {
		case nm.DeclaredCarbon != nil:
			entry = MaterialCarbon{Source: FromDeclared, Carbon: *nm.DeclaredCarbon}
		case t != nil:
			f, ok := t.Lookup(key)
			if !ok {
				addUnmatched(unmatched, key, nm.Volume)
				continue
			}
			entry = MaterialCarbon{Source: FromFactor, Kind: f.Kind, Factor: f.Value, Density: f.Density}
			entry.Carbon, entry.Mass = f.CarbonFor(nm.Volume)
		default:
			addUnmatched(unmatched, key, nm.Volume)
			continue
		}

		mk := materialKey{material: key, source: entry.Source}
		mc, ok := materials[mk]
		if !ok {
			mc = &MaterialCarbon{
				Material: key,
				Matched:  true,
				Source:   entry.Source,
				Kind:     entry.Kind,
				Factor:   entry.Factor,
				Density:  entry.Density,
			}
			materials[mk] = mc
		}
		mc.Volume += nm.Volume
		mc.Mass += entry.Mass
		mc.Carbon += entry.Carbon
		mc.NodeCount++

		cc, ok := categories[nm.Category]
		if !ok {
			cc = &CategoryCarbon{Category: nm.Category}
			categories[nm.Category] = cc
		}
		cc.Volume += nm.Volume
		cc.Carbon += entry.Carbon

		report.MatchedVolume += nm.Volume
		report.Total += entry.Carbon
	}

	report.MatchedFraction = 1
	if report.TotalVolume > 0 {
		report.MatchedFraction = report.MatchedVolume / report.TotalVolume
	}

	for _, mc := range materials {
		report.Materials = append(report.Materials, *mc)
	}
	sort.Slice(report.Materials, func(i, j int) bool {
		a, b := report.Materials[i], report.Materials[j]
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		return a.Source < b.Source
	})

	for _, u := range unmatched {
		report.Unmatched = append(report.Unmatched, *u)
	}
	sort.Slice(report.Unmatched, func(i, j int) bool {
		return report.Unmatched[i].Material < report.Unmatched[j].Material
	})
	for _, u := range report.Unmatched {
		report.Warnings = append(report.Warnings, analysis.Warning{
			Kind:    analysis.UnmatchedMaterial,
			Message: fmt.Sprintf("no carbon factor for %q (%d nodes, %s)", u.Material, u.NodeCount, analysis.FormatMeasurement(u.Volume, "m3")),
		})
	}

	for _, cc := range categories {
		report.ByCategory = append(report.ByCategory, *cc)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		return report.ByCategory[i].Category < report.ByCategory[j].Category
	})
	return report, nil
}

func addUnmatched(unmatched map[string]*Unmatched, key string, volume float64) {
	u, ok := unmatched[key]
	if !ok {
		u = &Unmatched{Material: key}
		unmatched[key] = u
	}
	u.Volume += volume
	u.NodeCount++
}

// checkMetrics verifies that m lists the nodes of s in document order
func checkMetrics(s *scene.Scene, m *analysis.MetricsReport) error {
	if s == nil || m == nil {
		return fmt.Errorf("%w: scene and metrics are required", ErrMetricsMismatch)
	}
	if len(m.Nodes) != s.NodeCount() {
		return fmt.Errorf("%w: %d metrics for %d nodes", ErrMetricsMismatch, len(m.Nodes), s.NodeCount())
	}
	return s.Walk(func(v scene.Visit) error {
		if got := m.Nodes[v.Index].ID; got != v.Node.ID() {
			return fmt.Errorf("%w: node %d is %q, metrics list %q", ErrMetricsMismatch, v.Index, v.Node.ID(), got)
		}
		return nil
	})
}
