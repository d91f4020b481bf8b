package carbon

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/gomassing/pkg/analysis"
	"github.com/philipparndt/gomassing/pkg/parser"
	"github.com/philipparndt/gomassing/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

const cubeIndices = `[0,2,1, 0,3,2, 4,5,6, 4,6,7, 0,1,5, 0,5,4, 3,7,6, 3,6,2, 0,4,7, 0,7,3, 1,2,6, 1,6,5]`

func cube(x, y, z float64) string {
	return fmt.Sprintf(`{"vertices": [0,0,0, %[1]g,0,0, %[1]g,%[2]g,0, 0,%[2]g,0, 0,0,%[3]g, %[1]g,0,%[3]g, %[1]g,%[2]g,%[3]g, 0,%[2]g,%[3]g], "indices": %[4]s}`,
		x, y, z, cubeIndices)
}

func analyze(t *testing.T, doc string) (*scene.Scene, *analysis.MetricsReport) {
	t.Helper()
	s, err := parser.Parse([]byte(doc))
	require.NoError(t, err)
	return s, analysis.Analyze(s)
}

func concreteOnly(t *testing.T) *FactorTable {
	t.Helper()
	table, err := NewFactorTable("test", []Factor{{Material: "concrete", Kind: PerVolume, Value: 300}})
	require.NoError(t, err)
	return table
}

func TestEstimateConcreteCube(t *testing.T) {
	doc := fmt.Sprintf(`{"root": {"name": "block", "material": "Concrete", "mesh": %s}}`, cube(1, 1, 1))
	s, m := analyze(t, doc)

	report, err := Estimate(s, m, concreteOnly(t))
	require.NoError(t, err)

	assert.InDelta(t, 300.0, report.Total, tolerance)
	assert.Equal(t, 0.0, report.UnmatchedVolume())
	assert.Empty(t, report.Unmatched)
	assert.Empty(t, report.Warnings)
	assert.InDelta(t, 1.0, report.MatchedFraction, tolerance)
	assert.Equal(t, "test", report.TableVersion)

	require.Len(t, report.Materials, 1)
	concrete := report.Materials[0]
	assert.Equal(t, "concrete", concrete.Material)
	assert.True(t, concrete.Matched)
	assert.Equal(t, FromFactor, concrete.Source)
	assert.Equal(t, PerVolume, concrete.Kind)
	assert.InDelta(t, 1.0, concrete.Volume, tolerance)
	assert.Equal(t, 1, concrete.NodeCount)
}

func TestEstimateUnmatchedMaterial(t *testing.T) {
	doc := fmt.Sprintf(`{"root": {"name": "site", "children": [
		{"name": "block", "material": "concrete", "mesh": %s},
		{"name": "mystery", "material": " Unobtainium ", "mesh": %s}
	]}}`, cube(1, 1, 1), cube(1, 2, 1))
	s, m := analyze(t, doc)

	report, err := Estimate(s, m, concreteOnly(t))
	require.NoError(t, err)

	assert.InDelta(t, 300.0, report.Total, tolerance)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "unobtainium", report.Unmatched[0].Material)
	assert.InDelta(t, 2.0, report.Unmatched[0].Volume, tolerance)
	assert.Equal(t, 1, report.Unmatched[0].NodeCount)

	assert.InDelta(t, 3.0, report.TotalVolume, tolerance)
	assert.InDelta(t, 1.0, report.MatchedVolume, tolerance)
	assert.InDelta(t, 1.0/3.0, report.MatchedFraction, tolerance)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, analysis.UnmatchedMaterial, report.Warnings[0].Kind)
	assert.Contains(t, report.Warnings[0].Message, "unobtainium")
}

func TestEstimateUnknownMaterialIsUnmatched(t *testing.T) {
	s, m := analyze(t, fmt.Sprintf(`{"root": {"mesh": %s}}`, cube(2, 1, 1)))

	report, err := Estimate(s, m, DefaultTable())
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Total)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, scene.UnknownMaterial, report.Unmatched[0].Material)
	assert.InDelta(t, 0.0, report.MatchedFraction, tolerance)
}

func TestEstimateMassFactor(t *testing.T) {
	table, err := NewFactorTable("test", []Factor{{Material: "Steel", Kind: PerMass, Value: 1.5, Density: 8000}})
	require.NoError(t, err)

	// 0.1 x 0.1 x 3 m column, 0.03 m3
	s, m := analyze(t, fmt.Sprintf(`{"root": {"material": "steel", "mesh": %s}}`, cube(0.1, 0.1, 3)))
	report, err := Estimate(s, m, table)
	require.NoError(t, err)

	steel, ok := report.Material("STEEL")
	require.True(t, ok)
	assert.InDelta(t, 0.03, steel.Volume, tolerance)
	assert.InDelta(t, 240.0, steel.Mass, 1e-6)
	assert.InDelta(t, 360.0, steel.Carbon, 1e-6)
	assert.Equal(t, 8000.0, steel.Density)
}

func TestEstimateDeclaredCarbonWins(t *testing.T) {
	doc := fmt.Sprintf(`{"root": {"name": "site", "children": [
		{"name": "precast slab", "material": "concrete", "embodiedCarbon": 42, "mesh": %s},
		{"name": "cast slab", "material": "concrete", "mesh": %s}
	]}}`, cube(1, 1, 1), cube(1, 1, 1))
	s, m := analyze(t, doc)

	report, err := Estimate(s, m, concreteOnly(t))
	require.NoError(t, err)

	assert.InDelta(t, 342.0, report.Total, tolerance)
	require.Len(t, report.Materials, 2)
	assert.Equal(t, FromDeclared, report.Materials[0].Source)
	assert.Equal(t, 42.0, report.Materials[0].Carbon)
	assert.Equal(t, FromFactor, report.Materials[1].Source)
	assert.InDelta(t, 1.0, report.MatchedFraction, tolerance)

	require.Len(t, report.ByCategory, 1)
	assert.Equal(t, "floor", report.ByCategory[0].Category)
	assert.InDelta(t, 342.0, report.ByCategory[0].Carbon, tolerance)
}

func TestEstimateByCategory(t *testing.T) {
	doc := fmt.Sprintf(`{"root": {"name": "site", "children": [
		{"name": "Wall W1", "material": "concrete", "mesh": %s},
		{"name": "C1", "category": "Column", "material": "concrete", "mesh": %s},
		{"name": "C2", "category": "column", "material": "concrete", "mesh": %s}
	]}}`, cube(2, 1, 1), cube(1, 1, 1), cube(1, 1, 1))
	s, m := analyze(t, doc)

	report, err := Estimate(s, m, concreteOnly(t))
	require.NoError(t, err)

	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, "column", report.ByCategory[0].Category)
	assert.InDelta(t, 600.0, report.ByCategory[0].Carbon, tolerance)
	assert.Equal(t, "wall", report.ByCategory[1].Category)
	assert.InDelta(t, 600.0, report.ByCategory[1].Carbon, tolerance)
}

func TestEstimateEmptySceneHasFullMatch(t *testing.T) {
	s, m := analyze(t, `{"root": {"name": "empty"}}`)
	report, err := Estimate(s, m, DefaultTable())
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.Total)
	assert.Equal(t, 0.0, report.TotalVolume)
	assert.Equal(t, 1.0, report.MatchedFraction)
}

func TestEstimateMetricsMismatch(t *testing.T) {
	s1, m1 := analyze(t, fmt.Sprintf(`{"root": {"id": "a", "mesh": %s}}`, cube(1, 1, 1)))
	s2, _ := analyze(t, fmt.Sprintf(`{"root": {"id": "b", "mesh": %s}}`, cube(1, 1, 1)))
	s3, _ := analyze(t, `{"root": {"id": "a", "children": [{}]}}`)

	_, err := Estimate(s2, m1, DefaultTable())
	assert.ErrorIs(t, err, ErrMetricsMismatch)

	_, err = Estimate(s3, m1, DefaultTable())
	assert.ErrorIs(t, err, ErrMetricsMismatch)

	_, err = Estimate(s1, nil, DefaultTable())
	assert.ErrorIs(t, err, ErrMetricsMismatch)
}

func TestEstimateWithoutTable(t *testing.T) {
	s, m := analyze(t, fmt.Sprintf(`{"root": {"material": "concrete", "mesh": %s}}`, cube(1, 1, 1)))
	report, err := Estimate(s, m, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Total)
	assert.Len(t, report.Unmatched, 1)
}

func TestFactorTableLookup(t *testing.T) {
	table := DefaultTable()
	assert.NotEmpty(t, table.Version())

	for _, name := range []string{"concrete", "  CONCRETE ", "In-Situ   Concrete"} {
		f, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, 300.0, f.Value)
		assert.Equal(t, PerVolume, f.Kind)
	}

	steel, ok := table.Lookup("Structural Steel")
	require.True(t, ok)
	assert.Equal(t, PerMass, steel.Kind)
	assert.Greater(t, steel.Density, 0.0)

	_, ok = table.Lookup("unobtainium")
	assert.False(t, ok)

	factors := table.Factors()
	assert.Len(t, factors, table.Len())
	for i := 1; i < len(factors); i++ {
		assert.Less(t, factors[i-1].Material, factors[i].Material)
	}
}

func TestNewFactorTableValidation(t *testing.T) {
	cases := map[string][]Factor{
		"negative value":    {{Material: "concrete", Value: -1}},
		"mass no density":   {{Material: "steel", Kind: PerMass, Value: 1.5}},
		"unknown kind":      {{Material: "steel", Kind: "area", Value: 1}},
		"empty material":    {{Material: "  ", Value: 1}},
		"duplicate":         {{Material: "Concrete", Value: 1}, {Material: "concrete ", Value: 2}},
		"duplicate alias":   {{Material: "concrete", Value: 1, Aliases: []string{"rc"}}, {Material: "rc", Value: 2}},
		"empty alias":       {{Material: "concrete", Value: 1, Aliases: []string{""}}},
	}
	for name, factors := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFactorTable("test", factors)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}

	table, err := NewFactorTable("test", []Factor{{Material: "concrete", Value: 300, Aliases: []string{"Concrete"}}})
	require.NoError(t, err, "an alias may repeat its own material")
	f, _ := table.Lookup("concrete")
	assert.Equal(t, PerVolume, f.Kind, "kind defaults to volume")
}

func TestLoadTableFormats(t *testing.T) {
	for _, name := range []string{"factors.yaml", "factors.toml", "factors.json"} {
		t.Run(name, func(t *testing.T) {
			table, err := LoadTable(filepath.Join("testdata", name))
			require.NoError(t, err)

			assert.Equal(t, "test-1", table.Version())
			assert.Equal(t, 2, table.Len())
			steel, ok := table.Lookup("structural steel")
			require.True(t, ok)
			assert.Equal(t, Factor{
				Material: "Steel",
				Kind:     PerMass,
				Value:    1.5,
				Density:  8000,
				Aliases:  []string{"structural steel"},
			}, steel)
		})
	}
}

func TestLoadTableErrors(t *testing.T) {
	_, err := LoadTable(filepath.Join("testdata", "factors.csv"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadTable(filepath.Join("testdata", "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ParseTable([]byte("version: x\nfactors:\n  - material: concrete\n    valu: 3\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatTOML, FormatJSON} {
		data, err := DefaultTable().Encode(format)
		require.NoError(t, err, format)

		table, err := ParseTable(data, format)
		require.NoError(t, err, format)
		assert.Equal(t, DefaultTable().Factors(), table.Factors(), format)
	}
}
